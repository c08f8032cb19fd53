package templates

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/pex/internal/loader"
)

// acceptList is the file input's accept attribute for formats.
func acceptList(formats []loader.Format) string {
	accept := make([]string, len(formats))
	for i, f := range formats {
		accept[i] = "." + f.Ext
	}
	return strings.Join(accept, ",")
}

func extList(formats []loader.Format) string {
	exts := make([]string, len(formats))
	for i, f := range formats {
		exts[i] = f.Ext
	}
	return strings.Join(exts, ", ")
}

func shapeNote(sum loader.Summary) string {
	return fmt.Sprintf("%d rows, %d columns, showing %d", sum.Rows, len(sum.Columns), len(sum.Preview))
}

// columnNote is the dtype line under a column header.
func columnNote(c loader.ColumnSummary) string {
	if c.Missing == 0 {
		return c.DType
	}
	return fmt.Sprintf("%s, %d missing", c.DType, c.Missing)
}

func cellText(v any) string {
	return fmt.Sprint(v)
}
