package loader

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/rocketlaunchr/dataframe-go"
)

// writeTemp writes content to name inside a fresh temp dir and returns
// the full path.
func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// column returns the series called name, failing the test if absent.
func column(t *testing.T, df *dataframe.DataFrame, name string) dataframe.Series {
	t.Helper()
	for _, s := range df.Series {
		if s.Name() == name {
			return s
		}
	}
	t.Fatalf("column %q not found in %v", name, df.Names())
	return nil
}

// bufferLogger returns a debug-level text logger writing into buf.
func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
