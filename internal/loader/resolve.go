package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ResolvedParameters is the normalized option set handed to a reader.
// It is built once per load and discarded after dispatch.
type ResolvedParameters struct {
	Filepath         string           `yaml:"filepath"`
	FileExt          string           `yaml:"file_ext"`
	HeaderExist      bool             `yaml:"header_exist"`
	HeaderNames      []string         `yaml:"header_names,omitempty"`
	Sep              string           `yaml:"sep"`
	Sheet            SheetSelector    `yaml:"sheet_name"`
	ColnamesDiscrete []string         `yaml:"colnames_discrete,omitempty"`
	ColnamesDatetime []string         `yaml:"colnames_datetime,omitempty"`
	DType            map[string]DType `yaml:"dtype,omitempty"`
	NAValues         NAValues         `yaml:"na_values,omitempty"`
	KeepDefaultNA    bool             `yaml:"keep_default_na"`

	logger *slog.Logger
}

// Resolve validates path and normalizes opts without reading the file.
func Resolve(path string, opts ...Option) (ResolvedParameters, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return resolve(path, o)
}

func resolve(path string, o Options) (ResolvedParameters, error) {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := checkFilepathExist(path); err != nil {
		return ResolvedParameters{}, err
	}

	p := ResolvedParameters{
		Filepath:         path,
		FileExt:          fileExt(path),
		HeaderExist:      o.HeaderExist,
		HeaderNames:      o.HeaderNames,
		Sep:              o.Sep,
		Sheet:            o.Sheet,
		ColnamesDiscrete: o.ColnamesDiscrete,
		ColnamesDatetime: o.ColnamesDatetime,
		NAValues:         o.NAValues,
		KeepDefaultNA:    o.KeepDefaultNA,
		logger:           logger,
	}
	if p.Sep == "" {
		p.Sep = ","
	}
	p.DType = specifyDType(logger, o.ColnamesDiscrete, o.ColnamesDatetime, o.DType)

	return p, nil
}

// log returns the logger the parameters were resolved with.
func (p ResolvedParameters) log() *slog.Logger {
	if p.logger == nil {
		return slog.Default()
	}
	return p.logger
}

// checkFilepathExist fails before any parsing if path is missing.
func checkFilepathExist(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}
	return nil
}

// fileExt returns the lower-cased suffix without its leading dot.
func fileExt(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// specifyDType merges explicit dtypes with the forced-string columns.
// Discrete and datetime columns always load as strings, even when explicit
// names a different type for them.
func specifyDType(logger *slog.Logger, discrete, datetime []string, explicit map[string]DType) map[string]DType {
	merged := make(map[string]DType, len(explicit)+len(discrete)+len(datetime))
	for col, dt := range explicit {
		merged[col] = dt
	}

	for _, group := range [][]string{discrete, datetime} {
		for _, col := range group {
			if prev, ok := merged[col]; ok && prev != DTypeString {
				logger.Debug("forced-string column overrides explicit dtype",
					"column", col,
					"dtype", prev,
				)
			}
			merged[col] = DTypeString
		}
	}
	return merged
}
