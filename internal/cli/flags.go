package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/pex/internal/loader"
)

// loadFlags are the loading options accepted by load and resolve.
type loadFlags struct {
	noHeader    bool
	names       []string
	sep         string
	sheet       string
	allSheets   bool
	discrete    []string
	datetime    []string
	dtypes      []string
	na          []string
	noDefaultNA bool
	profile     string
}

func addLoadFlags(cmd *cobra.Command, f *loadFlags) {
	fs := cmd.Flags()
	fs.BoolVar(&f.noHeader, "no-header", false, "treat the first row as data")
	fs.StringSliceVar(&f.names, "names", nil, "column names to use instead of the header")
	fs.StringVar(&f.sep, "sep", "", "CSV field delimiter (default from PEX_SEP)")
	fs.StringVar(&f.sheet, "sheet", "", `sheet index, name, or "all" (default from PEX_SHEET)`)
	fs.BoolVar(&f.allSheets, "all-sheets", false, "load every sheet of a workbook")
	fs.StringSliceVar(&f.discrete, "discrete", nil, "columns to keep as strings")
	fs.StringSliceVar(&f.datetime, "datetime", nil, "date/time columns to keep as strings")
	fs.StringSliceVar(&f.dtypes, "dtype", nil, "column=type pairs (string, int64, float64, datetime)")
	fs.StringArrayVar(&f.na, "na", nil, "extra missing-value marker (repeatable)")
	fs.BoolVar(&f.noDefaultNA, "no-default-na", false, "do not treat NA, NaN, NULL, ... as missing")
	fs.StringVar(&f.profile, "profile", "", "YAML load profile applied before the flags")
	cmd.MarkFlagsMutuallyExclusive("sheet", "all-sheets")
}

// options lays the profile and then the explicitly set flags over base.
func (f *loadFlags) options(cmd *cobra.Command, base loader.Options) (loader.Options, error) {
	o := base

	if f.profile != "" {
		p, err := loader.LoadProfile(f.profile)
		if err != nil {
			return o, err
		}
		o = p.Apply(o)
	}

	fs := cmd.Flags()
	if f.noHeader {
		o.HeaderExist = false
	}
	if len(f.names) > 0 {
		o.HeaderNames = f.names
	}
	if fs.Changed("sep") {
		o.Sep = f.sep
	}
	switch {
	case f.allSheets:
		o.Sheet = loader.AllSheets()
	case fs.Changed("sheet"):
		o.Sheet = loader.ParseSheetSelector(f.sheet)
	}
	o.ColnamesDiscrete = append(o.ColnamesDiscrete, f.discrete...)
	o.ColnamesDatetime = append(o.ColnamesDatetime, f.datetime...)

	if len(f.dtypes) > 0 {
		m, err := loader.ParseDTypeMap(f.dtypes)
		if err != nil {
			return o, fmt.Errorf("--dtype: %w", err)
		}
		loader.WithDType(m)(&o)
	}
	if len(f.na) > 0 {
		o.NAValues = loader.NAList(f.na...)
	}
	if f.noDefaultNA {
		o.KeepDefaultNA = false
	}
	return o, nil
}
