package loader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile is a YAML description of load options. Unset fields keep the
// value of the options the profile is applied to.
//
//	header_exist: true
//	sep: ";"
//	sheet: Sales
//	colnames_discrete: [zip, account_id]
//	colnames_datetime: [created_at]
//	dtype: {amount: float64}
//	na_values: {amount: ["-", "n.a."]}
type Profile struct {
	HeaderExist      *bool            `yaml:"header_exist"`
	HeaderNames      []string         `yaml:"header_names"`
	Sep              string           `yaml:"sep"`
	Sheet            *SheetSelector   `yaml:"sheet"`
	SheetName        *SheetSelector   `yaml:"sheet_name"`
	ColnamesDiscrete []string         `yaml:"colnames_discrete"`
	ColnamesDatetime []string         `yaml:"colnames_datetime"`
	DType            map[string]DType `yaml:"dtype"`
	NAValues         NAValues         `yaml:"na_values"`
	KeepDefaultNA    *bool            `yaml:"keep_default_na"`
}

// LoadProfile reads and validates a profile file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes and validates a profile document.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the fields that can be checked without the file.
func (p *Profile) Validate() error {
	var errs []string
	if p.Sep != "" {
		if _, err := ParseDelimiter(p.Sep); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if p.Sheet != nil && p.SheetName != nil {
		errs = append(errs, "set only one of sheet and sheet_name")
	}
	for col, dt := range p.DType {
		if _, err := ParseDType(string(dt)); err != nil {
			errs = append(errs, fmt.Sprintf("dtype for %q: %v", col, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid profile:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Apply returns base with the profile's fields laid over it.
func (p *Profile) Apply(base Options) Options {
	o := base
	if p.HeaderExist != nil {
		o.HeaderExist = *p.HeaderExist
	}
	if len(p.HeaderNames) > 0 {
		o.HeaderNames = p.HeaderNames
	}
	if p.Sep != "" {
		o.Sep = p.Sep
	}
	switch {
	case p.Sheet != nil:
		o.Sheet = *p.Sheet
	case p.SheetName != nil:
		o.Sheet = *p.SheetName
	}
	o.ColnamesDiscrete = append(o.ColnamesDiscrete, p.ColnamesDiscrete...)
	o.ColnamesDatetime = append(o.ColnamesDatetime, p.ColnamesDatetime...)
	if len(p.DType) > 0 {
		merged := make(map[string]DType, len(o.DType)+len(p.DType))
		for k, v := range o.DType {
			merged[k] = v
		}
		for k, v := range p.DType {
			merged[k] = v
		}
		o.DType = merged
	}
	if !p.NAValues.IsZero() {
		o.NAValues = p.NAValues
	}
	if p.KeepDefaultNA != nil {
		o.KeepDefaultNA = *p.KeepDefaultNA
	}
	return o
}

// UnmarshalYAML accepts a canonical dtype name or alias.
func (d *DType) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: dtype must be a string", node.Line)
	}
	dt, err := ParseDType(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = dt
	return nil
}

// UnmarshalYAML maps an integer to a sheet position, "all" to every sheet,
// and any other string to a sheet name. yaml.v3 never calls it for null, so
// "sheet: null" leaves the selector unset.
func (s *SheetSelector) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: sheet must be a name, index, or \"all\"", node.Line)
	}
	switch node.Tag {
	case "!!int":
		i, err := strconv.Atoi(node.Value)
		if err != nil || i < 0 {
			return fmt.Errorf("line %d: sheet index must be a non-negative integer", node.Line)
		}
		*s = SheetIndex(i)
	default:
		switch strings.ToLower(node.Value) {
		case "all", "*":
			*s = AllSheets()
		default:
			*s = SheetName(node.Value)
		}
	}
	return nil
}

func (s SheetSelector) MarshalYAML() (interface{}, error) {
	switch {
	case s.all:
		return "all", nil
	case s.name != "":
		return s.name, nil
	default:
		return s.index, nil
	}
}

// UnmarshalYAML accepts a single marker, a list of markers, a mapping of
// column name to marker(s), or the {global, per_column} mapping that
// MarshalYAML writes when both kinds are set.
func (n *NAValues) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode, yaml.SequenceNode:
		values, err := decodeStringList(node)
		if err != nil {
			return err
		}
		*n = NAValues{Global: values}
	case yaml.MappingNode:
		if !isSplitNAValues(node) {
			per, err := decodePerColumn(node)
			if err != nil {
				return err
			}
			*n = NAValues{PerColumn: per}
			return nil
		}
		var out NAValues
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			var err error
			switch key.Value {
			case "global":
				out.Global, err = decodeStringList(val)
			case "per_column":
				out.PerColumn, err = decodePerColumn(val)
			default:
				err = fmt.Errorf("line %d: unexpected key %q next to per_column", key.Line, key.Value)
			}
			if err != nil {
				return err
			}
		}
		*n = out
	default:
		return fmt.Errorf("line %d: na_values must be a string, list, or mapping", node.Line)
	}
	return nil
}

// isSplitNAValues reports whether a mapping is the {global, per_column}
// form: it has a per_column key holding a mapping.
func isSplitNAValues(node *yaml.Node) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "per_column" && node.Content[i+1].Kind == yaml.MappingNode {
			return true
		}
	}
	return false
}

func decodePerColumn(node *yaml.Node) (map[string][]string, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: per-column markers must be a mapping", node.Line)
	}
	per := make(map[string][]string, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		values, err := decodeStringList(node.Content[i+1])
		if err != nil {
			return nil, err
		}
		per[node.Content[i].Value] = values
	}
	return per, nil
}

func (n NAValues) MarshalYAML() (interface{}, error) {
	switch {
	case len(n.PerColumn) == 0:
		return n.Global, nil
	case len(n.Global) == 0:
		return n.PerColumn, nil
	default:
		return map[string]interface{}{"global": n.Global, "per_column": n.PerColumn}, nil
	}
}

func decodeStringList(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(node.Content))
		for _, c := range node.Content {
			if c.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: expected a scalar marker", c.Line)
			}
			out = append(out, c.Value)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("line %d: expected a marker or list of markers", node.Line)
	}
}
