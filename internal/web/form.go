package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/pex/internal/loader"
)

// optionsFromForm lays the request's form fields over base. A YAML profile
// in the "profile" field is applied first so individual fields win over it.
func optionsFromForm(r *http.Request, base loader.Options) (loader.Options, error) {
	o := base

	if doc := strings.TrimSpace(r.FormValue("profile")); doc != "" {
		p, err := loader.ParseProfile([]byte(doc))
		if err != nil {
			return o, err
		}
		o = p.Apply(o)
	}

	if v := r.FormValue("header"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return o, fmt.Errorf("%w: header must be true or false", errInvalidForm)
		}
		o.HeaderExist = b
	}
	if names := splitList(r.FormValue("names"), ","); len(names) > 0 {
		o.HeaderNames = names
	}
	if v := r.FormValue("sep"); v != "" {
		o.Sep = v
	}
	if v := r.FormValue("sheet"); v != "" {
		o.Sheet = loader.ParseSheetSelector(v)
	}
	o.ColnamesDiscrete = append(o.ColnamesDiscrete, splitList(r.FormValue("discrete"), ",")...)
	o.ColnamesDatetime = append(o.ColnamesDatetime, splitList(r.FormValue("datetime"), ",")...)

	if pairs := splitList(r.FormValue("dtype"), ","); len(pairs) > 0 {
		m, err := loader.ParseDTypeMap(pairs)
		if err != nil {
			return o, fmt.Errorf("%w: %v", errInvalidForm, err)
		}
		loader.WithDType(m)(&o)
	}

	if _, ok := r.Form["na"]; ok {
		o.NAValues = loader.NAList(splitList(r.FormValue("na"), "|")...)
	}
	if v := r.FormValue("keep_default_na"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return o, fmt.Errorf("%w: keep_default_na must be true or false", errInvalidForm)
		}
		o.KeepDefaultNA = b
	}
	return o, nil
}

// previewRowsFromForm reads the "rows" field, falling back to def.
func previewRowsFromForm(r *http.Request, def int) (int, error) {
	v := r.FormValue("rows")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: rows must be a non-negative integer", errInvalidForm)
	}
	return n, nil
}

// splitList splits s on sep, trimming entries and dropping empty ones.
func splitList(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
