package functions

import (
	"encoding/csv"
	"os"

	"github.com/smilemakc/httpdef/errs"
	"github.com/smilemakc/httpdef/value"
)

// parameterizeCallable implements the `parameterize`/`P` built-in: one
// positional argument (a CSV file path), returns a list of row-maps.
func (r *Registry) parameterizeCallable() value.Callable {
	return func(positional []any, keyword map[string]any) (any, error) {
		path, err := requireSingleArg("parameterize", positional, keyword)
		if err != nil {
			return nil, err
		}
		if r.csv == nil {
			return nil, errs.NewParamsError("parameterize", "no CSV row provider configured")
		}
		rows, err := r.csv.Rows(path)
		if err != nil {
			return nil, errs.NewParamsError("parameterize", err.Error())
		}
		out := make([]any, len(rows))
		for i, row := range rows {
			m := make(map[string]any, len(row))
			for k, v := range row {
				m[k] = v
			}
			out[i] = m
		}
		return out, nil
	}
}

// environCallable implements the `environ`/`ENV` built-in: one positional
// argument (an environment variable name), returns its string value.
func (r *Registry) environCallable() value.Callable {
	return func(positional []any, keyword map[string]any) (any, error) {
		name, err := requireSingleArg("environ", positional, keyword)
		if err != nil {
			return nil, err
		}
		if r.env != nil {
			if v, ok := r.env.Get(name); ok {
				return v, nil
			}
		}
		return nil, errs.NewParamsError("environ", "environment variable not set: "+name)
	}
}

// resourceCallable implements the supplemented `resource` built-in
// (SPEC_FULL §4): one positional argument (a resource alias), returns the
// resource's bound value.
func (r *Registry) resourceCallable() value.Callable {
	return func(positional []any, keyword map[string]any) (any, error) {
		alias, err := requireSingleArg("resource", positional, keyword)
		if err != nil {
			return nil, err
		}
		if r.resources == nil {
			return nil, errs.NewParamsError("resource", "no resource provider configured")
		}
		v, ok := r.resources.Resource(alias)
		if !ok {
			return nil, errs.NewParamsError("resource", "unknown resource alias: "+alias)
		}
		return v, nil
	}
}

// OSEnvGetter is the default EnvGetter, backed by the process environment.
type OSEnvGetter struct{}

// Get implements EnvGetter.
func (OSEnvGetter) Get(name string) (string, bool) { return os.LookupEnv(name) }

// FileCSVProvider is the default CSVProvider, reading rows from disk.
// The first row is treated as the header and used as each subsequent
// row's keys.
type FileCSVProvider struct{}

// Rows implements CSVProvider.
func (FileCSVProvider) Rows(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]map[string]any, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
