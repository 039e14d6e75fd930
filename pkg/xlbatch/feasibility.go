package xlbatch

import (
	"fmt"
	"strings"

	"github.com/locvowork/xlfilecreator/pkg/xltemplate"
)

// CheckFeasibility verifies that every requested value occurs in the split
// column of every template. It fails on the first missing value with a
// *xltemplate.DataIntegrityError, before anything is written.
func CheckFeasibility(templates []*xltemplate.Template, splitBy string, values []string) error {
	for _, t := range templates {
		if _, ok := t.Column(splitBy); !ok {
			return &xltemplate.ConfigurationError{
				Component: "batch",
				Key:       splitBy,
				Err:       fmt.Errorf("split column not found in template %q", t.Name()),
			}
		}
		for _, v := range values {
			if !t.HasValue(splitBy, v) {
				return &xltemplate.DataIntegrityError{Template: t.Name(), Column: splitBy, Value: v}
			}
		}
	}
	return nil
}

// dedupe trims values and removes repeats, keeping the first occurrence. A
// blank value is an error.
func dedupe(values []string) ([]string, error) {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for i, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, &xltemplate.ConfigurationError{
				Component: "batch",
				Key:       "split_values",
				Err:       fmt.Errorf("value %d is blank", i+1),
			}
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}
