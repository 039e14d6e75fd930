package xltemplate

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// filterRows evaluates a boolean expression against every data row. The row
// is exposed as `row`, a map from header to cell text, so numeric tests use
// the float() builtin: `float(row["Amount"]) > 0`.
func filterRows(expression string, headers []string, rows [][]string) ([][]string, error) {
	program, err := expr.Compile(expression,
		expr.Env(map[string]any{"row": map[string]any{}}),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("compiling expression: %w", err)
	}

	var kept [][]string
	for i, r := range rows {
		fields := make(map[string]any, len(headers))
		for j, h := range headers {
			fields[h] = r[j]
		}
		out, err := expr.Run(program, map[string]any{"row": fields})
		if err != nil {
			return nil, fmt.Errorf("data row %d: %w", i+1, err)
		}
		if ok, _ := out.(bool); ok {
			kept = append(kept, r)
		}
	}
	return kept, nil
}
