package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/askdb/askdb/internal/model"
	"github.com/askdb/askdb/internal/render"
)

// printResult writes the generated SQL and the result table. The SQL is
// printed even when the run failed, so the user can see what was rejected.
// A pipeline failure is returned for the caller to report.
func printResult(w io.Writer, res *model.Result) error {
	if res.SQL != "" {
		fmt.Fprintf(w, "%s %s\n", color.New(color.FgCyan, color.Bold).Sprint("sql:"), res.SQL)
	}
	if res.Err != nil {
		return res.Err
	}
	if len(res.Rows) == 0 {
		fmt.Fprintln(w, color.YellowString("no rows returned"))
		return nil
	}
	render.Table(w, res.Columns, render.Cells(res.Rows))
	fmt.Fprintln(w, color.GreenString("%d row(s)", len(res.Rows)))
	return nil
}
