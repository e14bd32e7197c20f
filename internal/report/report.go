// Package report prints the end-of-run diagnostics: step timings, the
// collected statistics and API usage.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"

	"github.com/lelborn/lelborn/internal/domain"
	"github.com/lelborn/lelborn/internal/format"
	"github.com/lelborn/lelborn/internal/gateway"
	"github.com/lelborn/lelborn/internal/render"
)

const nameWidth = 23

// Reporter writes human-readable diagnostics to out.
type Reporter struct {
	out io.Writer
}

// New creates a Reporter writing to out.
func New(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Timings prints one line per step followed by the total and the slowest step.
func (r *Reporter) Timings(timings []domain.Timing) {
	color.New(color.FgCyan, color.Bold).Fprintln(r.out, "\nPerformance Summary:")
	fmt.Fprintln(r.out, strings.Repeat("-", 30))
	if len(timings) == 0 {
		fmt.Fprintln(r.out, "   no steps recorded")
		return
	}

	seconds := make(stats.Float64Data, 0, len(timings))
	for _, tm := range timings {
		r.timingLine(tm.Name, tm.Duration)
		seconds = append(seconds, tm.Duration.Seconds())
	}

	total, _ := stats.Sum(seconds)
	r.timingLine("total time", time.Duration(total*float64(time.Second)))

	slowest, _ := stats.Max(seconds)
	for _, tm := range timings {
		if tm.Duration.Seconds() == slowest {
			fmt.Fprintf(r.out, "   slowest step: %s\n", tm.Name)
			break
		}
	}
}

func (r *Reporter) timingLine(name string, d time.Duration) {
	fmt.Fprintf(r.out, "%-*s%s\n", nameWidth, "   "+name+":", format.Duration(d))
}

// Summary prints the collected statistics as a table.
func (r *Reporter) Summary(s domain.Stats) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(r.out)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.AppendHeader(table.Row{"Statistic", "Value"})
	tbl.AppendRows([]table.Row{
		{"Age", s.Age},
		{"Followers", format.Number(s.Followers)},
		{"Repositories", format.Number(s.Repos)},
		{"Contributed repositories", format.Number(s.ContribRepos)},
		{"Stars", format.Number(s.Stars)},
		{"Commits", format.Number(s.Commits)},
		{"Lines added", format.Number(s.LinesOfCode.Added)},
		{"Lines deleted", format.Number(s.LinesOfCode.Deleted)},
		{"Lines total", format.Number(s.LinesOfCode.Total)},
	})
	fmt.Fprintln(r.out)
	tbl.Render()
}

// APIUsage prints the total request count and every operation that made at least one request.
// Known operations come first in their usual order; others follow alphabetically.
func (r *Reporter) APIUsage(counts map[string]int) {
	color.New(color.FgCyan, color.Bold).Fprintln(r.out, "\nAPI Usage:")

	total := 0
	for _, n := range counts {
		total += n
	}
	fmt.Fprintf(r.out, "   Total queries: %d\n", total)

	for _, op := range orderedOperations(counts) {
		if n := counts[op]; n > 0 {
			fmt.Fprintf(r.out, "   %s: %d\n", op, n)
		}
	}
}

func orderedOperations(counts map[string]int) []string {
	known := make(map[string]bool, len(gateway.Operations))
	ops := make([]string, 0, len(counts))
	for _, op := range gateway.Operations {
		known[op] = true
		if _, ok := counts[op]; ok {
			ops = append(ops, op)
		}
	}
	var extra []string
	for op := range counts {
		if !known[op] {
			extra = append(extra, op)
		}
	}
	sort.Strings(extra)
	return append(ops, extra...)
}

// Templates prints one status line per template document.
func (r *Reporter) Templates(results []render.Result) {
	for _, res := range results {
		switch {
		case res.Err != nil:
			color.New(color.FgYellow).Fprintf(r.out, "   %s: skipped (%v)\n", res.Path, res.Err)
		case res.Changed:
			color.New(color.FgGreen).Fprintf(r.out, "   %s: updated\n", res.Path)
		default:
			fmt.Fprintf(r.out, "   %s: unchanged\n", res.Path)
		}
	}
}
