// Package report summarizes stored runs per model.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/codesolver/codesolver/internal/pricing"
	"github.com/codesolver/codesolver/internal/result"
)

type ModelSummary struct {
	Model        string  `json:"model"`
	Runs         int     `json:"runs"`
	SolveRate    float64 `json:"solve_rate"`
	MeanScore    float64 `json:"mean_score"`
	MeanTokens   float64 `json:"mean_tokens"`
	TotalCostUSD float64 `json:"total_cost_usd"`
}

// Generate aggregates runs and renders them in the requested format. A
// pricing table, when provided, fills in costs for runs saved without one.
func Generate(runs []*result.Run, format string, w io.Writer, table *pricing.Table) error {
	summaries := aggregate(runs, table)
	switch format {
	case "markdown":
		return writeMarkdown(summaries, w)
	case "json":
		return writeJSON(summaries, w)
	default:
		return writeTable(summaries, w)
	}
}

func aggregate(runs []*result.Run, table *pricing.Table) []ModelSummary {
	type accum struct {
		count  int
		solved int
		score  float64
		tokens float64
		cost   float64
	}
	byModel := map[string]*accum{}

	for _, r := range runs {
		model := r.Model
		if model == "" {
			model = "(unknown)"
		}
		a, ok := byModel[model]
		if !ok {
			a = &accum{}
			byModel[model] = a
		}
		a.count++
		a.score += r.Score
		a.tokens += float64(r.Usage.InputTokens + r.Usage.OutputTokens)
		if r.Score == 1.0 {
			a.solved++
		}
		cost := r.CostUSD
		if cost == 0 {
			cost = table.Cost(r.Model, r.Usage)
		}
		a.cost += cost
	}

	var summaries []ModelSummary
	for model, a := range byModel {
		summaries = append(summaries, ModelSummary{
			Model:        model,
			Runs:         a.count,
			SolveRate:    float64(a.solved) / float64(a.count),
			MeanScore:    a.score / float64(a.count),
			MeanTokens:   a.tokens / float64(a.count),
			TotalCostUSD: a.cost,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Model < summaries[j].Model
	})
	return summaries
}

func writeTable(summaries []ModelSummary, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tRUNS\tSOLVE RATE\tMEAN SCORE\tMEAN TOKENS\tTOTAL COST")
	fmt.Fprintln(tw, strings.Repeat("-", 72))
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%.0f%%\t%.3f\t%.0f\t$%.4f\n",
			s.Model, s.Runs, s.SolveRate*100, s.MeanScore, s.MeanTokens, s.TotalCostUSD)
	}
	return tw.Flush()
}

func writeMarkdown(summaries []ModelSummary, w io.Writer) error {
	fmt.Fprintln(w, "| Model | Runs | Solve Rate | Mean Score | Mean Tokens | Total Cost |")
	fmt.Fprintln(w, "|---|---|---|---|---|---|")
	for _, s := range summaries {
		fmt.Fprintf(w, "| %s | %d | %.0f%% | %.3f | %.0f | $%.4f |\n",
			s.Model, s.Runs, s.SolveRate*100, s.MeanScore, s.MeanTokens, s.TotalCostUSD)
	}
	return nil
}

func writeJSON(summaries []ModelSummary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}
