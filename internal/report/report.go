// Package report renders pricing results as terminal tables, CSV and JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"

	"github.com/contactkeval/option-pricer/internal/analyzer"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}

// WriteChainCSV writes a priced chain with a strike,price header.
func WriteChainCSV(w io.Writer, quotes []pricing.ChainQuote) error {
	if err := gocsv.Marshal(&quotes, w); err != nil {
		return fmt.Errorf("report: write chain csv: %w", err)
	}
	return nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	return table
}

// RenderGreeks prints the option value and its sensitivities.
func RenderGreeks(w io.Writer, spec pricing.OptionSpec, g pricing.GreeksResult) {
	fmt.Fprintf(w, "%s S=%.2f K=%.2f T=%.4fy vol=%.2f%% r=%.2f%%\n",
		strings.ToUpper(spec.Type.String()), spec.Spot, spec.Strike, spec.Expiry, spec.Volatility*100, spec.Rate*100)

	table := newTable(w, "Measure", "Value")
	table.AppendBulk([][]string{
		{"Price", fmt.Sprintf("%.4f", g.OptionPrice)},
		{"Delta", fmt.Sprintf("%.4f", g.Delta)},
		{"Gamma", fmt.Sprintf("%.4f", g.Gamma)},
		{"Theta (year)", fmt.Sprintf("%.4f", g.Theta)},
		{"Theta (day)", fmt.Sprintf("%.4f", g.ThetaPerDay())},
		{"Vega", fmt.Sprintf("%.4f", g.Vega)},
		{"Rho", fmt.Sprintf("%.4f", g.Rho)},
	})
	table.Render()
}

// RenderChain prints one row per strike in chain order.
func RenderChain(w io.Writer, spot float64, optType pricing.OptionType, quotes []pricing.ChainQuote) {
	table := newTable(w, "Strike", strings.ToUpper(optType.String()), "Moneyness")
	for _, q := range quotes {
		table.Append([]string{
			fmt.Sprintf("%.2f", q.Strike),
			fmt.Sprintf("%.4f", q.Price),
			moneynessLabel(optType, spot, q.Strike),
		})
	}
	table.Render()
}

// RenderAnalysis prints a market versus model comparison.
func RenderAnalysis(w io.Writer, a *analyzer.Analysis) {
	pct := "n/a"
	if a.PercentageDifference != nil {
		pct = fmt.Sprintf("%+.2f%%", *a.PercentageDifference)
	}

	table := newTable(w, "Field", "Value")
	table.AppendBulk([][]string{
		{"Ticker", a.Ticker},
		{"Type", strings.ToUpper(a.Type.String())},
		{"Strike", fmt.Sprintf("%.2f", a.Strike)},
		{"Days", fmt.Sprintf("%g", a.DaysToExpiration)},
		{"Spot", fmt.Sprintf("%.2f", a.CurrentPrice)},
		{"Volatility", fmt.Sprintf("%.2f%%", a.Volatility*100)},
		{"Theoretical", fmt.Sprintf("%.4f", a.TheoreticalPrice)},
		{"Market", fmt.Sprintf("%.4f", a.MarketPrice)},
		{"Difference", fmt.Sprintf("%+.4f", a.Difference)},
		{"Difference %", pct},
		{"Verdict", verdict(a)},
	})
	table.Render()
}

// RenderRisk prints a risk profile.
func RenderRisk(w io.Writer, r *analyzer.RiskProfile) {
	table := newTable(w, "Field", "Value")
	table.AppendBulk([][]string{
		{"Ticker", r.Ticker},
		{"Type", strings.ToUpper(r.Type.String())},
		{"Spot", fmt.Sprintf("%.2f", r.CurrentPrice)},
		{"Strike", fmt.Sprintf("%.2f", r.Strike)},
		{"Moneyness", fmt.Sprintf("%.4f (%s)", r.Moneyness, moneynessLabel(r.Type, r.CurrentPrice, r.Strike))},
		{"Volatility", fmt.Sprintf("%.2f%%", r.Volatility*100)},
		{"Price", fmt.Sprintf("%.4f", r.Greeks.OptionPrice)},
		{"Delta", fmt.Sprintf("%.4f", r.Greeks.Delta)},
		{"Gamma", fmt.Sprintf("%.4f", r.Greeks.Gamma)},
		{"Theta (day)", fmt.Sprintf("%.4f", r.Greeks.ThetaPerDay())},
		{"Vega", fmt.Sprintf("%.4f", r.Greeks.Vega)},
		{"Rho", fmt.Sprintf("%.4f", r.Greeks.Rho)},
	})
	table.Render()
}

func moneynessLabel(optType pricing.OptionType, spot, strike float64) string {
	switch {
	case spot == strike:
		return "ATM"
	case (optType == pricing.Call) == (spot > strike):
		return "ITM"
	default:
		return "OTM"
	}
}

func verdict(a *analyzer.Analysis) string {
	switch {
	case a.Difference > 0:
		return "overpriced"
	case a.Difference < 0:
		return "underpriced"
	default:
		return "fair"
	}
}
