package usage

import (
	"fmt"
	"math"
	"strings"

	"github.com/bnema/ngmetro/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultHistory = 12
	barWidth       = 24
)

type RenderOptions struct {
	// History caps the number of past bills listed, newest first. Zero
	// means the default; negative lists every bill.
	History int
}

func renderView(report domain.UsageReport, opts RenderOptions, s styles) string {
	summary := report.Summary
	lines := []string{
		s.title.Render("National Grid NYC Metro Gas Usage"),
		s.header.Render(fmt.Sprintf("bills: %d", summary.BillCount)),
	}

	if len(report.UsageOverTime) == 0 {
		lines = append(lines, s.empty.Render("No billing periods available."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines, s.section.Render(renderSummary(summary, s)))

	if report.CurrentEstimate != nil {
		lines = append(lines, s.section.Render(renderEstimate(*report.CurrentEstimate, s)))
	}

	lines = append(lines, s.section.Render(renderHistory(report.UsageOverTime, opts, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderSummary(summary domain.UsageSummary, s styles) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		s.period.Render("Totals"),
		s.detail.Render(fmt.Sprintf("usage: %s", formatQuantity(summary.TotalUsage, summary.UsageUnit))),
		s.detail.Render(fmt.Sprintf("cost: %s", formatQuantity(summary.TotalCost, summary.CostUnit))),
	)
}

func renderEstimate(estimate domain.CurrentPeriodEstimate, s styles) string {
	parts := []string{
		s.period.Render(fmt.Sprintf("Latest period %s - %s", estimate.PeriodStart, estimate.PeriodEnd)),
		s.detail.Render(fmt.Sprintf("billed: %s, %s",
			formatQuantity(estimate.ActualPeriodUsage, estimate.UsageUnit),
			formatQuantity(estimate.ActualPeriodCost, estimate.CostUnit))),
	}

	if !estimate.IsCurrentPeriod || estimate.PeriodProjection == nil {
		note := estimate.Note
		if note == "" {
			note = "not the current period"
		}
		return lipgloss.JoinVertical(lipgloss.Left, append(parts, s.warning.Render(note))...)
	}

	projection := estimate.PeriodProjection
	progress := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.label.Render("elapsed:"),
		" ",
		renderProgressBar(elapsedPercent(projection.ElapsedDays, projection.TotalPeriodDays), barWidth, s),
		" ",
		s.meta.Render(fmt.Sprintf("day %d of %d", projection.ElapsedDays, projection.TotalPeriodDays)),
	)

	parts = append(parts,
		progress,
		s.detail.Render(fmt.Sprintf("so far: %s, %s",
			formatQuantity(projection.EstimatedUsageSoFar, estimate.UsageUnit),
			formatQuantity(projection.EstimatedCostSoFar, estimate.CostUnit))),
		s.detail.Render(fmt.Sprintf("projected: %s, %s",
			formatQuantity(projection.ProjectedPeriodUsage, estimate.UsageUnit),
			formatQuantity(projection.ProjectedPeriodCost, estimate.CostUnit))),
	)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderHistory(periods []domain.BillingPeriod, opts RenderOptions, s styles) string {
	limit := opts.History
	if limit == 0 {
		limit = defaultHistory
	}
	if limit < 0 || limit > len(periods) {
		limit = len(periods)
	}

	lines := []string{s.period.Render(fmt.Sprintf("History (last %d)", limit))}

	var peak float64
	for _, p := range periods {
		peak = math.Max(peak, p.UsageAmount)
	}

	for i := len(periods) - 1; i >= len(periods)-limit; i-- {
		p := periods[i]
		lines = append(lines, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.label.Render(fmt.Sprintf("%s - %s", shortDate(p.StartDate), shortDate(p.EndDate))),
			" ",
			renderUsageBar(p.UsageAmount, peak, s),
			" ",
			s.detail.Render(fmt.Sprintf("%s  %s",
				formatQuantity(p.UsageAmount, p.UsageUnit),
				formatQuantity(p.CostAmount, p.CostUnit))),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderUsageBar(value, peak float64, s styles) string {
	if peak <= 0 {
		return renderProgressBar(0, barWidth, s)
	}
	return renderProgressBar(value/peak*100, barWidth, s)
}

func renderProgressBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(percent) / 100.0))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func elapsedPercent(elapsed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(elapsed) / float64(total) * 100
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func formatQuantity(value float64, unit string) string {
	if unit == domain.UnitUSD {
		return fmt.Sprintf("$%.2f", value)
	}
	if unit == "" {
		return fmt.Sprintf("%.2f", value)
	}
	return fmt.Sprintf("%.2f %s", value, unit)
}

// shortDate keeps the calendar date of an ISO timestamp.
func shortDate(value string) string {
	if len(value) >= 10 {
		return value[:10]
	}
	if value == "" {
		return "?"
	}
	return value
}
