package application

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/ngmetro/internal/domain"
)

const (
	noteOutsidePeriod = "Current date is outside the latest billing period"
	notePrefixParse   = "Date parsing error: "
)

var intervalLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// Aggregate normalizes a bills payload into per-bill periods, running totals
// and an estimate for the latest period as seen at now. Bills keep backend
// order and summary units come from the last bill.
func Aggregate(resp domain.BillsResponse, now time.Time) (domain.UsageReport, error) {
	bills := resp.Bills()
	if len(bills) == 0 {
		return domain.UsageReport{}, &domain.AggregateError{
			Reason:     domain.ErrNoBills.Error(),
			Diagnostic: diagnose(resp),
			Err:        domain.ErrNoBills,
		}
	}

	periods := make([]domain.BillingPeriod, 0, len(bills))
	summary := domain.UsageSummary{UsageUnit: domain.UnitTherms, CostUnit: domain.UnitUSD}

	for _, bill := range bills {
		period := billingPeriod(bill)
		periods = append(periods, period)

		summary.TotalUsage += period.UsageAmount
		summary.TotalCost += period.CostAmount
		summary.UsageUnit = period.UsageUnit
		summary.CostUnit = period.CostUnit
	}
	summary.BillCount = len(periods)

	costs := make([]domain.BillingPeriod, len(periods))
	copy(costs, periods)

	estimate := estimateLatest(periods[len(periods)-1], now)

	return domain.UsageReport{
		UsageOverTime:   periods,
		CostOverTime:    costs,
		CurrentEstimate: &estimate,
		Summary:         summary,
	}, nil
}

func billingPeriod(bill domain.Bill) domain.BillingPeriod {
	period := domain.BillingPeriod{
		UsageUnit:    domain.UnitTherms,
		CostUnit:     domain.UnitUSD,
		TimeInterval: bill.TimeInterval,
	}
	if start, end, ok := strings.Cut(bill.TimeInterval, "/"); ok {
		period.StartDate = start
		period.EndDate = end
	}

	for _, segment := range bill.Segments {
		for _, quantity := range segment.ServiceQuantities {
			unit, ok := usageUnit(quantity)
			if !ok {
				continue
			}
			period.UsageAmount += quantity.ServiceQuantity.Float()
			period.UsageUnit = unit
		}

		// Both figures are summed as the portal reports them; they may
		// describe the same charge.
		period.CostAmount += segment.UsageCharges.Float()
		period.CostAmount += segment.CurrentAmount.Float()
	}

	return period
}

// usageUnit reports the unit a quantity counts under, or false when the
// quantity is not gas usage.
func usageUnit(quantity domain.ServiceQuantity) (string, bool) {
	unit := quantity.Unit
	lowerUnit := strings.ToLower(unit)
	identifier := quantity.ServiceQuantityIdentifier

	switch {
	case unit != "" && (strings.EqualFold(unit, "TH") || strings.Contains(lowerUnit, "therm")):
		return domain.UnitTherms, true
	case identifier != "" && (strings.Contains(identifier, "NET_USAGE") || strings.Contains(strings.ToLower(identifier), "therm")):
		return domain.UnitTherms, true
	case unit != "" && (strings.Contains(lowerUnit, "gas") || strings.Contains(lowerUnit, "cubic")):
		return unit, true
	default:
		return "", false
	}
}

func estimateLatest(latest domain.BillingPeriod, now time.Time) domain.CurrentPeriodEstimate {
	estimate := domain.CurrentPeriodEstimate{
		PeriodStart:       latest.StartDate,
		PeriodEnd:         latest.EndDate,
		ActualPeriodUsage: latest.UsageAmount,
		ActualPeriodCost:  latest.CostAmount,
		UsageUnit:         latest.UsageUnit,
		CostUnit:          latest.CostUnit,
	}

	start, err := parseWallClock(latest.StartDate)
	if err != nil {
		estimate.Note = notePrefixParse + err.Error()
		return estimate
	}
	end, err := parseWallClock(latest.EndDate)
	if err != nil {
		estimate.Note = notePrefixParse + err.Error()
		return estimate
	}

	current := wallClock(now)
	if current.Before(start) || current.After(end) {
		estimate.Note = noteOutsidePeriod
		return estimate
	}

	totalDays := wholeDays(end.Sub(start))
	elapsedDays := wholeDays(current.Sub(start))

	var usageRate, costRate float64
	if totalDays > 0 {
		usageRate = latest.UsageAmount / float64(totalDays)
		costRate = latest.CostAmount / float64(totalDays)
	}

	estimate.PeriodProjection = &domain.PeriodProjection{
		TotalPeriodDays:      totalDays,
		ElapsedDays:          elapsedDays,
		EstimatedUsageSoFar:  round2(usageRate * float64(elapsedDays)),
		EstimatedCostSoFar:   round2(costRate * float64(elapsedDays)),
		ProjectedPeriodUsage: round2(usageRate * float64(totalDays)),
		ProjectedPeriodCost:  round2(costRate * float64(totalDays)),
	}
	estimate.IsCurrentPeriod = true

	return estimate
}

// parseWallClock parses an interval endpoint and drops its offset, keeping
// the local wall-clock reading.
func parseWallClock(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, errors.New("empty date")
	}

	for _, layout := range intervalLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return wallClock(parsed), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid isoformat string: %q", value)
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func wholeDays(d time.Duration) int {
	return int(d / (24 * time.Hour))
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func diagnose(resp domain.BillsResponse) *domain.ShapeDiagnostic {
	diagnostic := &domain.ShapeDiagnostic{
		HasData:       resp.Data != nil,
		GraphQLErrors: len(resp.Errors),
	}
	if resp.Data != nil && resp.Data.BillingAccount != nil {
		diagnostic.HasBillingAccount = true
		diagnostic.BillsCount = len(resp.Data.BillingAccount.Bills)
	}

	return diagnostic
}
