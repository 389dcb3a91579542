package domain

const (
	UnitTherms = "therms"
	UnitUSD    = "USD"
)

// BillingPeriod is one normalized backend bill.
type BillingPeriod struct {
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	UsageAmount  float64 `json:"usage_amount"`
	UsageUnit    string  `json:"usage_unit"`
	CostAmount   float64 `json:"cost_amount"`
	CostUnit     string  `json:"cost_unit"`
	TimeInterval string  `json:"time_interval"`
}

type UsageSummary struct {
	TotalUsage float64 `json:"total_usage"`
	TotalCost  float64 `json:"total_cost"`
	BillCount  int     `json:"number_of_bills"`
	UsageUnit  string  `json:"usage_unit"`
	CostUnit   string  `json:"cost_unit"`
}

// PeriodProjection holds the linear-rate figures, only present while "now"
// falls inside the latest billing period.
type PeriodProjection struct {
	TotalPeriodDays      int     `json:"total_period_days"`
	ElapsedDays          int     `json:"elapsed_days"`
	EstimatedUsageSoFar  float64 `json:"estimated_usage_so_far"`
	EstimatedCostSoFar   float64 `json:"estimated_cost_so_far"`
	ProjectedPeriodUsage float64 `json:"projected_period_usage"`
	ProjectedPeriodCost  float64 `json:"projected_period_cost"`
}

type CurrentPeriodEstimate struct {
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	*PeriodProjection
	ActualPeriodUsage float64 `json:"actual_period_usage"`
	ActualPeriodCost  float64 `json:"actual_period_cost"`
	UsageUnit         string  `json:"usage_unit"`
	CostUnit          string  `json:"cost_unit"`
	IsCurrentPeriod   bool    `json:"is_current_period"`
	Note              string  `json:"note,omitempty"`
}

// UsageReport is the success payload of a pipeline run.
type UsageReport struct {
	UsageOverTime   []BillingPeriod        `json:"usage_over_time"`
	CostOverTime    []BillingPeriod        `json:"cost_over_time"`
	CurrentEstimate *CurrentPeriodEstimate `json:"current_month_estimate"`
	Summary         UsageSummary           `json:"summary"`
}
