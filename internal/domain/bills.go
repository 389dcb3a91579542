package domain

// BillsResponse mirrors the GraphQL payload of the bill-resolution
// cost/usage query. Every level is optional so a missing branch can be
// reported instead of failing to decode.
type BillsResponse struct {
	Data   *BillsData     `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

type GraphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

type BillsData struct {
	BillingAccount *BillingAccount `json:"billingAccountByAuthContext"`
}

type BillingAccount struct {
	URN   string `json:"urn"`
	Bills []Bill `json:"bills"`
}

type Bill struct {
	URN          string        `json:"urn"`
	TimeInterval string        `json:"timeInterval"`
	Segments     []BillSegment `json:"segments"`
}

type BillSegment struct {
	URN                   string            `json:"urn"`
	UsageInterval         string            `json:"usageInterval"`
	Estimated             bool              `json:"estimated"`
	ServiceAgreement      *ServiceAgreement `json:"serviceAgreement"`
	ServiceQuantities     []ServiceQuantity `json:"serviceQuantities"`
	UsageCharges          *Amount           `json:"usageCharges"`
	CurrentAmount         *Amount           `json:"currentAmount"`
	DeferredNEMCharges    *Amount           `json:"deferredNEMCharges"`
	TotalNEMCharges       *Amount           `json:"totalNEMCharges"`
	EnergyPurchased       *Amount           `json:"energyPurchased"`
	EnergySold            *Amount           `json:"energySold"`
	RolloverBalanceEarned *Amount           `json:"rolloverBalanceEarned"`
	RolloverBalanceUsed   *Amount           `json:"rolloverBalanceUsed"`
	TotalEnergyCosts      *Amount           `json:"totalEnergyCosts"`
}

type ServiceAgreement struct {
	URN         string `json:"urn"`
	UUID        string `json:"uuid"`
	ServiceType string `json:"serviceType"`
}

type ServiceQuantity struct {
	Unit                      string  `json:"unit"`
	ServiceQuantityIdentifier string  `json:"serviceQuantityIdentifier"`
	ServiceQuantity           *Amount `json:"serviceQuantity"`
}

type Amount struct {
	Value float64 `json:"value"`
}

// Float returns the amount, treating a missing object as zero.
func (a *Amount) Float() float64 {
	if a == nil {
		return 0
	}
	return a.Value
}

// Bills returns the bill list, or nil when any level of the payload is absent.
func (r BillsResponse) Bills() []Bill {
	if r.Data == nil || r.Data.BillingAccount == nil {
		return nil
	}
	return r.Data.BillingAccount.Bills
}
