package model

// Revenue is a precomputed monthly revenue snapshot from the `revenue`
// table. The rows are maintained externally and never mutated here.
type Revenue struct {
	Month   string  `json:"month"`   // revenue.month
	Revenue float64 `json:"revenue"` // revenue.revenue
}
