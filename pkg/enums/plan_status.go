package enums

// PlanStatus marks whether a billing plan can still be assigned.
type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"
	PlanStatusArchived PlanStatus = "archived"
)
