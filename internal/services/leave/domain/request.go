package domain

import "time"

// Status is the lifecycle state of a leave request.
type Status string

const (
	StatusApproved Status = "APPROVED"
	// StatusPending and StatusRejected are reserved; the apply flow never
	// produces them.
	StatusPending  Status = "PENDING"
	StatusRejected Status = "REJECTED"
)

// Request is an immutable record of days taken against a category.
type Request struct {
	ID         int64
	EmployeeID string
	Category   Category
	Days       float64
	StartDate  time.Time
	Reason     string
	Status     Status
	CreatedAt  time.Time
}

// Interval returns the dates the request occupies.
func (r Request) Interval() Interval {
	return RequestInterval(r.StartDate, r.Days)
}

// AdjustmentKind labels a manual balance adjustment.
type AdjustmentKind string

const AdjustmentCredit AdjustmentKind = "CREDIT"

// DefaultCreditNote is used when a credit carries no note.
const DefaultCreditNote = "manual credit"

// Adjustment describes a manual credit. It is returned to the caller and
// never stored.
type Adjustment struct {
	EmployeeID string
	Category   Category
	Days       float64
	Note       string
	Kind       AdjustmentKind
}
