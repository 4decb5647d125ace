package domain

import "strings"

// Default allocations for a balance created on first access.
const (
	DefaultCasual    = 10.0
	DefaultPrivilege = 15.0
	DefaultMedical   = 90.0
	DefaultOther     = 0.0
)

// Allocation is one value per category, used to seed or overwrite a balance.
type Allocation struct {
	Casual    float64
	Privilege float64
	Medical   float64
	Other     float64
}

// DefaultAllocation returns the allocation applied to new balances.
func DefaultAllocation() Allocation {
	return Allocation{
		Casual:    DefaultCasual,
		Privilege: DefaultPrivilege,
		Medical:   DefaultMedical,
		Other:     DefaultOther,
	}
}

// Balance is the remaining allotted days per category for one employee.
// Non-negativity is not enforced.
type Balance struct {
	EmployeeID string
	Casual     float64
	Privilege  float64
	Medical    float64
	Other      float64
}

// NewBalance builds a balance for employeeID from an allocation.
func NewBalance(employeeID string, alloc Allocation) Balance {
	return Balance{
		EmployeeID: strings.TrimSpace(employeeID),
		Casual:     alloc.Casual,
		Privilege:  alloc.Privilege,
		Medical:    alloc.Medical,
		Other:      alloc.Other,
	}
}

// Overwrite replaces all four categories with alloc.
func (b *Balance) Overwrite(alloc Allocation) {
	b.Casual = alloc.Casual
	b.Privilege = alloc.Privilege
	b.Medical = alloc.Medical
	b.Other = alloc.Other
}

// Available returns the remaining days for c.
func (b Balance) Available(c Category) (float64, error) {
	field, err := b.field(c)
	if err != nil {
		return 0, err
	}
	return *field, nil
}

// Credit adds days to c. No upper bound applies.
func (b *Balance) Credit(c Category, days float64) error {
	field, err := b.field(c)
	if err != nil {
		return err
	}
	*field += days
	return nil
}

// Debit subtracts days from c. Sufficiency is the caller's concern.
func (b *Balance) Debit(c Category, days float64) error {
	field, err := b.field(c)
	if err != nil {
		return err
	}
	*field -= days
	return nil
}

// ByCode returns the balance keyed by category wire code.
func (b Balance) ByCode() map[string]float64 {
	return map[string]float64{
		CategoryCasual.Code():    b.Casual,
		CategoryPrivilege.Code(): b.Privilege,
		CategoryMedical.Code():   b.Medical,
		CategoryOther.Code():     b.Other,
	}
}

func (b *Balance) field(c Category) (*float64, error) {
	switch c {
	case CategoryCasual:
		return &b.Casual, nil
	case CategoryPrivilege:
		return &b.Privilege, nil
	case CategoryMedical:
		return &b.Medical, nil
	case CategoryOther:
		return &b.Other, nil
	default:
		return nil, unsupportedCategory(c)
	}
}
