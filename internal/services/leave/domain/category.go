package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/leaveledger/internal/platform/errors"
)

// Category identifies one leave balance bucket.
type Category uint8

const (
	CategoryUnspecified Category = iota
	CategoryCasual
	CategoryPrivilege
	CategoryMedical
	CategoryOther
)

// Categories lists every supported category in serialization order.
var Categories = []Category{CategoryCasual, CategoryPrivilege, CategoryMedical, CategoryOther}

// ParseCategory resolves a wire code (CL, PL, ML, OTHER) to a category.
func ParseCategory(code string) (Category, error) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "CL":
		return CategoryCasual, nil
	case "PL":
		return CategoryPrivilege, nil
	case "ML":
		return CategoryMedical, nil
	case "OTHER":
		return CategoryOther, nil
	default:
		return CategoryUnspecified, apperrors.WithMetadata(
			apperrors.CodeValidation,
			fmt.Sprintf("Unsupported leave type: %q", code),
			map[string]string{"leave_type": code},
		)
	}
}

// Valid reports whether c is one of the four supported categories.
func (c Category) Valid() bool {
	return c >= CategoryCasual && c <= CategoryOther
}

// Validate returns a validation error for unsupported categories.
func (c Category) Validate() error {
	if c.Valid() {
		return nil
	}
	return unsupportedCategory(c)
}

// Code returns the wire code of the category.
func (c Category) Code() string {
	switch c {
	case CategoryCasual:
		return "CL"
	case CategoryPrivilege:
		return "PL"
	case CategoryMedical:
		return "ML"
	case CategoryOther:
		return "OTHER"
	default:
		return ""
	}
}

// String returns the long category name.
func (c Category) String() string {
	switch c {
	case CategoryCasual:
		return "CASUAL"
	case CategoryPrivilege:
		return "PRIVILEGE"
	case CategoryMedical:
		return "MEDICAL"
	case CategoryOther:
		return "OTHER"
	default:
		return "UNSPECIFIED"
	}
}

func unsupportedCategory(c Category) error {
	return apperrors.WithMetadata(
		apperrors.CodeValidation,
		fmt.Sprintf("Unsupported leave type: %s", c),
		map[string]string{"leave_type": c.String()},
	)
}
