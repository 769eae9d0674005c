package domain

import (
	"regexp"

	"github.com/google/uuid"

	dErrors "storefront/pkg/domain-errors"
)

// UserID identifies a storefront account. Typed so it cannot be swapped with
// other identifiers by accident.
type UserID uuid.UUID

// ProductID identifies a catalog product. Catalog ids are opaque strings
// (slugs or backend ids), not UUIDs.
type ProductID string

const maxProductIDLen = 64

var productIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-]*$`)

// NewUserID generates a fresh random user id.
func NewUserID() UserID {
	return UserID(uuid.New())
}

// ParseUserID validates s as a non-nil UUID.
func ParseUserID(s string) (UserID, error) {
	if s == "" {
		return UserID{}, dErrors.New(dErrors.CodeInvalidInput, "user id required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid user id")
	}
	if u == uuid.Nil {
		return UserID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid user id")
	}
	return UserID(u), nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// ParseProductID validates s as a catalog id.
func ParseProductID(s string) (ProductID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "product id required")
	}
	if len(s) > maxProductIDLen || !productIDPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid product id")
	}
	return ProductID(s), nil
}

func (id ProductID) String() string { return string(id) }
