package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, the local persistence layer
// and the REST client return these (optionally wrapped) so services can
// translate them into domain errors.
//
//   - ErrNotFound: record does not exist in the store
//   - ErrConflict: record already exists (duplicate wishlist entry, taken email)
//   - ErrExpired: token or session has expired
//   - ErrCorrupt: persisted bytes could not be decoded
//   - ErrInvalidState: entity in wrong state for the requested operation
//   - ErrUnavailable: backend temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrCorrupt      = errors.New("corrupt")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
