// pkg/models/errors.go
package models

import "errors"

// Ledger error kinds. Every operation either fully succeeds or fails with one
// of these; callers discriminate with errors.Is. All validation happens before
// any mutation, so a returned error means zero observable effect on state.
var (
	ErrNotFound            = errors.New("artwork not found")
	ErrNotOwner            = errors.New("caller is not the artwork owner")
	ErrInvalidRoyalty      = errors.New("royalty exceeds maximum basis points")
	ErrInvalidDuration     = errors.New("license duration must be positive")
	ErrInvalidLicensee     = errors.New("licensee is invalid")
	ErrInvalidLicenseType  = errors.New("unknown license type")
	ErrInvalidIdentity     = errors.New("identity is invalid")
	ErrEmptyMetadata       = errors.New("metadata reference is empty")
	ErrInsufficientFee     = errors.New("license fee below minimum")
	ErrInsufficientPayment = errors.New("payment below sale price")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidAmount       = errors.New("amount is invalid")
	ErrInvalidFee          = errors.New("platform fee out of range")
	ErrNoActiveLicense     = errors.New("no active license for licensee")
	ErrTransferFailed      = errors.New("value transfer failed")
	ErrReentrantCall       = errors.New("reentrant ledger call rejected")
)
