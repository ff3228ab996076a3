// pkg/models/common.go
package models

// Basis-point math and ledger-wide limits
const (
	BpsDenominator        int64 = 10000
	MaxRoyaltyBps         int64 = 2000
	DefaultPlatformFeeBps int64 = 500
	SecondsPerDay         int64 = 86400
)

// Identity is an external account reference (public key or address).
// The ledger never interprets it; it only compares for equality.
type Identity string

func (i Identity) IsZero() bool {
	return i == ""
}

func (i Identity) String() string {
	return string(i)
}

// Enums
type LicenseType string

const (
	LicenseTypePersonal   LicenseType = "PERSONAL"
	LicenseTypeCommercial LicenseType = "COMMERCIAL"
	LicenseTypeExclusive  LicenseType = "EXCLUSIVE"
	LicenseTypeUnlimited  LicenseType = "UNLIMITED"
)

// IsKnown reports whether t is one of the defined license types.
func (t LicenseType) IsKnown() bool {
	switch t {
	case LicenseTypePersonal, LicenseTypeCommercial, LicenseTypeExclusive, LicenseTypeUnlimited:
		return true
	}
	return false
}

type SaleKind string

const (
	SaleKindPrimary   SaleKind = "primary"
	SaleKindSecondary SaleKind = "secondary"
)

type LicenseState string

const (
	LicenseStateActive  LicenseState = "active"
	LicenseStateRevoked LicenseState = "revoked"
	LicenseStateExpired LicenseState = "expired"
)
