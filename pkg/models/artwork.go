// pkg/models/artwork.go
package models

// Artwork is one registered creative work. Creator and RoyaltyBps are fixed at
// registration; Owner starts equal to Creator and only changes when the ledger
// observes an external ownership transfer. Licensed is derived from the
// license list and stored so it can be read without a scan.
type Artwork struct {
	ID          uint64    `json:"id"`
	Creator     Identity  `json:"creator"`
	Owner       Identity  `json:"owner"`
	MetadataRef string    `json:"metadata_ref"`
	RoyaltyBps  int64     `json:"royalty_bps"`
	Licensed    bool      `json:"licensed"`
	Licenses    []License `json:"licenses,omitempty"`
}

// RoyaltyAmount returns the creator royalty owed on salePrice, floored.
func (a *Artwork) RoyaltyAmount(salePrice int64) int64 {
	return salePrice * a.RoyaltyBps / BpsDenominator
}

// Clone returns a deep copy safe to hand to callers.
func (a *Artwork) Clone() Artwork {
	out := *a
	out.Licenses = make([]License, len(a.Licenses))
	copy(out.Licenses, a.Licenses)
	return out
}
