// pkg/ledger/licensing.go
package ledger

import (
	"github.com/samber/lo"

	"github.com/aiprojects789/drmbackend/pkg/models"
)

// LicensingEngine issues and revokes usage licenses and keeps the artwork's
// derived licensed flag in step with the license list.
type LicensingEngine struct {
	store      *Store
	registry   *ArtworkRegistry
	settlement *SettlementEngine
	minFee     int64
}

func NewLicensingEngine(store *Store, registry *ArtworkRegistry, settlement *SettlementEngine, minFee int64) *LicensingEngine {
	return &LicensingEngine{
		store:      store,
		registry:   registry,
		settlement: settlement,
		minFee:     minFee,
	}
}

// Grant appends a new active license and routes the fee, in full, to the
// artwork's current owner. The fee moves only after every precondition has
// passed, and the license is recorded only after the fee has moved, so a
// failed transfer leaves the ledger untouched.
//
// Exclusivity is not enforced: any number of concurrently active licenses may
// exist per artwork, EXCLUSIVE type included. Callers must not assume an
// EXCLUSIVE grant shuts out others.
func (e *LicensingEngine) Grant(artworkID uint64, licensee models.Identity, durationDays int64,
	termsRef string, licenseType models.LicenseType, feePaid int64, caller models.Identity, now int64) (models.License, error) {

	artwork, err := e.store.artwork(artworkID)
	if err != nil {
		return models.License{}, err
	}
	if caller != artwork.Owner {
		return models.License{}, models.ErrNotOwner
	}
	if licensee.IsZero() || licensee == caller {
		return models.License{}, models.ErrInvalidLicensee
	}
	if !licenseType.IsKnown() {
		return models.License{}, models.ErrInvalidLicenseType
	}
	if feePaid < e.minFee {
		return models.License{}, models.ErrInsufficientFee
	}
	if durationDays <= 0 {
		return models.License{}, models.ErrInvalidDuration
	}

	// License fees carry no platform cut; the owner receives the full amount.
	if err := e.settlement.RouteLicenseFee(licensee, artwork.Owner, feePaid); err != nil {
		return models.License{}, err
	}

	license := models.License{
		ID:        len(artwork.Licenses),
		ArtworkID: artworkID,
		Licensee:  licensee,
		Type:      licenseType,
		StartTime: now,
		EndTime:   now + durationDays*models.SecondsPerDay,
		TermsRef:  termsRef,
		FeePaid:   feePaid,
		Active:    true,
	}
	artwork.Licenses = append(artwork.Licenses, license)
	artwork.Licensed = true

	return license, nil
}

// Revoke deactivates one license for the (artwork, licensee) pair. When the
// licensee holds several active records, the most recently granted one is
// revoked: the scan takes the highest-index record with Active still set.
func (e *LicensingEngine) Revoke(artworkID uint64, licensee models.Identity, caller models.Identity, now int64) (models.License, error) {
	artwork, err := e.store.artwork(artworkID)
	if err != nil {
		return models.License{}, err
	}
	if caller != artwork.Owner {
		return models.License{}, models.ErrNotOwner
	}

	target := -1
	for i := len(artwork.Licenses) - 1; i >= 0; i-- {
		if artwork.Licenses[i].Licensee == licensee && artwork.Licenses[i].Active {
			target = i
			break
		}
	}
	if target < 0 {
		return models.License{}, models.ErrNoActiveLicense
	}

	artwork.Licenses[target].Active = false

	licensed := lo.SomeBy(artwork.Licenses, func(l models.License) bool {
		return l.ValidAt(now)
	})
	if err := e.registry.setLicensed(artworkID, licensed); err != nil {
		return models.License{}, err
	}

	return artwork.Licenses[target], nil
}

// IsValid reports whether the pair holds a usable license at now.
func (e *LicensingEngine) IsValid(artworkID uint64, licensee models.Identity, now int64) (bool, error) {
	artwork, err := e.store.artwork(artworkID)
	if err != nil {
		return false, err
	}

	for i := range artwork.Licenses {
		if artwork.Licenses[i].Licensee == licensee && artwork.Licenses[i].ValidAt(now) {
			return true, nil
		}
	}
	return false, nil
}

// ActiveLicenses snapshots the usable licenses in original grant order. Each
// call re-scans current state.
func (e *LicensingEngine) ActiveLicenses(artworkID uint64, now int64) ([]models.License, error) {
	artwork, err := e.store.artwork(artworkID)
	if err != nil {
		return nil, err
	}

	return lo.Filter(artwork.Licenses, func(l models.License, _ int) bool {
		return l.ValidAt(now)
	}), nil
}
