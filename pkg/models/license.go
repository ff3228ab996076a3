// pkg/models/license.go
package models

// License is one entry in an artwork's append-only license list. ID is the
// record's index within that list. Records are never deleted; revocation flips
// Active to false and expiry is computed at read time from EndTime.
type License struct {
	ID        int         `json:"id"`
	ArtworkID uint64      `json:"artwork_id"`
	Licensee  Identity    `json:"licensee"`
	Type      LicenseType `json:"license_type"`
	StartTime int64       `json:"start_time"`
	EndTime   int64       `json:"end_time"`
	TermsRef  string      `json:"terms_ref"`
	FeePaid   int64       `json:"fee_paid"`
	Active    bool        `json:"active"`
}

// ValidAt is the single usability predicate: a license is usable iff it has
// not been revoked and now is at or before EndTime (inclusive). Every query
// and every revoke-time rescan goes through this to keep the two in sync.
func (l *License) ValidAt(now int64) bool {
	return l.Active && now <= l.EndTime
}

// StateAt derives the audit state. Revocation is a recorded transition;
// expiry is not, so a revoked license stays revoked even past EndTime.
func (l *License) StateAt(now int64) LicenseState {
	if !l.Active {
		return LicenseStateRevoked
	}
	if now > l.EndTime {
		return LicenseStateExpired
	}
	return LicenseStateActive
}
