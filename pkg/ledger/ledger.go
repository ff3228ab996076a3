// pkg/ledger/ledger.go
package ledger

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/aiprojects789/drmbackend/pkg/config"
	"github.com/aiprojects789/drmbackend/pkg/events"
	"github.com/aiprojects789/drmbackend/pkg/models"
)

// Ledger is the single entry point for the application layer. It composes the
// registry, licensing and settlement engines over one Store and guarantees
// that every operation executes as one indivisible unit: a ledger-wide mutex
// serializes callers, and a funds backend that calls back into the ledger
// mid-transfer is rejected instead of deadlocking on its own lock.
//
// Time is always supplied by the caller; given the same (state, now, inputs)
// the ledger behaves identically.
type Ledger struct {
	mu     sync.Mutex
	holder atomic.Uint64

	store      *Store
	registry   *ArtworkRegistry
	licensing  *LicensingEngine
	settlement *SettlementEngine

	sink events.Sink
	log  *logrus.Logger
}

// New wires a ledger from its parts. A nil bank gets an empty MemoryBank, a
// nil sink discards events, and a nil logger falls back to the standard one.
func New(cfg config.LedgerConfig, bank FundsBackend, sink events.Sink, log *logrus.Logger) *Ledger {
	if bank == nil {
		bank = NewMemoryBank()
	}
	if sink == nil {
		sink = events.NopSink{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	store := NewStore()
	registry := NewArtworkRegistry(store)
	settlement := NewSettlementEngine(store, registry, bank, models.Identity(cfg.Treasury), cfg.PlatformFeeBps)
	licensing := NewLicensingEngine(store, registry, settlement, cfg.MinLicenseFee)

	return &Ledger{
		store:      store,
		registry:   registry,
		licensing:  licensing,
		settlement: settlement,
		sink:       sink,
		log:        log,
	}
}

// goroutineID parses the numeric id out of the runtime stack header. Goroutine
// ids start at 1, so 0 safely means "no holder".
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// "goroutine 123 [running]: ..."
	fields := bytes.Fields(buf[:n])
	id, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// enter is the non-reentrant lock every public operation holds for its whole
// duration. Only a nested call from the goroutine already holding the lock
// (the transfer-recipient callback case) is rejected; it would otherwise
// deadlock on the mutex. Calls from other goroutines queue normally.
func (l *Ledger) enter() error {
	gid := goroutineID()
	if l.holder.Load() == gid {
		return models.ErrReentrantCall
	}
	l.mu.Lock()
	l.holder.Store(gid)
	return nil
}

func (l *Ledger) exit() {
	l.holder.Store(0)
	l.mu.Unlock()
}

// Register records a new artwork and returns its id.
func (l *Ledger) Register(req RegisterRequest) (uint64, error) {
	if err := validateRequest(&req); err != nil {
		return 0, err
	}
	if err := l.enter(); err != nil {
		return 0, err
	}
	defer l.exit()

	id, err := l.registry.Register(req.Creator, req.MetadataRef, req.RoyaltyBps)
	if err != nil {
		return 0, err
	}

	l.log.WithFields(logrus.Fields{
		"artwork_id":  id,
		"creator":     req.Creator,
		"royalty_bps": req.RoyaltyBps,
	}).Info("Artwork registered")

	l.emit(events.ArtworkRegistered, id, events.Payload{
		"artwork_id":   id,
		"creator":      req.Creator,
		"metadata_ref": req.MetadataRef,
		"royalty_bps":  req.RoyaltyBps,
	})
	return id, nil
}

// Grant issues a license at now and returns the new license's id.
func (l *Ledger) Grant(req GrantRequest, now int64) (int, error) {
	if err := validateRequest(&req); err != nil {
		return 0, err
	}
	if err := l.enter(); err != nil {
		return 0, err
	}
	defer l.exit()

	license, err := l.licensing.Grant(req.ArtworkID, req.Licensee, req.DurationDays,
		req.TermsRef, req.LicenseType, req.FeePaid, req.Caller, now)
	if err != nil {
		return 0, err
	}

	l.log.WithFields(logrus.Fields{
		"artwork_id": req.ArtworkID,
		"license_id": license.ID,
		"licensee":   req.Licensee,
		"type":       license.Type,
		"fee_paid":   license.FeePaid,
	}).Info("License granted")

	l.emit(events.LicenseGranted, req.ArtworkID, events.Payload{
		"artwork_id":   req.ArtworkID,
		"license_id":   license.ID,
		"licensee":     license.Licensee,
		"license_type": license.Type,
		"start_time":   license.StartTime,
		"end_time":     license.EndTime,
		"fee_paid":     license.FeePaid,
	})
	return license.ID, nil
}

// Revoke deactivates the licensee's most recently granted active license.
func (l *Ledger) Revoke(req RevokeRequest, now int64) error {
	if err := validateRequest(&req); err != nil {
		return err
	}
	if err := l.enter(); err != nil {
		return err
	}
	defer l.exit()

	license, err := l.licensing.Revoke(req.ArtworkID, req.Licensee, req.Caller, now)
	if err != nil {
		return err
	}

	l.log.WithFields(logrus.Fields{
		"artwork_id": req.ArtworkID,
		"license_id": license.ID,
		"licensee":   req.Licensee,
	}).Info("License revoked")

	l.emit(events.LicenseRevoked, req.ArtworkID, events.Payload{
		"artwork_id": req.ArtworkID,
		"license_id": license.ID,
		"licensee":   license.Licensee,
	})
	return nil
}

// SettleSale executes the fund split for a sale and returns the sale record.
func (l *Ledger) SettleSale(req SettleSaleRequest) (models.SaleEvent, error) {
	if err := validateRequest(&req); err != nil {
		return models.SaleEvent{}, err
	}
	if err := l.enter(); err != nil {
		return models.SaleEvent{}, err
	}
	defer l.exit()

	sale, err := l.settlement.SettleSale(req.ArtworkID, req.Payer, req.AmountPaid,
		req.SalePrice, req.Caller, req.OwnershipTransfer)
	if err != nil {
		return models.SaleEvent{}, err
	}

	l.log.WithFields(logrus.Fields{
		"artwork_id":     sale.ArtworkID,
		"kind":           sale.Kind,
		"sale_price":     sale.SalePrice,
		"platform_fee":   sale.PlatformFee,
		"royalty_amount": sale.RoyaltyAmount,
	}).Info("Sale settled")

	l.emit(events.SaleSettled, sale.ArtworkID, events.Payload{
		"artwork_id":         sale.ArtworkID,
		"kind":               sale.Kind,
		"payer":              sale.Payer,
		"sale_price":         sale.SalePrice,
		"amount_paid":        sale.AmountPaid,
		"platform_fee":       sale.PlatformFee,
		"royalty_amount":     sale.RoyaltyAmount,
		"ownership_transfer": sale.OwnershipTransfer,
	})

	if sale.Kind == models.SaleKindSecondary {
		creator, _, _ := l.registry.RoyaltyOf(sale.ArtworkID, sale.SalePrice)
		l.emit(events.RoyaltyPaid, sale.ArtworkID, events.Payload{
			"artwork_id": sale.ArtworkID,
			"receiver":   creator,
			"amount":     sale.RoyaltyAmount,
			"sale_price": sale.SalePrice,
		})
	}
	return sale, nil
}

// TransferOwnership records an externally-driven ownership change the ledger
// observes. It moves no funds; settlement handles those separately.
func (l *Ledger) TransferOwnership(req TransferOwnershipRequest) error {
	if err := validateRequest(&req); err != nil {
		return err
	}
	if err := l.enter(); err != nil {
		return err
	}
	defer l.exit()

	artwork, err := l.store.artwork(req.ArtworkID)
	if err != nil {
		return err
	}
	if req.Caller != artwork.Owner {
		return models.ErrNotOwner
	}

	previous := artwork.Owner
	if err := l.registry.setOwner(req.ArtworkID, req.NewOwner); err != nil {
		return err
	}

	l.log.WithFields(logrus.Fields{
		"artwork_id": req.ArtworkID,
		"from":       previous,
		"to":         req.NewOwner,
	}).Info("Ownership transferred")

	l.emit(events.OwnershipTransferred, req.ArtworkID, events.Payload{
		"artwork_id": req.ArtworkID,
		"from":       previous,
		"to":         req.NewOwner,
	})
	return nil
}

// SetPlatformFee updates the primary-sale platform cut. Only the treasury
// identity may call it.
func (l *Ledger) SetPlatformFee(caller models.Identity, feeBps int64) error {
	if err := l.enter(); err != nil {
		return err
	}
	defer l.exit()

	if caller != l.settlement.treasury {
		return models.ErrNotOwner
	}
	if feeBps < 0 || feeBps >= models.BpsDenominator {
		return models.ErrInvalidFee
	}

	previous := l.settlement.PlatformFeeBps()
	l.settlement.setPlatformFeeBps(feeBps)

	l.log.WithFields(logrus.Fields{
		"old_bps": previous,
		"new_bps": feeBps,
	}).Info("Platform fee updated")

	l.emit(events.PlatformFeeUpdated, 0, events.Payload{
		"old_bps": previous,
		"new_bps": feeBps,
	})
	return nil
}

// Get returns a copy of the artwork and its full license audit list.
func (l *Ledger) Get(artworkID uint64) (models.Artwork, error) {
	if err := l.enter(); err != nil {
		return models.Artwork{}, err
	}
	defer l.exit()
	return l.registry.Get(artworkID)
}

// RoyaltyInfo is the externally-queryable royalty-standard view.
func (l *Ledger) RoyaltyInfo(artworkID uint64, salePrice int64) (models.Identity, int64, error) {
	if err := l.enter(); err != nil {
		return "", 0, err
	}
	defer l.exit()
	return l.settlement.RoyaltyInfo(artworkID, salePrice)
}

// IsValid reports whether licensee holds a usable license on the artwork.
func (l *Ledger) IsValid(artworkID uint64, licensee models.Identity, now int64) (bool, error) {
	if err := l.enter(); err != nil {
		return false, err
	}
	defer l.exit()
	return l.licensing.IsValid(artworkID, licensee, now)
}

// ActiveLicenses snapshots the usable licenses in grant order.
func (l *Ledger) ActiveLicenses(artworkID uint64, now int64) ([]models.License, error) {
	if err := l.enter(); err != nil {
		return nil, err
	}
	defer l.exit()
	return l.licensing.ActiveLicenses(artworkID, now)
}

// ArtworksByCreator lists every artwork the creator registered.
func (l *Ledger) ArtworksByCreator(creator models.Identity) ([]models.Artwork, error) {
	if err := l.enter(); err != nil {
		return nil, err
	}
	defer l.exit()
	return l.registry.ArtworksByCreator(creator), nil
}

// Count returns the number of registrations, which is also the next id.
func (l *Ledger) Count() (uint64, error) {
	if err := l.enter(); err != nil {
		return 0, err
	}
	defer l.exit()
	return l.registry.Count(), nil
}

// emit hands the event to the sink. Sink failures are logged, never
// propagated: the mutation has already committed.
func (l *Ledger) emit(eventType events.EventType, artworkID uint64, payload events.Payload) {
	if err := l.sink.Emit(events.New(eventType, artworkID, payload)); err != nil {
		l.log.WithError(err).WithField("event", eventType).Error("Failed to emit ledger event")
	}
}
