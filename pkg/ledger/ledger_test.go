// pkg/ledger/ledger_test.go
package ledger

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/aiprojects789/drmbackend/pkg/config"
	"github.com/aiprojects789/drmbackend/pkg/events"
	"github.com/aiprojects789/drmbackend/pkg/models"
)

type LedgerTestSuite struct {
	suite.Suite
	ledger *Ledger
	bank   *MemoryBank
	sink   *events.MemorySink
}

func (s *LedgerTestSuite) SetupTest() {
	log := logrus.New()
	log.SetOutput(io.Discard)

	s.bank = NewMemoryBank()
	s.sink = events.NewMemorySink()
	s.ledger = New(config.LedgerConfig{
		PlatformFeeBps: 500,
		MinLicenseFee:  100,
		Treasury:       "treasury",
	}, s.bank, s.sink, log)

	s.Require().NoError(s.bank.Deposit("bob", 1_000_000))
	s.Require().NoError(s.bank.Deposit("buyer", 1_000_000))
}

func (s *LedgerTestSuite) register(creator models.Identity, royaltyBps int64) uint64 {
	id, err := s.ledger.Register(RegisterRequest{
		Creator:     creator,
		MetadataRef: "ipfs://meta",
		RoyaltyBps:  royaltyBps,
	})
	s.Require().NoError(err)
	return id
}

func (s *LedgerTestSuite) TestRegisterEmitsEvent() {
	id := s.register("alice", 1000)

	emitted := s.sink.ByType(events.ArtworkRegistered)
	s.Require().Len(emitted, 1)
	s.Equal(id, emitted[0].ArtworkID)
	s.Equal(models.Identity("alice"), emitted[0].Payload["creator"])
	s.Equal(int64(1000), emitted[0].Payload["royalty_bps"])
}

func (s *LedgerTestSuite) TestRegisterValidationMapsToKinds() {
	_, err := s.ledger.Register(RegisterRequest{Creator: "", MetadataRef: "m", RoyaltyBps: 100})
	s.ErrorIs(err, models.ErrInvalidIdentity)

	_, err = s.ledger.Register(RegisterRequest{Creator: "alice", MetadataRef: "", RoyaltyBps: 100})
	s.ErrorIs(err, models.ErrEmptyMetadata)

	_, err = s.ledger.Register(RegisterRequest{Creator: "alice", MetadataRef: "m", RoyaltyBps: 2001})
	s.ErrorIs(err, models.ErrInvalidRoyalty)

	s.Empty(s.sink.Events(), "failed operations emit nothing")
}

func (s *LedgerTestSuite) TestMonotonicIDs() {
	first := s.register("alice", 0)
	second := s.register("bob", 0)
	third := s.register("alice", 0)

	s.Less(first, second)
	s.Less(second, third)

	count, err := s.ledger.Count()
	s.Require().NoError(err)
	s.Equal(uint64(3), count)
}

func (s *LedgerTestSuite) TestGrantRevokeFlow() {
	id := s.register("alice", 1000)

	licenseID, err := s.ledger.Grant(GrantRequest{
		ArtworkID:    id,
		Licensee:     "bob",
		DurationDays: 30,
		TermsRef:     "ipfs://terms",
		LicenseType:  models.LicenseTypeCommercial,
		FeePaid:      100,
		Caller:       "alice",
	}, baseTime)
	s.Require().NoError(err)
	s.Equal(0, licenseID)

	valid, err := s.ledger.IsValid(id, "bob", baseTime+1)
	s.Require().NoError(err)
	s.True(valid)

	err = s.ledger.Revoke(RevokeRequest{ArtworkID: id, Licensee: "bob", Caller: "alice"}, baseTime+2)
	s.Require().NoError(err)

	valid, err = s.ledger.IsValid(id, "bob", baseTime+3)
	s.Require().NoError(err)
	s.False(valid)

	s.Len(s.sink.ByType(events.LicenseGranted), 1)
	s.Len(s.sink.ByType(events.LicenseRevoked), 1)

	// The revoked record stays in the audit list.
	artwork, err := s.ledger.Get(id)
	s.Require().NoError(err)
	s.Require().Len(artwork.Licenses, 1)
	s.Equal(models.LicenseStateRevoked, artwork.Licenses[0].StateAt(baseTime+3))
}

func (s *LedgerTestSuite) TestGrantFeeFloorLeavesListUnchanged() {
	id := s.register("alice", 1000)

	_, err := s.ledger.Grant(GrantRequest{
		ArtworkID:    id,
		Licensee:     "bob",
		DurationDays: 30,
		LicenseType:  models.LicenseTypePersonal,
		FeePaid:      99,
		Caller:       "alice",
	}, baseTime)
	s.ErrorIs(err, models.ErrInsufficientFee)

	artwork, err := s.ledger.Get(id)
	s.Require().NoError(err)
	s.Empty(artwork.Licenses)
}

func (s *LedgerTestSuite) TestSettlePrimaryThenSecondary() {
	id := s.register("alice", 1000)

	sale, err := s.ledger.SettleSale(SettleSaleRequest{
		ArtworkID:  id,
		Payer:      "buyer",
		AmountPaid: 1000,
		SalePrice:  1000,
		Caller:     "buyer",
	})
	s.Require().NoError(err)
	s.Equal(models.SaleKindPrimary, sale.Kind)
	s.Equal(int64(50), sale.PlatformFee)
	s.Empty(s.sink.ByType(events.RoyaltyPaid), "no royalty event on primary sales")

	err = s.ledger.TransferOwnership(TransferOwnershipRequest{
		ArtworkID: id,
		NewOwner:  "bob",
		Caller:    "alice",
	})
	s.Require().NoError(err)

	sale, err = s.ledger.SettleSale(SettleSaleRequest{
		ArtworkID:         id,
		Payer:             "buyer",
		AmountPaid:        1000,
		SalePrice:         1000,
		Caller:            "buyer",
		OwnershipTransfer: true,
	})
	s.Require().NoError(err)
	s.Equal(models.SaleKindSecondary, sale.Kind)
	s.Equal(int64(100), sale.RoyaltyAmount)

	royaltyEvents := s.sink.ByType(events.RoyaltyPaid)
	s.Require().Len(royaltyEvents, 1)
	s.Equal(models.Identity("alice"), royaltyEvents[0].Payload["receiver"])
	s.Equal(int64(100), royaltyEvents[0].Payload["amount"])

	s.Len(s.sink.ByType(events.SaleSettled), 2)
}

func (s *LedgerTestSuite) TestTransferOwnershipAuthorization() {
	id := s.register("alice", 1000)

	err := s.ledger.TransferOwnership(TransferOwnershipRequest{
		ArtworkID: id,
		NewOwner:  "mallory",
		Caller:    "mallory",
	})
	s.ErrorIs(err, models.ErrNotOwner)

	artwork, _ := s.ledger.Get(id)
	s.Equal(models.Identity("alice"), artwork.Owner)
}

func (s *LedgerTestSuite) TestSetPlatformFee() {
	id := s.register("alice", 1000)

	s.ErrorIs(s.ledger.SetPlatformFee("mallory", 100), models.ErrNotOwner)
	s.ErrorIs(s.ledger.SetPlatformFee("treasury", 10000), models.ErrInvalidFee)
	s.ErrorIs(s.ledger.SetPlatformFee("treasury", -1), models.ErrInvalidFee)

	s.Require().NoError(s.ledger.SetPlatformFee("treasury", 1000))
	s.Len(s.sink.ByType(events.PlatformFeeUpdated), 1)

	sale, err := s.ledger.SettleSale(SettleSaleRequest{
		ArtworkID:  id,
		Payer:      "buyer",
		AmountPaid: 1000,
		SalePrice:  1000,
		Caller:     "buyer",
	})
	s.Require().NoError(err)
	s.Equal(int64(100), sale.PlatformFee)
}

func (s *LedgerTestSuite) TestIdempotentQueries() {
	id := s.register("alice", 1000)
	_, err := s.ledger.Grant(GrantRequest{
		ArtworkID:    id,
		Licensee:     "bob",
		DurationDays: 30,
		LicenseType:  models.LicenseTypePersonal,
		FeePaid:      100,
		Caller:       "alice",
	}, baseTime)
	s.Require().NoError(err)

	art1, err := s.ledger.Get(id)
	s.Require().NoError(err)
	art2, err := s.ledger.Get(id)
	s.Require().NoError(err)
	s.Equal(art1, art2)

	r1, a1, _ := s.ledger.RoyaltyInfo(id, 1234)
	r2, a2, _ := s.ledger.RoyaltyInfo(id, 1234)
	s.Equal(r1, r2)
	s.Equal(a1, a2)

	v1, _ := s.ledger.IsValid(id, "bob", baseTime+1)
	v2, _ := s.ledger.IsValid(id, "bob", baseTime+1)
	s.Equal(v1, v2)

	l1, _ := s.ledger.ActiveLicenses(id, baseTime+1)
	l2, _ := s.ledger.ActiveLicenses(id, baseTime+1)
	s.Equal(l1, l2)
}

func TestLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}

// reentrantBank re-enters the ledger from inside a transfer, the way a
// malicious recipient callback would.
type reentrantBank struct {
	ledger    *Ledger
	artworkID uint64
	innerErr  error
}

func (b *reentrantBank) Transfer(transfers []models.Transfer) error {
	_, b.innerErr = b.ledger.SettleSale(SettleSaleRequest{
		ArtworkID:  b.artworkID,
		Payer:      "buyer",
		AmountPaid: 1,
		SalePrice:  1,
		Caller:     "buyer",
	})
	return b.innerErr
}

func TestReentrantTransferRejected(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	bank := &reentrantBank{}
	led := New(config.LedgerConfig{
		PlatformFeeBps: 500,
		MinLicenseFee:  100,
		Treasury:       "treasury",
	}, bank, events.NewMemorySink(), log)
	bank.ledger = led

	id, err := led.Register(RegisterRequest{Creator: "alice", MetadataRef: "m", RoyaltyBps: 100})
	assert.NoError(t, err)
	bank.artworkID = id

	_, err = led.SettleSale(SettleSaleRequest{
		ArtworkID:  id,
		Payer:      "buyer",
		AmountPaid: 1000,
		SalePrice:  1000,
		Caller:     "buyer",
	})

	// The nested call is rejected, which fails the outer transfer too.
	assert.ErrorIs(t, bank.innerErr, models.ErrReentrantCall)
	assert.ErrorIs(t, err, models.ErrTransferFailed)
}

// blockingBank parks inside Transfer until released, holding the ledger lock
// so other goroutines pile up behind it.
type blockingBank struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingBank) Transfer([]models.Transfer) error {
	close(b.entered)
	<-b.release
	return nil
}

func TestConcurrentCallersQueueBehindTransfer(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	bank := &blockingBank{entered: make(chan struct{}), release: make(chan struct{})}
	led := New(config.LedgerConfig{
		PlatformFeeBps: 500,
		MinLicenseFee:  100,
		Treasury:       "treasury",
	}, bank, events.NewMemorySink(), log)

	id, err := led.Register(RegisterRequest{Creator: "alice", MetadataRef: "m", RoyaltyBps: 100})
	require.NoError(t, err)

	settleDone := make(chan error, 1)
	go func() {
		_, err := led.SettleSale(SettleSaleRequest{
			ArtworkID:  id,
			Payer:      "buyer",
			AmountPaid: 1000,
			SalePrice:  1000,
			Caller:     "buyer",
		})
		settleDone <- err
	}()

	// Query from another goroutine while the settlement holds the lock
	// mid-transfer. It must queue, not fail as a reentrant call.
	<-bank.entered
	getDone := make(chan error, 1)
	go func() {
		_, err := led.Get(id)
		getDone <- err
	}()

	select {
	case err := <-getDone:
		t.Fatalf("query returned while the lock was held: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(bank.release)
	require.NoError(t, <-settleDone)
	require.NoError(t, <-getDone)
}
