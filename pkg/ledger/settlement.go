// pkg/ledger/settlement.go
package ledger

import (
	"fmt"

	"github.com/aiprojects789/drmbackend/pkg/models"
)

// SettlementEngine computes and executes fund splits. It is the only
// component that moves value.
type SettlementEngine struct {
	store          *Store
	registry       *ArtworkRegistry
	bank           FundsBackend
	treasury       models.Identity
	platformFeeBps int64
}

func NewSettlementEngine(store *Store, registry *ArtworkRegistry, bank FundsBackend,
	treasury models.Identity, platformFeeBps int64) *SettlementEngine {
	return &SettlementEngine{
		store:          store,
		registry:       registry,
		bank:           bank,
		treasury:       treasury,
		platformFeeBps: platformFeeBps,
	}
}

// saleSplit is the tagged result of classifying a sale. A single executor
// applies it, so primary and secondary paths cannot drift numerically.
type saleSplit struct {
	kind          models.SaleKind
	platformFee   int64
	royaltyAmount int64
	transfers     []models.Transfer
}

// classifySale is pure: it inspects owner vs creator and produces the split.
// All divisions floor; the payer keeps any rounding remainder because only
// the computed parts ever leave the payer's balance.
func classifySale(artwork *models.Artwork, payer models.Identity, salePrice int64,
	platformFeeBps int64, treasury models.Identity) saleSplit {

	if artwork.Owner == artwork.Creator {
		platformFee := salePrice * platformFeeBps / models.BpsDenominator
		creatorAmount := salePrice - platformFee

		split := saleSplit{kind: models.SaleKindPrimary, platformFee: platformFee}
		split.transfers = appendTransfer(split.transfers, payer, artwork.Creator, creatorAmount, "primary sale proceeds")
		split.transfers = appendTransfer(split.transfers, payer, treasury, platformFee, "platform fee")
		return split
	}

	royaltyAmount := artwork.RoyaltyAmount(salePrice)
	sellerAmount := salePrice - royaltyAmount

	split := saleSplit{kind: models.SaleKindSecondary, royaltyAmount: royaltyAmount}
	split.transfers = appendTransfer(split.transfers, payer, artwork.Creator, royaltyAmount, "creator royalty")
	split.transfers = appendTransfer(split.transfers, payer, artwork.Owner, sellerAmount, "secondary sale proceeds")
	return split
}

// appendTransfer drops zero-amount legs so the backend never sees them.
func appendTransfer(transfers []models.Transfer, from, to models.Identity, amount int64, memo string) []models.Transfer {
	if amount == 0 {
		return transfers
	}
	return append(transfers, models.Transfer{From: from, To: to, Amount: amount, Memo: memo})
}

// SettleSale validates, classifies and executes the fund split for a sale.
// It never moves ownership records; isTransferOfOwnership only annotates the
// resulting SaleEvent for the external transaction log. Any excess of
// amountPaid over salePrice stays with the payer.
func (e *SettlementEngine) SettleSale(artworkID uint64, payer models.Identity, amountPaid, salePrice int64,
	caller models.Identity, isTransferOfOwnership bool) (models.SaleEvent, error) {

	artwork, err := e.store.artwork(artworkID)
	if err != nil {
		return models.SaleEvent{}, err
	}
	if payer.IsZero() {
		return models.SaleEvent{}, models.ErrInvalidIdentity
	}
	if salePrice <= 0 || amountPaid < 0 {
		return models.SaleEvent{}, models.ErrInvalidAmount
	}
	if amountPaid < salePrice {
		return models.SaleEvent{}, models.ErrInsufficientPayment
	}

	split := classifySale(artwork, payer, salePrice, e.platformFeeBps, e.treasury)

	if err := e.bank.Transfer(split.transfers); err != nil {
		return models.SaleEvent{}, fmt.Errorf("%w: %v", models.ErrTransferFailed, err)
	}

	return models.SaleEvent{
		ArtworkID:         artworkID,
		Payer:             payer,
		SalePrice:         salePrice,
		AmountPaid:        amountPaid,
		Kind:              split.kind,
		OwnershipTransfer: isTransferOfOwnership,
		PlatformFee:       split.platformFee,
		RoyaltyAmount:     split.royaltyAmount,
		Transfers:         split.transfers,
	}, nil
}

// RouteLicenseFee moves a license fee from licensee to owner in full.
func (e *SettlementEngine) RouteLicenseFee(from, to models.Identity, amount int64) error {
	if amount == 0 {
		return nil
	}
	transfers := []models.Transfer{{From: from, To: to, Amount: amount, Memo: "license fee"}}
	if err := e.bank.Transfer(transfers); err != nil {
		return fmt.Errorf("%w: %v", models.ErrTransferFailed, err)
	}
	return nil
}

// RoyaltyInfo delegates to the registry's royalty-standard view.
func (e *SettlementEngine) RoyaltyInfo(artworkID uint64, salePrice int64) (models.Identity, int64, error) {
	return e.registry.RoyaltyOf(artworkID, salePrice)
}

// PlatformFeeBps returns the current primary-sale platform cut.
func (e *SettlementEngine) PlatformFeeBps() int64 {
	return e.platformFeeBps
}

func (e *SettlementEngine) setPlatformFeeBps(feeBps int64) {
	e.platformFeeBps = feeBps
}
