// pkg/ledger/requests.go
package ledger

import (
	"fmt"

	"github.com/aiprojects789/drmbackend/pkg/models"
	"github.com/aiprojects789/drmbackend/pkg/utils"
)

type RegisterRequest struct {
	Creator     models.Identity `json:"creator" validate:"required"`
	MetadataRef string          `json:"metadata_ref" validate:"required"`
	RoyaltyBps  int64           `json:"royalty_bps" validate:"gte=0,lte=2000"`
}

type GrantRequest struct {
	ArtworkID    uint64             `json:"artwork_id"`
	Licensee     models.Identity    `json:"licensee" validate:"required"`
	DurationDays int64              `json:"duration_days" validate:"gt=0"`
	TermsRef     string             `json:"terms_ref"`
	LicenseType  models.LicenseType `json:"license_type" validate:"required"`
	FeePaid      int64              `json:"fee_paid" validate:"gte=0"`
	Caller       models.Identity    `json:"caller" validate:"required"`
}

type RevokeRequest struct {
	ArtworkID uint64          `json:"artwork_id"`
	Licensee  models.Identity `json:"licensee" validate:"required"`
	Caller    models.Identity `json:"caller" validate:"required"`
}

type SettleSaleRequest struct {
	ArtworkID         uint64          `json:"artwork_id"`
	Payer             models.Identity `json:"payer" validate:"required"`
	AmountPaid        int64           `json:"amount_paid" validate:"gte=0"`
	SalePrice         int64           `json:"sale_price" validate:"gt=0"`
	Caller            models.Identity `json:"caller" validate:"required"`
	OwnershipTransfer bool            `json:"ownership_transfer"`
}

type TransferOwnershipRequest struct {
	ArtworkID uint64          `json:"artwork_id"`
	NewOwner  models.Identity `json:"new_owner" validate:"required"`
	Caller    models.Identity `json:"caller" validate:"required"`
}

// fieldKinds maps a failed request field to the ledger error kind the caller
// must see, so shape validation never hides the precondition that failed.
var fieldKinds = map[string]error{
	"creator":      models.ErrInvalidIdentity,
	"caller":       models.ErrInvalidIdentity,
	"newowner":     models.ErrInvalidIdentity,
	"payer":        models.ErrInvalidIdentity,
	"licensee":     models.ErrInvalidLicensee,
	"metadataref":  models.ErrEmptyMetadata,
	"royaltybps":   models.ErrInvalidRoyalty,
	"durationdays": models.ErrInvalidDuration,
	"licensetype":  models.ErrInvalidLicenseType,
	"feepaid":      models.ErrInsufficientFee,
	"amountpaid":   models.ErrInvalidAmount,
	"saleprice":    models.ErrInvalidAmount,
}

// validateRequest runs struct validation and converts the first failure into
// its ledger error kind, keeping the readable field message.
func validateRequest(req interface{}) error {
	err := utils.ValidateStruct(req)
	if err == nil {
		return nil
	}

	for _, ve := range utils.GetValidationErrors(err) {
		if kind, ok := fieldKinds[ve.Field]; ok {
			return fmt.Errorf("%w: %s", kind, ve.Message)
		}
	}
	return fmt.Errorf("invalid request: %w", err)
}
