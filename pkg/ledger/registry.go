// pkg/ledger/registry.go
package ledger

import (
	"github.com/aiprojects789/drmbackend/pkg/models"
)

// ArtworkRegistry is the source of truth for artwork existence, ownership and
// royalty terms.
type ArtworkRegistry struct {
	store *Store
}

func NewArtworkRegistry(store *Store) *ArtworkRegistry {
	return &ArtworkRegistry{store: store}
}

// Register records a new artwork. The creator starts as owner, the royalty is
// fixed for the artwork's lifetime, and ids are never reused.
func (r *ArtworkRegistry) Register(creator models.Identity, metadataRef string, royaltyBps int64) (uint64, error) {
	if creator.IsZero() {
		return 0, models.ErrInvalidIdentity
	}
	if metadataRef == "" {
		return 0, models.ErrEmptyMetadata
	}
	if royaltyBps < 0 || royaltyBps > models.MaxRoyaltyBps {
		return 0, models.ErrInvalidRoyalty
	}

	id := r.store.add(models.Artwork{
		Creator:     creator,
		Owner:       creator,
		MetadataRef: metadataRef,
		RoyaltyBps:  royaltyBps,
		Licensed:    false,
	})
	return id, nil
}

// Get returns a deep copy so callers cannot reach into ledger state.
func (r *ArtworkRegistry) Get(artworkID uint64) (models.Artwork, error) {
	artwork, err := r.store.artwork(artworkID)
	if err != nil {
		return models.Artwork{}, err
	}
	return artwork.Clone(), nil
}

// RoyaltyOf is the royalty-standard view: the creator and the floored royalty
// amount owed on salePrice. Pure; usable by off-ledger marketplaces.
func (r *ArtworkRegistry) RoyaltyOf(artworkID uint64, salePrice int64) (models.Identity, int64, error) {
	artwork, err := r.store.artwork(artworkID)
	if err != nil {
		return "", 0, err
	}
	return artwork.Creator, artwork.RoyaltyAmount(salePrice), nil
}

// ArtworksByCreator returns copies of every artwork the creator registered,
// in registration order.
func (r *ArtworkRegistry) ArtworksByCreator(creator models.Identity) []models.Artwork {
	var out []models.Artwork
	for _, artwork := range r.store.all() {
		if artwork.Creator == creator {
			out = append(out, artwork.Clone())
		}
	}
	return out
}

func (r *ArtworkRegistry) Count() uint64 {
	return r.store.Count()
}

// setLicensed stores the derived licensed flag. Only the LicensingEngine
// calls this; it is not part of the external surface.
func (r *ArtworkRegistry) setLicensed(artworkID uint64, value bool) error {
	artwork, err := r.store.artwork(artworkID)
	if err != nil {
		return err
	}
	artwork.Licensed = value
	return nil
}

// setOwner records an externally-driven ownership change.
func (r *ArtworkRegistry) setOwner(artworkID uint64, newOwner models.Identity) error {
	artwork, err := r.store.artwork(artworkID)
	if err != nil {
		return err
	}
	artwork.Owner = newOwner
	return nil
}
