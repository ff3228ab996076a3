// pkg/ledger/store.go
package ledger

import (
	"github.com/aiprojects789/drmbackend/pkg/models"
)

// Store is the arena holding all ledger-resident state: artwork records
// indexed by id, each owning its append-only license list. It is passed to
// every engine as an explicit dependency; there is no ambient global state.
// The Store itself does no locking — the Ledger facade serializes access.
type Store struct {
	artworks []*models.Artwork
}

func NewStore() *Store {
	return &Store{}
}

// add appends a new artwork and returns its id. Ids are positions in the
// arena, so they are unique and strictly increasing in registration order.
func (s *Store) add(artwork models.Artwork) uint64 {
	artwork.ID = uint64(len(s.artworks))
	s.artworks = append(s.artworks, &artwork)
	return artwork.ID
}

// artwork returns the live record for mutation by engines.
func (s *Store) artwork(id uint64) (*models.Artwork, error) {
	if id >= uint64(len(s.artworks)) {
		return nil, models.ErrNotFound
	}
	return s.artworks[id], nil
}

// Count returns how many artworks have ever been registered, which is also
// the id the next registration will receive.
func (s *Store) Count() uint64 {
	return uint64(len(s.artworks))
}

func (s *Store) all() []*models.Artwork {
	return s.artworks
}
