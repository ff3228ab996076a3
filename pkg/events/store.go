// pkg/events/store.go
package events

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aiprojects789/drmbackend/pkg/utils"
)

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type %T for JSONB", value)
	}

	return json.Unmarshal(bytes, j)
}

// Record is the persisted form of an emitted event. Records form an
// append-only, hash-chained log external indexers read from.
type Record struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	EventType    string    `json:"event_type" gorm:"size:50;not null;index"`
	ArtworkID    uint64    `json:"artwork_id" gorm:"not null;index"`
	Payload      JSONB     `json:"payload" gorm:"type:jsonb"`
	Hash         string    `json:"hash" gorm:"size:64;not null"`
	PreviousHash string    `json:"previous_hash" gorm:"size:64"`
	Sequence     uint64    `json:"sequence" gorm:"uniqueIndex;autoIncrement:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

func (Record) TableName() string {
	return "ledger_events"
}

// Store is a Sink backed by gorm/postgres. Appends are serialized so the
// hash chain stays linear even when sinks are shared.
type Store struct {
	db       *gorm.DB
	mu       sync.Mutex
	lastHash string
	lastSeq  uint64
}

func NewStore(db *gorm.DB) (*Store, error) {
	store := &Store{db: db}

	var last Record
	err := db.Order("sequence DESC").First(&last).Error
	switch {
	case err == nil:
		store.lastHash = last.Hash
		store.lastSeq = last.Sequence
	case err == gorm.ErrRecordNotFound:
		// empty log
	default:
		return nil, fmt.Errorf("failed to load event log head: %w", err)
	}

	return store, nil
}

func (s *Store) Emit(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash, err := ChainHash(event, s.lastHash)
	if err != nil {
		return err
	}

	record := Record{
		ID:           event.ID,
		EventType:    string(event.Type),
		ArtworkID:    event.ArtworkID,
		Payload:      JSONB(event.Payload),
		Hash:         hash,
		PreviousHash: s.lastHash,
		Sequence:     s.lastSeq + 1,
		CreatedAt:    event.EmittedAt,
	}

	if err := s.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to persist event record: %w", err)
	}

	s.lastHash = hash
	s.lastSeq = record.Sequence
	return nil
}

// List returns a page of records, newest first by default.
func (s *Store) List(params utils.PaginationParams) (utils.PaginationResult, error) {
	params = params.Normalize()
	query := s.db.Model(&Record{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.PaginationResult{}, fmt.Errorf("failed to count event records: %w", err)
	}

	allowedSortFields := []string{"created_at", "sequence", "event_type", "artwork_id"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var records []Record
	if err := query.Find(&records).Error; err != nil {
		return utils.PaginationResult{}, fmt.Errorf("failed to fetch event records: %w", err)
	}

	return utils.CreatePaginationResult(records, total, params), nil
}

// ByArtwork returns a page of an artwork's records.
func (s *Store) ByArtwork(artworkID uint64, params utils.PaginationParams) (utils.PaginationResult, error) {
	params = params.Normalize()
	query := s.db.Model(&Record{}).Where("artwork_id = ?", artworkID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.PaginationResult{}, fmt.Errorf("failed to count event records: %w", err)
	}

	allowedSortFields := []string{"created_at", "sequence", "event_type"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var records []Record
	if err := query.Find(&records).Error; err != nil {
		return utils.PaginationResult{}, fmt.Errorf("failed to fetch event records: %w", err)
	}

	return utils.CreatePaginationResult(records, total, params), nil
}

// VerifyChain walks the log oldest-first and recomputes every hash.
func (s *Store) VerifyChain() (bool, error) {
	var records []Record
	if err := s.db.Order("sequence ASC").Find(&records).Error; err != nil {
		return false, fmt.Errorf("failed to load event records: %w", err)
	}

	previousHash := ""
	for _, record := range records {
		if record.PreviousHash != previousHash {
			return false, fmt.Errorf("event %s: broken chain link", record.ID)
		}

		event := Event{
			ID:        record.ID,
			Type:      EventType(record.EventType),
			ArtworkID: record.ArtworkID,
			Payload:   Payload(record.Payload),
		}

		expected, err := ChainHash(event, previousHash)
		if err != nil {
			return false, err
		}
		if expected != record.Hash {
			return false, fmt.Errorf("event %s: hash mismatch", record.ID)
		}

		previousHash = record.Hash
	}

	return true, nil
}
