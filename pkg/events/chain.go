// pkg/events/chain.go
package events

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashedEnvelope is the canonical form an event is hashed in. Struct fields
// marshal in declaration order, so the digest is stable across processes.
type hashedEnvelope struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	ArtworkID    uint64  `json:"artwork_id"`
	Payload      Payload `json:"payload"`
	PreviousHash string  `json:"previous_hash"`
}

// ChainHash returns the sha256 digest of the event linked to the previous
// record's hash. A verifier can walk records oldest-first and recompute each
// hash to detect tampering anywhere in the log.
func ChainHash(event Event, previousHash string) (string, error) {
	envelope := hashedEnvelope{
		ID:           event.ID.String(),
		Type:         string(event.Type),
		ArtworkID:    event.ArtworkID,
		Payload:      event.Payload,
		PreviousHash: previousHash,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event for hashing: %w", err)
	}

	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:]), nil
}
