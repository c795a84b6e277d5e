package domain

import (
	"time"

	"github.com/google/uuid"
)

// KeyEnvelope is the persisted wrapped data key for one key version. Rows are
// append-only: every rotation inserts the envelope for the new version and no
// envelope is ever updated or deleted, so any historical version can be
// unwrapped for decryption. Only wrapped material is stored; plaintext data
// keys never reach the database.
type KeyEnvelope struct {
	ID                 uuid.UUID
	KeyID              string
	KeyVersion         uint
	WrappedKeyMaterial []byte
	CreatedAt          time.Time
}
