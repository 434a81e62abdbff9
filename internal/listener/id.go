package listener

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// newListenerID - 6 hex-символов из случайного UUID.
func newListenerID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:3])
}
