package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Timestamp returns the current time in milliseconds since the epoch,
// the unit used for every timestamp column in the store.
func Timestamp() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// NewID produces a unique identifier suitable for a primary key.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
