// Package idgen mints job and event identifiers.
package idgen

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDGen produces the two identifier flavors the engine needs: opaque job
// IDs and sortable event IDs.
type IDGen interface {
	NewJobID() string
	NewEventID() string
}

// Default mints job IDs as UUIDv4 (matching the original source's
// str(uuid.uuid4())) and event IDs as ULIDs, which sort lexically by
// creation time and give the event store a secondary monotonic key.
type Default struct{}

func (Default) NewJobID() string {
	return uuid.New().String()
}

func (Default) NewEventID() string {
	return ulid.Make().String()
}
