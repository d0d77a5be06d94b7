package history

import "github.com/google/uuid"

// IDGenerator produces ledger entry ids.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 ids.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 string. It panics if the system's random source
// fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
