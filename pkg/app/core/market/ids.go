package market

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator hands out identifiers for markets, offers and transactions.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues time-based (v1) UUIDs, falling back to random v4
// if the node clock sequence cannot be read.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	id, err := uuid.NewUUID()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// SequenceGenerator issues "<prefix>-1", "<prefix>-2", ... and is safe for concurrent use.
type SequenceGenerator struct {
	Prefix string
	n      atomic.Uint64
}

func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{Prefix: prefix}
}

func (g *SequenceGenerator) NewID() string {
	return g.Prefix + "-" + strconv.FormatUint(g.n.Add(1), 10)
}
