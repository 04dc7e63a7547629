// Package mempool implements the FIFO pool of pending transactions held
// between mining rounds.
package mempool

import (
	"sync"

	"github.com/ccoin/veil/pkg/types"
)

// Config holds the mempool's tunable parameters.
type Config struct {
	// MaxSize caps the number of pending transactions the pool will hold.
	// Zero means unbounded.
	MaxSize int
}

// DefaultConfig returns the mempool's default operating parameters.
func DefaultConfig() Config {
	return Config{MaxSize: 0}
}

// Pool is a thread-safe FIFO queue of pending transactions. It performs no
// deduplication: the same transaction can be admitted twice. Double-spend
// protection lives in the wallet's processed-tx_id cache, not here.
type Pool struct {
	cfg Config

	mu      sync.RWMutex
	pending []types.Transaction
}

// New constructs an empty pool.
func New(cfg Config) *Pool {
	return &Pool{cfg: cfg}
}

// Add appends tx to the pool. Returns false if the pool is at MaxSize.
func (p *Pool) Add(tx types.Transaction) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cfg.MaxSize > 0 && len(p.pending) >= p.cfg.MaxSize {
		return false
	}
	p.pending = append(p.pending, tx)
	return true
}

// Drain removes and returns every pending transaction, in FIFO order.
func (p *Pool) Drain() []types.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	drained := p.pending
	p.pending = nil
	return drained
}

// Transactions returns a snapshot of the currently pending transactions
// without removing them.
func (p *Pool) Transactions() []types.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snapshot := make([]types.Transaction, len(p.pending))
	copy(snapshot, p.pending)
	return snapshot
}

// Len returns the number of pending transactions.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.pending)
}
