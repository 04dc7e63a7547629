// Package state implements the BlockchainStateManager: the single
// lock-guarded owner of the chain, mempool, listener registry, and
// ring-signature anonymity-set registry that every wallet operation goes
// through.
package state

import (
	"log"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/ccoin/veil/internal/chain"
	"github.com/ccoin/veil/internal/mempool"
	"github.com/ccoin/veil/internal/zkp"
	"github.com/ccoin/veil/pkg/common"
	"github.com/ccoin/veil/pkg/types"
)

// Config holds the state manager's tunable parameters.
type Config struct {
	// ScanInterval is the background scanner's sleep interval between
	// passes.
	ScanInterval time.Duration
	// StopWait bounds how long StopBackgroundScan waits for the scanner
	// goroutine to exit before giving up.
	StopWait time.Duration
}

// DefaultConfig returns the state manager's default operating parameters:
// a 10s scan interval and a 2s stop-wait bound.
func DefaultConfig() Config {
	return Config{ScanInterval: 10 * time.Second, StopWait: 2 * time.Second}
}

// registeredListener pairs an event name with its callback.
type registeredListener struct {
	event string
	cb    func(interface{})
}

// Manager is the thread-safe owner of the chain, mempool, listener
// registry, and public-key anonymity-set registry. Every mutating access
// — and every read that touches shared structures — goes through its
// reentrant lock, so a listener invoked synchronously from within
// MineBlock may safely call back into a read operation like
// ScanForAddress without deadlocking.
type Manager struct {
	cfg      Config
	chainCfg chain.Config
	poolCfg  mempool.Config
	mu       reentrantMutex

	ctx   *zkp.CryptoContext
	chain *chain.Chain
	pool  *mempool.Pool

	listeners []registeredListener
	pubKeys   []bn254.G1Affine

	scanStop chan struct{}
	scanDone chan struct{}
}

// New constructs a state manager with a freshly minted genesis block.
func New(cfg Config, chainCfg chain.Config, poolCfg mempool.Config, zctx *zkp.CryptoContext) (*Manager, error) {
	c, err := chain.New(chainCfg, nowSeconds())
	if err != nil {
		return nil, err
	}
	return &Manager{
		cfg:      cfg,
		chainCfg: chainCfg,
		poolCfg:  poolCfg,
		ctx:      zctx,
		chain:    c,
		pool:     mempool.New(poolCfg),
	}, nil
}

// FromSnapshot rebuilds a state manager around an already-mined chain and
// pending mempool, as loaded from a JSON snapshot.
func FromSnapshot(cfg Config, chainCfg chain.Config, poolCfg mempool.Config, zctx *zkp.CryptoContext, blocks []types.Block, pending []types.Transaction) *Manager {
	m := &Manager{
		cfg:      cfg,
		chainCfg: chainCfg,
		poolCfg:  poolCfg,
		ctx:      zctx,
		chain:    chain.FromBlocks(chainCfg, blocks),
		pool:     mempool.New(poolCfg),
	}
	for _, tx := range pending {
		m.pool.Add(tx)
	}
	return m
}

func nowSeconds() float64 {
	return float64(common.NowNano()) / 1e9
}

// AddTransaction appends tx to the mempool under lock. No deduplication:
// the same transaction may be admitted twice. Double-spend protection
// lives in the wallet's processed-tx_id cache, not here.
func (m *Manager) AddTransaction(tx types.Transaction) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	added := m.pool.Add(tx)
	if added {
		m.notifyLocked("mempool_updated", m.pool.Len())
	}
	return added
}

// MineBlock drains the mempool into the chain's pending block, appends a
// coinbase reward to minerAddress, mines the block at the chain's
// configured difficulty, and fires block_mined listeners before returning —
// all under one lock acquisition, so a listener may call back into
// ScanForAddress or GetAllTransactions without blocking on itself. A
// listener that needs a different lock (e.g. a wallet rescanning its own
// balance) must dispatch that work asynchronously rather than run it
// inline, or it risks inverting lock order against a concurrent caller of
// that other lock.
func (m *Manager) MineBlock(minerAddress string) (types.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	txs := m.pool.Drain()

	timestamp := nowSeconds()
	coinbase := types.Transaction{
		Kind: types.TxKindCoinbase,
		Coinbase: &types.CoinbaseData{
			SenderAddress:    "COINBASE",
			RecipientAddress: minerAddress,
			Amount:           1,
			Timestamp:        timestamp,
			TxID:             types.ComputeCoinbaseTxID(minerAddress, timestamp),
		},
	}
	txs = append(txs, coinbase)

	block, err := m.chain.MineBlock(txs, timestamp)
	if err != nil {
		return types.Block{}, err
	}

	m.notifyLocked("block_mined", block)
	return block, nil
}

// ScanForAddress returns every chain transaction whose sender or recipient
// address matches addr.
func (m *Manager) ScanForAddress(addr string) []types.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chain.ScanForAddress(addr)
}

// GetAllTransactions flattens every transaction across all mined blocks
// plus the current mempool.
func (m *Manager) GetAllTransactions() []types.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []types.Transaction
	for _, b := range m.chain.Blocks() {
		all = append(all, b.Transactions...)
	}
	all = append(all, m.pool.Transactions()...)
	return all
}

// FindTransaction scans the chain for tx_id and validates its Merkle
// inclusion proof.
func (m *Manager) FindTransaction(txID string) (block types.Block, tx types.Transaction, merkleValid bool, found bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chain.FindTransaction(txID)
}

// Chain returns the underlying chain for read-only inspection (verify,
// snapshotting).
func (m *Manager) Chain() *chain.Chain {
	return m.chain
}

// PendingTransactions returns a snapshot of the mempool's contents.
func (m *Manager) PendingTransactions() []types.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pool.Transactions()
}

// RegisterPublicKey adds pk to the ring-signature anonymity-set registry
// if it is not already present.
func (m *Manager) RegisterPublicKey(pk bn254.G1Affine) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.pubKeys {
		if existing.Equal(&pk) {
			return
		}
	}
	m.pubKeys = append(m.pubKeys, pk)
}

// GetRandomPublicKeys samples n public keys from the registry, excluding
// any in exclude, generating fresh ephemeral keypairs to fill the set if
// the registry is too short.
func (m *Manager) GetRandomPublicKeys(n int, exclude []bn254.G1Affine) ([]bn254.G1Affine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	available := make([]bn254.G1Affine, 0, len(m.pubKeys))
	for _, pk := range m.pubKeys {
		excluded := false
		for _, ex := range exclude {
			if pk.Equal(&ex) {
				excluded = true
				break
			}
		}
		if !excluded {
			available = append(available, pk)
		}
	}

	for len(available) < n {
		kp, err := m.ctx.KeyGen()
		if err != nil {
			return nil, err
		}
		available = append(available, kp.PublicKey)
		m.pubKeys = append(m.pubKeys, kp.PublicKey)
	}

	return sampleN(available, n), nil
}

func sampleN(pool []bn254.G1Affine, n int) []bn254.G1Affine {
	if n >= len(pool) {
		out := make([]bn254.G1Affine, len(pool))
		copy(out, pool)
		return out
	}
	shuffled := make([]bn254.G1Affine, len(pool))
	copy(shuffled, pool)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := cryptoRandIntn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:n]
}

// AddListener registers a synchronous callback for event. Listeners for a
// given event fire in registration order, under the lock, before the
// triggering call (MineBlock, LoadState) returns; a listener must not block
// or acquire a lock of its own — if it needs to, it must hand that work off
// to a new goroutine instead of running it inline.
func (m *Manager) AddListener(event string, cb func(interface{})) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, registeredListener{event: event, cb: cb})
}

// notifyLocked fans out to every listener registered for event. Caller
// must already hold m.mu (reentrant, so the listener may call back into
// any Manager method). A panicking listener is recovered and logged: a
// faulty listener must never prevent the triggering call from returning.
func (m *Manager) notifyLocked(event string, data interface{}) {
	for _, l := range m.listeners {
		if l.event != event {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("state: %s listener panicked: %v", event, r)
				}
			}()
			l.cb(data)
		}()
	}
}
