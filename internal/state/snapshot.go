package state

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"os"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/pbkdf2"

	"github.com/ccoin/veil/internal/chain"
	"github.com/ccoin/veil/internal/mempool"
	"github.com/ccoin/veil/pkg/types"
)

func newSHA256() hash.Hash { return sha256.New() }

// rebuildChain constructs a chain.Chain directly from already-mined
// blocks, as loaded from a snapshot.
func rebuildChain(cfg chain.Config, blocks []types.Block) *chain.Chain {
	return chain.FromBlocks(cfg, blocks)
}

// rebuildPool constructs a fresh mempool.Pool pre-loaded with pending.
func rebuildPool(cfg mempool.Config, pending []types.Transaction) *mempool.Pool {
	pool := mempool.New(cfg)
	for _, tx := range pending {
		pool.Add(tx)
	}
	return pool
}

// snapshotPayload is the external snapshot JSON shape: the chain, the
// still-pending mempool, and the mining difficulty.
type snapshotPayload struct {
	Chain               []types.Block       `json:"chain"`
	PendingTransactions []types.Transaction `json:"pending_transactions"`
	Difficulty          int                 `json:"difficulty"`
}

// sealedPayload wraps an encrypted snapshotPayload. Present only when
// SaveState is called with a non-empty passphrase.
type sealedPayload struct {
	Sealed     bool   `json:"sealed"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

const (
	pbkdf2Iterations = 100000
	pbkdf2KeyLen     = 32
	saltLen          = 16
)

// SaveState writes the chain, pending mempool, and difficulty to path as
// canonical (sorted-key, whitespace-free) JSON. If passphrase is empty, the
// file holds the plain snapshotPayload shape. If non-empty, the canonical
// payload is sealed with nacl/secretbox under a pbkdf2-derived key and the
// file instead holds the sealedPayload envelope.
func (m *Manager) SaveState(path, passphrase string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := snapshotPayload{
		Chain:               m.chain.Blocks(),
		PendingTransactions: m.pool.Transactions(),
		Difficulty:          m.chain.Difficulty(),
	}
	payload, err := types.CanonicalJSON(snap)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrSerialization, err)
	}

	if passphrase == "" {
		return os.WriteFile(path, payload, 0o600)
	}

	sealed, err := seal(payload, passphrase)
	if err != nil {
		return err
	}
	out, err := json.Marshal(sealed)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrSerialization, err)
	}
	return os.WriteFile(path, out, 0o600)
}

// LoadState reads a snapshot from path (transparently unsealing it if
// passphrase is needed), replaces the chain and mempool in place, and
// fires state_loaded listeners with the new block count.
func (m *Manager) LoadState(path, passphrase string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return fmt.Errorf("%w: %v", types.ErrSerialization, err)
	}

	payload := raw
	if _, isSealed := probe["sealed"]; isSealed {
		var sf sealedPayload
		if err := json.Unmarshal(raw, &sf); err != nil {
			return fmt.Errorf("%w: %v", types.ErrSerialization, err)
		}
		payload, err = unseal(sf, passphrase)
		if err != nil {
			return err
		}
	}

	var snap snapshotPayload
	if err := json.Unmarshal(payload, &snap); err != nil {
		return fmt.Errorf("%w: %v", types.ErrSerialization, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.chainCfg.Difficulty = snap.Difficulty
	m.chain = rebuildChain(m.chainCfg, snap.Chain)
	m.pool = rebuildPool(m.poolCfg, snap.PendingTransactions)

	m.notifyLocked("state_loaded", len(snap.Chain))
	return nil
}

// seal encrypts payload with a fresh random salt and nonce, deriving the
// symmetric key from passphrase via PBKDF2-HMAC-SHA256 (matching the
// module's sole hash choice throughout).
func seal(payload []byte, passphrase string) (*sealedPayload, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}

	var key [32]byte
	copy(key[:], pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, pbkdf2KeyLen, newSHA256))

	ciphertext := secretbox.Seal(nil, payload, &nonce, &key)

	return &sealedPayload{
		Sealed:     true,
		Salt:       hex.EncodeToString(salt),
		Nonce:      hex.EncodeToString(nonce[:]),
		Ciphertext: hex.EncodeToString(ciphertext),
	}, nil
}

// unseal reverses seal, returning the original JSON payload.
func unseal(sf sealedPayload, passphrase string) ([]byte, error) {
	salt, err := hex.DecodeString(sf.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: bad salt", types.ErrSerialization)
	}
	nonceBytes, err := hex.DecodeString(sf.Nonce)
	if err != nil || len(nonceBytes) != 24 {
		return nil, fmt.Errorf("%w: bad nonce", types.ErrSerialization)
	}
	ciphertext, err := hex.DecodeString(sf.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: bad ciphertext", types.ErrSerialization)
	}

	var nonce [24]byte
	copy(nonce[:], nonceBytes)

	var key [32]byte
	copy(key[:], pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, pbkdf2KeyLen, newSHA256))

	payload, ok := secretbox.Open(nil, ciphertext, &nonce, &key)
	if !ok {
		return nil, fmt.Errorf("%w: wrong passphrase or corrupt snapshot", types.ErrSerialization)
	}
	return payload, nil
}
