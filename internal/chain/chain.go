// Package chain implements the Merkle-committed, proof-of-work block chain:
// genesis construction, mining, and full-chain verification.
package chain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ccoin/veil/internal/merkle"
	"github.com/ccoin/veil/pkg/types"
)

// Config holds the chain's tunable parameters.
type Config struct {
	// Difficulty is the number of leading hex-zero nibbles a mined block's
	// hash must have.
	Difficulty int
}

// DefaultConfig returns the chain's default operating parameters.
func DefaultConfig() Config {
	return Config{Difficulty: 2}
}

// Chain is an ordered, append-only sequence of blocks starting from a
// genesis block at index 0.
type Chain struct {
	cfg    Config
	blocks []types.Block
}

// New constructs a chain with a freshly built genesis block at the given
// timestamp.
func New(cfg Config, genesisTimestamp float64) (*Chain, error) {
	genesis := types.Block{
		Index:        0,
		Timestamp:    genesisTimestamp,
		Transactions: []types.Transaction{},
		PreviousHash: "0",
		Nonce:        0,
	}
	if err := finalizeBlock(&genesis); err != nil {
		return nil, err
	}
	return &Chain{cfg: cfg, blocks: []types.Block{genesis}}, nil
}

// FromBlocks reconstructs a chain from an already-mined block list, as
// loaded from a snapshot. The blocks are trusted as-is; callers should run
// Verify afterward if they want integrity guarantees.
func FromBlocks(cfg Config, blocks []types.Block) *Chain {
	return &Chain{cfg: cfg, blocks: blocks}
}

// Blocks returns the chain's block list.
func (c *Chain) Blocks() []types.Block {
	return c.blocks
}

// Latest returns the most recently appended block.
func (c *Chain) Latest() types.Block {
	return c.blocks[len(c.blocks)-1]
}

// Difficulty returns the chain's configured mining difficulty.
func (c *Chain) Difficulty() int {
	return c.cfg.Difficulty
}

// MineBlock builds the next block from txs (already including any
// coinbase transaction), increments nonce until the hash satisfies the
// chain's difficulty, and appends it.
func (c *Chain) MineBlock(txs []types.Transaction, timestamp float64) (types.Block, error) {
	prev := c.Latest()
	block := types.Block{
		Index:        prev.Index + 1,
		Timestamp:    timestamp,
		Transactions: txs,
		PreviousHash: prev.Hash,
		Nonce:        0,
	}

	root, err := merkleRoot(txs)
	if err != nil {
		return types.Block{}, err
	}
	block.MerkleRoot = root

	target := make([]byte, c.cfg.Difficulty)
	for i := range target {
		target[i] = '0'
	}
	targetPrefix := string(target)

	for {
		h, err := block.ComputeHash()
		if err != nil {
			return types.Block{}, err
		}
		block.Hash = h
		if len(h) >= len(targetPrefix) && h[:len(targetPrefix)] == targetPrefix {
			break
		}
		block.Nonce++
	}

	c.blocks = append(c.blocks, block)
	return block, nil
}

// Verify re-derives every block's hash and Merkle root and checks the
// previous-hash linkage.
func (c *Chain) Verify() error {
	for i := 1; i < len(c.blocks); i++ {
		current := c.blocks[i]
		previous := c.blocks[i-1]

		recomputedHash, err := current.ComputeHash()
		if err != nil {
			return err
		}
		if current.Hash != recomputedHash {
			return fmt.Errorf("%w: hash mismatch on block %d", types.ErrChainInconsistency, i)
		}

		if current.PreviousHash != previous.Hash {
			return fmt.Errorf("%w: chain broken at block %d", types.ErrChainInconsistency, i)
		}

		root, err := merkleRoot(current.Transactions)
		if err != nil {
			return err
		}
		if current.MerkleRoot != root {
			return fmt.Errorf("%w: merkle root mismatch on block %d", types.ErrChainInconsistency, i)
		}
	}
	return nil
}

// FindTransaction scans blocks in order for tx_id and, on match, validates
// its Merkle inclusion proof against the owning block.
func (c *Chain) FindTransaction(txID string) (block types.Block, tx types.Transaction, valid bool, found bool) {
	for _, b := range c.blocks {
		for _, t := range b.Transactions {
			if t.ID() != txID {
				continue
			}
			tree, err := merkle.Build(b.Transactions)
			if err != nil {
				return b, t, false, true
			}
			proof, err := tree.Proof(&t)
			if err != nil {
				return b, t, false, true
			}
			leafHash, err := txLeafHash(&t)
			if err != nil {
				return b, t, false, true
			}
			valid := merkle.Verify(leafHash, proof, tree.Root())
			return b, t, valid, true
		}
	}
	return types.Block{}, types.Transaction{}, false, false
}

// ScanForAddress returns every transaction across all blocks whose sender
// or recipient address matches addr.
func (c *Chain) ScanForAddress(addr string) []types.Transaction {
	var matches []types.Transaction
	for _, b := range c.blocks {
		for _, t := range b.Transactions {
			if t.SenderAddress() == addr || t.RecipientAddress() == addr {
				matches = append(matches, t)
			}
		}
	}
	return matches
}

func finalizeBlock(b *types.Block) error {
	root, err := merkleRoot(b.Transactions)
	if err != nil {
		return err
	}
	b.MerkleRoot = root
	h, err := b.ComputeHash()
	if err != nil {
		return err
	}
	b.Hash = h
	return nil
}

func merkleRoot(txs []types.Transaction) (string, error) {
	tree, err := merkle.Build(txs)
	if err != nil {
		return "", err
	}
	return tree.Root(), nil
}

func txLeafHash(tx *types.Transaction) (string, error) {
	encoded, err := types.CanonicalJSON(tx)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(encoded)
	return hex.EncodeToString(digest[:]), nil
}
