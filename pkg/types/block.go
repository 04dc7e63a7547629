package types

import (
	"crypto/sha256"
	"encoding/hex"
)

// Block is a single entry in the chain: a set of transactions committed by
// their Merkle root, linked to its predecessor by hash.
type Block struct {
	Index        uint64        `json:"index"`
	Timestamp    float64       `json:"timestamp"`
	Transactions []Transaction `json:"transactions"`
	PreviousHash string        `json:"previous_hash"`
	Nonce        uint64        `json:"nonce"`
	MerkleRoot   string        `json:"merkle_root"`
	Hash         string        `json:"hash"`
}

// blockHeader is the subset of Block fields that feed the block hash. The
// transaction list itself is represented only via MerkleRoot; Hash is
// deliberately excluded since it is the value being computed.
type blockHeader struct {
	Index        uint64  `json:"index"`
	Timestamp    float64 `json:"timestamp"`
	MerkleRoot   string  `json:"merkle_root"`
	PreviousHash string  `json:"previous_hash"`
	Nonce        uint64  `json:"nonce"`
}

// ComputeHash returns SHA-256(canonical-JSON({index, timestamp,
// merkle_root, previous_hash, nonce})) as a hex string.
func (b *Block) ComputeHash() (string, error) {
	encoded, err := CanonicalJSON(blockHeader{
		Index:        b.Index,
		Timestamp:    b.Timestamp,
		MerkleRoot:   b.MerkleRoot,
		PreviousHash: b.PreviousHash,
		Nonce:        b.Nonce,
	})
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(encoded)
	return hex.EncodeToString(digest[:]), nil
}
