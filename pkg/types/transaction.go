package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ccoin/veil/internal/ring"
	"github.com/ccoin/veil/internal/zkp"
)

// TxKind discriminates the transaction tagged union: a coinbase reward, a
// ZK-variant transfer between two discrete-log addresses, or a ring-variant
// transfer to a stealth address.
type TxKind string

const (
	TxKindCoinbase TxKind = "coinbase"
	TxKindZK       TxKind = "zk"
	TxKindRing     TxKind = "ring"
)

// AmountProofJSON bundles the range and equality proofs attesting that an
// encrypted transfer amount is in range and matches its commitment.
type AmountProofJSON struct {
	Range    zkp.RangeProofJSON    `json:"range"`
	Equality zkp.EqualityProofJSON `json:"equality"`
}

// BalanceProofJSON additionally binds the post-transfer balance ciphertext
// to the prior one via a subtraction proof. The three ciphertexts the
// subtraction proof relates are carried alongside it: the subtraction
// relation is witness-less and verifier-only, so it can only be checked
// against public ciphertexts, not a value kept purely in wallet memory.
// The range and equality proofs then attest that NewCiphertext opens to a
// non-negative value consistent with its own commitment.
type BalanceProofJSON struct {
	PriorCiphertext  zkp.CiphertextJSON       `json:"prior_ciphertext"`
	AmountCiphertext zkp.CiphertextJSON       `json:"amount_ciphertext"`
	NewCiphertext    zkp.CiphertextJSON       `json:"new_ciphertext"`
	Range            zkp.RangeProofJSON       `json:"range"`
	Equality         zkp.EqualityProofJSON    `json:"equality"`
	Subtraction      zkp.SubtractionProofJSON `json:"subtraction"`
}

// CoinbaseData is a miner reward: plaintext amount, no ZK verification.
type CoinbaseData struct {
	SenderAddress    string  `json:"sender_address"`
	RecipientAddress string  `json:"recipient_address"`
	Amount           uint64  `json:"amount"`
	Timestamp        float64 `json:"timestamp"`
	TxID             string  `json:"tx_id"`
}

// ZKData is a confidential transfer between two discrete-log addresses.
type ZKData struct {
	SenderAddress    string            `json:"sender_address"`
	RecipientAddress string            `json:"recipient_address"`
	Ciphertext       zkp.CiphertextJSON `json:"ciphertext"`
	AmountProof      AmountProofJSON   `json:"amount_proof"`
	BalanceProof     *BalanceProofJSON `json:"balance_proof,omitempty"`
	Signature        zkp.SignatureJSON `json:"signature"`
	Timestamp        float64           `json:"timestamp"`
	TxID             string            `json:"tx_id"`
}

// RingData is a confidential transfer to a stealth address, signed by a
// linear ring signature over a borrowed anonymity set.
type RingData struct {
	SenderSpendKey   zkp.PointJSON      `json:"sender_spend_key"`
	StealthR         zkp.PointJSON      `json:"stealth_r"`
	StealthP         zkp.PointJSON      `json:"stealth_p"`
	EncryptedAmount  zkp.CiphertextJSON `json:"encrypted_amount"`
	RingSignature    ring.SignatureJSON `json:"ring_signature"`
	RingMembers      []zkp.PointJSON    `json:"ring_members"`
	SenderAddress    string             `json:"sender_address"`
	RecipientAddress string             `json:"recipient_address"`
	Timestamp        float64            `json:"timestamp"`
	TxID             string             `json:"tx_id"`
}

// Transaction is the tagged union Coinbase | ZK | Ring. Exactly one of
// Coinbase, ZK, Ring is non-nil, matching Kind.
type Transaction struct {
	Kind     TxKind        `json:"kind"`
	Coinbase *CoinbaseData `json:"coinbase,omitempty"`
	ZK       *ZKData       `json:"zk,omitempty"`
	Ring     *RingData     `json:"ring,omitempty"`
}

// ID returns the transaction's tx_id regardless of variant.
func (tx *Transaction) ID() string {
	switch tx.Kind {
	case TxKindCoinbase:
		return tx.Coinbase.TxID
	case TxKindZK:
		return tx.ZK.TxID
	case TxKindRing:
		return tx.Ring.TxID
	default:
		return ""
	}
}

// SenderAddress returns the transaction's sender address regardless of
// variant ("COINBASE" for coinbase transactions).
func (tx *Transaction) SenderAddress() string {
	switch tx.Kind {
	case TxKindCoinbase:
		return tx.Coinbase.SenderAddress
	case TxKindZK:
		return tx.ZK.SenderAddress
	case TxKindRing:
		return tx.Ring.SenderAddress
	default:
		return ""
	}
}

// RecipientAddress returns the transaction's recipient address regardless
// of variant.
func (tx *Transaction) RecipientAddress() string {
	switch tx.Kind {
	case TxKindCoinbase:
		return tx.Coinbase.RecipientAddress
	case TxKindZK:
		return tx.ZK.RecipientAddress
	case TxKindRing:
		return tx.Ring.RecipientAddress
	default:
		return ""
	}
}

// Timestamp returns the transaction's creation timestamp regardless of
// variant.
func (tx *Transaction) Timestamp() float64 {
	switch tx.Kind {
	case TxKindCoinbase:
		return tx.Coinbase.Timestamp
	case TxKindZK:
		return tx.ZK.Timestamp
	case TxKindRing:
		return tx.Ring.Timestamp
	default:
		return 0
	}
}

// ComputeTxID derives tx_id = SHA-256("<sender>:<recipient>:<timestamp>")
// truncated to its first 16 hex characters.
func ComputeTxID(sender, recipient string, timestamp float64) string {
	return truncatedHash(fmt.Sprintf("%s:%s:%v", sender, recipient, timestamp))
}

// ComputeCoinbaseTxID derives tx_id = SHA-256("COINBASE:<miner>:<timestamp>")
// truncated to its first 16 hex characters.
func ComputeCoinbaseTxID(miner string, timestamp float64) string {
	return truncatedHash(fmt.Sprintf("COINBASE:%s:%v", miner, timestamp))
}

func truncatedHash(s string) string {
	digest := sha256.Sum256([]byte(s))
	return hex.EncodeToString(digest[:])[:16]
}

// Hash returns the canonical-JSON SHA-256 digest of the transaction, the
// leaf value fed into the Merkle tree.
func (tx *Transaction) Hash() ([32]byte, error) {
	encoded, err := CanonicalJSON(tx)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(encoded), nil
}
