package wallet

import (
	"fmt"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/ccoin/veil/internal/ring"
	"github.com/ccoin/veil/internal/zkp"
	"github.com/ccoin/veil/pkg/types"
)

// ParseZKAddress parses a ZK-variant address "x:y" into its curve point.
// The PointJSON curve tag is not checked here — FromJSON validates the
// point lies on the curve, which is the only property a parsed address
// needs.
func ParseZKAddress(ctx *zkp.CryptoContext, addr string) (bn254.G1Affine, error) {
	parts := strings.Split(addr, ":")
	if len(parts) != 2 {
		return bn254.G1Affine{}, fmt.Errorf("%w: malformed zk address", types.ErrInvalidInput)
	}
	return ctx.FromJSON(zkp.PointJSON{X: parts[0], Y: parts[1]})
}

// ParseRingAddress parses a ring-variant address
// "ring:view.x:view.y:spend.x:spend.y" into its view and spend public keys.
func ParseRingAddress(ctx *zkp.CryptoContext, addr string) (viewPk, spendPk bn254.G1Affine, err error) {
	parts := strings.Split(addr, ":")
	if len(parts) != 5 || parts[0] != "ring" {
		return bn254.G1Affine{}, bn254.G1Affine{}, fmt.Errorf("%w: malformed ring address", types.ErrInvalidInput)
	}
	viewPk, err = ctx.FromJSON(zkp.PointJSON{X: parts[1], Y: parts[2]})
	if err != nil {
		return bn254.G1Affine{}, bn254.G1Affine{}, err
	}
	spendPk, err = ctx.FromJSON(zkp.PointJSON{X: parts[3], Y: parts[4]})
	if err != nil {
		return bn254.G1Affine{}, bn254.G1Affine{}, err
	}
	return viewPk, spendPk, nil
}

// zkSignedFields is the subset of ZKData that the transaction signature
// binds — everything but the signature itself.
type zkSignedFields struct {
	SenderAddress    string                  `json:"sender_address"`
	RecipientAddress string                  `json:"recipient_address"`
	Ciphertext       zkp.CiphertextJSON      `json:"ciphertext"`
	AmountProof      types.AmountProofJSON   `json:"amount_proof"`
	BalanceProof     *types.BalanceProofJSON `json:"balance_proof,omitempty"`
	Timestamp        float64                 `json:"timestamp"`
	TxID             string                  `json:"tx_id"`
}

func zkSigningMessage(tx *types.ZKData) ([]byte, error) {
	return types.CanonicalJSON(zkSignedFields{
		SenderAddress:    tx.SenderAddress,
		RecipientAddress: tx.RecipientAddress,
		Ciphertext:       tx.Ciphertext,
		AmountProof:      tx.AmountProof,
		BalanceProof:     tx.BalanceProof,
		Timestamp:        tx.Timestamp,
		TxID:             tx.TxID,
	})
}

// ringSignedFields is the subset of RingData that the ring signature binds.
type ringSignedFields struct {
	SenderSpendKey   zkp.PointJSON      `json:"sender_spend_key"`
	StealthR         zkp.PointJSON      `json:"stealth_r"`
	StealthP         zkp.PointJSON      `json:"stealth_p"`
	EncryptedAmount  zkp.CiphertextJSON `json:"encrypted_amount"`
	RingMembers      []zkp.PointJSON    `json:"ring_members"`
	SenderAddress    string             `json:"sender_address"`
	RecipientAddress string             `json:"recipient_address"`
	Timestamp        float64            `json:"timestamp"`
	TxID             string             `json:"tx_id"`
}

func ringSigningMessage(tx *types.RingData) ([]byte, error) {
	return types.CanonicalJSON(ringSignedFields{
		SenderSpendKey:   tx.SenderSpendKey,
		StealthR:         tx.StealthR,
		StealthP:         tx.StealthP,
		EncryptedAmount:  tx.EncryptedAmount,
		RingMembers:      tx.RingMembers,
		SenderAddress:    tx.SenderAddress,
		RecipientAddress: tx.RecipientAddress,
		Timestamp:        tx.Timestamp,
		TxID:             tx.TxID,
	})
}

// VerifyZKTransaction checks a ZK-variant transaction's ciphertext
// well-formedness, amount proof, optional balance proof, and signature.
func VerifyZKTransaction(ctx *zkp.CryptoContext, tx *types.ZKData) error {
	senderPk, err := ParseZKAddress(ctx, tx.SenderAddress)
	if err != nil {
		return err
	}
	recipientPk, err := ParseZKAddress(ctx, tx.RecipientAddress)
	if err != nil {
		return err
	}

	ct, err := ctx.CiphertextFromJSON(tx.Ciphertext)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidTransaction, err)
	}
	if !ct.IsWellFormed() {
		return fmt.Errorf("%w: malformed ciphertext", types.ErrInvalidProof)
	}

	rangeProof, err := ctx.RangeProofFromJSON(tx.AmountProof.Range)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidProof, err)
	}
	if !ctx.VerifyRangeProof(rangeProof) {
		return fmt.Errorf("%w: amount range proof failed", types.ErrInvalidProof)
	}

	eqProof, err := ctx.EqualityProofFromJSON(tx.AmountProof.Equality)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidProof, err)
	}
	if !ctx.VerifyEqualityProof(&recipientPk, ct, &rangeProof.Commitment, eqProof) {
		return fmt.Errorf("%w: amount equality proof failed", types.ErrInvalidProof)
	}

	if tx.BalanceProof != nil {
		if err := verifyBalanceProof(ctx, tx.BalanceProof, &senderPk); err != nil {
			return err
		}
	}

	sig, err := ctx.SignatureFromJSON(tx.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidProof, err)
	}
	message, err := zkSigningMessage(tx)
	if err != nil {
		return err
	}
	if !ctx.VerifySignature(&senderPk, message, sig) {
		return fmt.Errorf("%w: signature verification failed", types.ErrInvalidProof)
	}

	return nil
}

func verifyBalanceProof(ctx *zkp.CryptoContext, bp *types.BalanceProofJSON, ownerPk *bn254.G1Affine) error {
	prior, err := ctx.CiphertextFromJSON(bp.PriorCiphertext)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidProof, err)
	}
	amt, err := ctx.CiphertextFromJSON(bp.AmountCiphertext)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidProof, err)
	}
	newCt, err := ctx.CiphertextFromJSON(bp.NewCiphertext)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidProof, err)
	}

	subProof, err := zkp.SubtractionProofFromJSON(bp.Subtraction)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidProof, err)
	}
	if !ctx.VerifySubtractionProof(prior, amt, newCt, subProof) {
		return fmt.Errorf("%w: balance subtraction proof failed", types.ErrInvalidProof)
	}

	rangeProof, err := ctx.RangeProofFromJSON(bp.Range)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidProof, err)
	}
	if !ctx.VerifyRangeProof(rangeProof) {
		return fmt.Errorf("%w: balance range proof failed", types.ErrInvalidProof)
	}

	eqProof, err := ctx.EqualityProofFromJSON(bp.Equality)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidProof, err)
	}
	if !ctx.VerifyEqualityProof(ownerPk, newCt, &rangeProof.Commitment, eqProof) {
		return fmt.Errorf("%w: balance equality proof failed", types.ErrInvalidProof)
	}

	return nil
}

// VerifyRingTransaction checks a ring-variant transaction's ciphertext
// well-formedness and its linear ring signature over the borrowed
// anonymity set.
func VerifyRingTransaction(ctx *zkp.CryptoContext, tx *types.RingData) error {
	ct, err := ctx.CiphertextFromJSON(tx.EncryptedAmount)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidTransaction, err)
	}
	if !ct.IsWellFormed() {
		return fmt.Errorf("%w: malformed ciphertext", types.ErrInvalidProof)
	}

	members := make([]*bn254.G1Affine, len(tx.RingMembers))
	for i, pj := range tx.RingMembers {
		p, err := ctx.FromJSON(pj)
		if err != nil {
			return fmt.Errorf("%w: %v", types.ErrInvalidProof, err)
		}
		members[i] = &p
	}

	sig, err := ring.SignatureFromJSON(tx.RingSignature)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidProof, err)
	}
	message, err := ringSigningMessage(tx)
	if err != nil {
		return err
	}
	if !ring.Verify(ctx, message, members, sig) {
		return fmt.Errorf("%w: ring signature verification failed", types.ErrInvalidProof)
	}

	return nil
}
