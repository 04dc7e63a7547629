package wallet

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/ccoin/veil/internal/ring"
	"github.com/ccoin/veil/internal/state"
	"github.com/ccoin/veil/internal/zkp"
	"github.com/ccoin/veil/pkg/types"
)

// stealthAddressPrefix tags a ring transaction's recipient_address as a
// one-time stealth destination. The static "ring:..." wallet address never
// appears on-chain; only the holder of view_sk can link P back to spend_pk.
const stealthAddressPrefix = "stealth:"

// DefaultRingSize is the anonymity-set size a RingWallet borrows from the
// state manager's public-key registry when none is specified.
const DefaultRingSize = 5

// RingWallet holds a dual view/spend keypair and scans the chain for
// stealth outputs addressed to it via RecoverStealthAddress, maintaining a
// local balance, transaction history, and processed-tx_id cache.
type RingWallet struct {
	ctx       *zkp.CryptoContext
	sm        *state.Manager
	viewKeys  *zkp.Keypair
	spendKeys *zkp.Keypair

	address string

	mu        sync.Mutex
	balance   uint64
	history   []HistoryEntry
	processed *processedSet
}

// NewRingWallet generates a fresh view/spend keypair, derives its address,
// registers the spend key in the anonymity-set registry, and subscribes to
// block_mined to rescan automatically. The rescan runs in its own goroutine:
// the listener fires synchronously under the state manager's lock, while
// ScanForTransactions and Send both take the wallet's own lock first, so
// running the rescan inline would invert lock order against a concurrent
// Send.
func NewRingWallet(ctx *zkp.CryptoContext, sm *state.Manager) (*RingWallet, error) {
	viewKeys, err := ctx.KeyGen()
	if err != nil {
		return nil, err
	}
	spendKeys, err := ctx.KeyGen()
	if err != nil {
		return nil, err
	}

	viewJSON := ctx.ToJSON(&viewKeys.PublicKey)
	spendJSON := ctx.ToJSON(&spendKeys.PublicKey)

	w := &RingWallet{
		ctx:       ctx,
		sm:        sm,
		viewKeys:  viewKeys,
		spendKeys: spendKeys,
		address:   fmt.Sprintf("ring:%s:%s:%s:%s", viewJSON.X, viewJSON.Y, spendJSON.X, spendJSON.Y),
		processed: newProcessedSet(),
	}
	sm.RegisterPublicKey(spendKeys.PublicKey)
	sm.AddListener("block_mined", func(interface{}) { go w.ScanForTransactions() })
	return w, nil
}

// Address returns the wallet's "ring:view.x:view.y:spend.x:spend.y" address.
func (w *RingWallet) Address() string { return w.address }

// Balance returns the wallet's locally tracked balance.
func (w *RingWallet) Balance() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// History returns a copy of the wallet's transaction history.
func (w *RingWallet) History() []HistoryEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]HistoryEntry, len(w.history))
	copy(out, w.history)
	return out
}

// Send generates a one-time stealth destination for recipient, encrypts
// amount under the recipient's view public key, borrows ringSize-1 decoy
// public keys from the state
// manager's registry, and signs over the full ring with a linear ring
// signature hiding which member produced it.
func (w *RingWallet) Send(recipient *RingWallet, amount uint64, ringSize int) error {
	if amount == 0 {
		return fmt.Errorf("%w: amount must be positive", types.ErrInvalidInput)
	}
	if ringSize < 1 {
		ringSize = DefaultRingSize
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if amount > w.balance {
		return fmt.Errorf("%w: balance %d, requested %d", types.ErrInsufficientFunds, w.balance, amount)
	}

	R, P, err := ring.GenerateStealthAddress(w.ctx, &recipient.viewKeys.PublicKey, &recipient.spendKeys.PublicKey)
	if err != nil {
		return err
	}
	pJSON := w.ctx.ToJSON(&P)

	amountBig := new(big.Int).SetUint64(amount)
	k, err := zkp.RandomScalar()
	if err != nil {
		return err
	}
	ct, err := w.ctx.Encrypt(amountBig, &recipient.viewKeys.PublicKey, k)
	if err != nil {
		return err
	}

	decoys, err := w.sm.GetRandomPublicKeys(ringSize-1, []bn254.G1Affine{w.spendKeys.PublicKey})
	if err != nil {
		return err
	}
	members := append([]bn254.G1Affine{}, decoys...)
	signerIndex := randIntn(len(members) + 1)
	members = insertAt(members, signerIndex, w.spendKeys.PublicKey)

	memberPtrs := make([]*bn254.G1Affine, len(members))
	ringMembersJSON := make([]zkp.PointJSON, len(members))
	for i := range members {
		memberPtrs[i] = &members[i]
		ringMembersJSON[i] = w.ctx.ToJSON(&members[i])
	}

	timestamp := nowSeconds()
	txID := types.ComputeTxID(w.address, recipient.address, timestamp)

	rd := &types.RingData{
		SenderSpendKey:   w.ctx.ToJSON(&w.spendKeys.PublicKey),
		StealthR:         w.ctx.ToJSON(&R),
		StealthP:         pJSON,
		EncryptedAmount:  w.ctx.CiphertextToJSON(ct),
		RingMembers:      ringMembersJSON,
		SenderAddress:    w.address,
		RecipientAddress: stealthAddressPrefix + pJSON.X + ":" + pJSON.Y,
		Timestamp:        timestamp,
		TxID:             txID,
	}

	message, err := ringSigningMessage(rd)
	if err != nil {
		return err
	}
	sig, err := ring.Sign(w.ctx, message, signerIndex, memberPtrs, w.spendKeys.SecretKey)
	if err != nil {
		return err
	}
	rd.RingSignature = sig.ToJSON()

	if err := VerifyRingTransaction(w.ctx, rd); err != nil {
		return fmt.Errorf("refusing to submit unverifiable transaction: %w", err)
	}

	tx := types.Transaction{Kind: types.TxKindRing, Ring: rd}
	if !w.sm.AddTransaction(tx) {
		return fmt.Errorf("%w: mempool rejected transaction", types.ErrInvalidTransaction)
	}

	w.balance -= amount
	w.history = append(w.history, HistoryEntry{TxID: txID, Direction: "sent", Amount: amount, Timestamp: timestamp})
	w.processed.Add(txID)

	return nil
}

// ScanForTransactions pulls every ring-variant transaction addressed to
// this wallet, confirms ownership of the stealth output, verifies the ring
// signature, and decrypts the amount with the wallet's view secret key.
func (w *RingWallet) ScanForTransactions() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, tx := range w.sm.GetAllTransactions() {
		if tx.Kind != types.TxKindRing {
			continue
		}
		rd := tx.Ring
		if !strings.HasPrefix(rd.RecipientAddress, stealthAddressPrefix) {
			continue
		}
		if w.processed.Contains(rd.TxID) {
			continue
		}

		R, err := w.ctx.FromJSON(rd.StealthR)
		if err != nil {
			continue
		}
		P, err := w.ctx.FromJSON(rd.StealthP)
		if err != nil {
			continue
		}
		if !ring.RecoverStealthAddress(w.ctx, R, P, w.viewKeys.SecretKey, &w.spendKeys.PublicKey) {
			continue
		}
		if !w.processed.Add(rd.TxID) {
			continue
		}
		if err := VerifyRingTransaction(w.ctx, rd); err != nil {
			continue
		}

		ct, err := w.ctx.CiphertextFromJSON(rd.EncryptedAmount)
		if err != nil {
			continue
		}
		amount, ok := w.ctx.DecryptAndLookup(ct, w.viewKeys.SecretKey)
		if !ok {
			continue
		}

		w.balance += amount
		w.history = append(w.history, HistoryEntry{
			TxID: rd.TxID, Direction: "received", Amount: amount, Timestamp: rd.Timestamp,
		})
	}
}

func insertAt(s []bn254.G1Affine, idx int, v bn254.G1Affine) []bn254.G1Affine {
	s = append(s, bn254.G1Affine{})
	copy(s[idx+1:], s[idx:])
	s[idx] = v
	return s
}

func randIntn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
