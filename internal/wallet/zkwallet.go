package wallet

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ccoin/veil/internal/state"
	"github.com/ccoin/veil/internal/zkp"
	"github.com/ccoin/veil/pkg/common"
	"github.com/ccoin/veil/pkg/types"
)

// HistoryEntry records one completed send or receive against a wallet's
// locally tracked balance.
type HistoryEntry struct {
	TxID      string
	Direction string
	Amount    uint64
	Timestamp float64
}

// ZKWallet holds a discrete-log keypair and scans the chain for transfers
// addressed to it, maintaining a local balance, transaction history, and
// processed-tx_id cache. Its confidential balance ciphertext is tracked
// only in wallet memory between sends — the chain itself never learns a
// wallet's running balance, only the proofs each send attaches.
type ZKWallet struct {
	ctx  *zkp.CryptoContext
	sm   *state.Manager
	keys *zkp.Keypair

	address string

	mu        sync.Mutex
	balance   uint64
	history   []HistoryEntry
	processed *processedSet

	balanceCiphertext *zkp.Ciphertext
	balanceRandomness *big.Int
}

// NewZKWallet generates a fresh keypair, derives its address, and registers
// a block_mined listener so the wallet rescans automatically after every
// mined block. The rescan is dispatched in its own goroutine rather than
// run inline: the listener fires synchronously under the state manager's
// lock, and ScanForTransactions takes the wallet's own lock, so running it
// inline would invert lock order against Send (which takes the wallet lock
// first and may call back into the manager).
func NewZKWallet(ctx *zkp.CryptoContext, sm *state.Manager) (*ZKWallet, error) {
	keys, err := ctx.KeyGen()
	if err != nil {
		return nil, err
	}
	pkJSON := ctx.ToJSON(&keys.PublicKey)
	w := &ZKWallet{
		ctx:       ctx,
		sm:        sm,
		keys:      keys,
		address:   fmt.Sprintf("%s:%s", pkJSON.X, pkJSON.Y),
		processed: newProcessedSet(),
	}
	sm.AddListener("block_mined", func(interface{}) { go w.ScanForTransactions() })
	return w, nil
}

// Address returns the wallet's "x:y" public address.
func (w *ZKWallet) Address() string { return w.address }

// Balance returns the wallet's locally tracked balance.
func (w *ZKWallet) Balance() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// History returns a copy of the wallet's transaction history.
func (w *ZKWallet) History() []HistoryEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]HistoryEntry, len(w.history))
	copy(out, w.history)
	return out
}

func nowSeconds() float64 {
	return float64(common.NowNano()) / 1e9
}

// Send builds a confidential transfer of amount to recipient: an amount
// ciphertext under the recipient's key, a range+equality proof over it, an
// optional balance-continuity proof linking the wallet's running balance
// ciphertext, and a Schnorr signature over every other field. The built
// transaction is self-verified before submission — a wallet never submits
// a transaction it cannot itself verify.
func (w *ZKWallet) Send(recipient *ZKWallet, amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("%w: amount must be positive", types.ErrInvalidInput)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if amount > w.balance {
		return fmt.Errorf("%w: balance %d, requested %d", types.ErrInsufficientFunds, w.balance, amount)
	}

	amountBig := new(big.Int).SetUint64(amount)
	maxAmount := w.ctx.ValueTableMax() - 1

	k, err := zkp.RandomScalar()
	if err != nil {
		return err
	}
	ct, err := w.ctx.Encrypt(amountBig, &recipient.keys.PublicKey, k)
	if err != nil {
		return err
	}

	commitment, blinder, err := w.ctx.CommitRandom(amountBig)
	if err != nil {
		return err
	}

	rangeProof, err := w.ctx.CreateRangeProof(amountBig, 0, maxAmount, commitment, blinder)
	if err != nil {
		return err
	}

	eqProof, err := w.ctx.CreateEqualityProof(amountBig, k, blinder, &recipient.keys.PublicKey, ct, commitment)
	if err != nil {
		return err
	}

	amountProof := types.AmountProofJSON{
		Range:    w.ctx.RangeProofToJSON(rangeProof),
		Equality: w.ctx.EqualityProofToJSON(eqProof),
	}

	balanceProof, newBalanceCiphertext, newBalanceRandomness, err := w.buildBalanceProof(amountBig, maxAmount)
	if err != nil {
		return err
	}

	timestamp := nowSeconds()
	txID := types.ComputeTxID(w.address, recipient.address, timestamp)

	zk := &types.ZKData{
		SenderAddress:    w.address,
		RecipientAddress: recipient.address,
		Ciphertext:       w.ctx.CiphertextToJSON(ct),
		AmountProof:      amountProof,
		BalanceProof:     balanceProof,
		Timestamp:        timestamp,
		TxID:             txID,
	}

	message, err := zkSigningMessage(zk)
	if err != nil {
		return err
	}
	sig, err := w.ctx.Sign(w.keys.SecretKey, &w.keys.PublicKey, message)
	if err != nil {
		return err
	}
	zk.Signature = w.ctx.SignatureToJSON(sig)

	if err := VerifyZKTransaction(w.ctx, zk); err != nil {
		return fmt.Errorf("refusing to submit unverifiable transaction: %w", err)
	}

	tx := types.Transaction{Kind: types.TxKindZK, ZK: zk}
	if !w.sm.AddTransaction(tx) {
		return fmt.Errorf("%w: mempool rejected transaction", types.ErrInvalidTransaction)
	}

	w.balance -= amount
	w.balanceCiphertext = newBalanceCiphertext
	w.balanceRandomness = newBalanceRandomness
	w.history = append(w.history, HistoryEntry{TxID: txID, Direction: "sent", Amount: amount, Timestamp: timestamp})
	w.processed.Add(txID)

	return nil
}

// buildBalanceProof links the wallet's previously tracked balance
// ciphertext (or, on a wallet's first send, a freshly self-encrypted one)
// to a new ciphertext for (balance - amount) via a subtraction proof, plus
// a range proof on the new balance and an equality proof tying it to the
// new ciphertext.
func (w *ZKWallet) buildBalanceProof(amountBig *big.Int, maxAmount uint64) (*types.BalanceProofJSON, *zkp.Ciphertext, *big.Int, error) {
	priorCiphertext := w.balanceCiphertext
	priorRandomness := w.balanceRandomness
	if priorCiphertext == nil {
		priorBig := new(big.Int).SetUint64(w.balance)
		pk, err := zkp.RandomScalar()
		if err != nil {
			return nil, nil, nil, err
		}
		priorCiphertext, err = w.ctx.Encrypt(priorBig, &w.keys.PublicKey, pk)
		if err != nil {
			return nil, nil, nil, err
		}
		priorRandomness = pk
	}

	ak, err := zkp.RandomScalar()
	if err != nil {
		return nil, nil, nil, err
	}
	amtCiphertext, err := w.ctx.Encrypt(amountBig, &w.keys.PublicKey, ak)
	if err != nil {
		return nil, nil, nil, err
	}

	newCiphertext := priorCiphertext.HomomorphicSub(amtCiphertext)
	newRandomness := w.ctx.ScalarSub(priorRandomness, ak)

	newBalanceBig := new(big.Int).Sub(new(big.Int).SetUint64(w.balance), amountBig)
	newCommitment, newBlinder, err := w.ctx.CommitRandom(newBalanceBig)
	if err != nil {
		return nil, nil, nil, err
	}

	rangeProof, err := w.ctx.CreateRangeProof(newBalanceBig, 0, maxAmount, newCommitment, newBlinder)
	if err != nil {
		return nil, nil, nil, err
	}

	eqProof, err := w.ctx.CreateEqualityProof(newBalanceBig, newRandomness, newBlinder, &w.keys.PublicKey, newCiphertext, newCommitment)
	if err != nil {
		return nil, nil, nil, err
	}

	subProof := w.ctx.CreateSubtractionProof(priorCiphertext, amtCiphertext, newCiphertext)

	bp := &types.BalanceProofJSON{
		PriorCiphertext:  w.ctx.CiphertextToJSON(priorCiphertext),
		AmountCiphertext: w.ctx.CiphertextToJSON(amtCiphertext),
		NewCiphertext:    w.ctx.CiphertextToJSON(newCiphertext),
		Range:            w.ctx.RangeProofToJSON(rangeProof),
		Equality:         w.ctx.EqualityProofToJSON(eqProof),
		Subtraction:      subProof.ToJSON(),
	}

	return bp, newCiphertext, newRandomness, nil
}

// ScanForTransactions pulls every transaction addressed to this wallet,
// skips ones already processed, verifies ZK transfers (coinbase rewards
// are credited from their plaintext amount without a proof check), and
// credits the recovered amount to the local balance.
func (w *ZKWallet) ScanForTransactions() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, tx := range w.sm.ScanForAddress(w.address) {
		if tx.RecipientAddress() != w.address {
			continue
		}
		txID := tx.ID()
		if !w.processed.Add(txID) {
			continue
		}

		switch tx.Kind {
		case types.TxKindCoinbase:
			w.balance += tx.Coinbase.Amount
			w.history = append(w.history, HistoryEntry{
				TxID: txID, Direction: "received", Amount: tx.Coinbase.Amount, Timestamp: tx.Coinbase.Timestamp,
			})
		case types.TxKindZK:
			if err := VerifyZKTransaction(w.ctx, tx.ZK); err != nil {
				continue
			}
			ct, err := w.ctx.CiphertextFromJSON(tx.ZK.Ciphertext)
			if err != nil {
				continue
			}
			amount, ok := w.ctx.DecryptAndLookup(ct, w.keys.SecretKey)
			if !ok {
				continue
			}
			w.balance += amount
			w.history = append(w.history, HistoryEntry{
				TxID: txID, Direction: "received", Amount: amount, Timestamp: tx.ZK.Timestamp,
			})
		}
	}
}
