package merkle

import (
	"testing"

	"github.com/ccoin/veil/pkg/types"
)

func coinbaseTx(miner string, amount uint64, ts float64) types.Transaction {
	return types.Transaction{
		Kind: types.TxKindCoinbase,
		Coinbase: &types.CoinbaseData{
			SenderAddress:    "COINBASE",
			RecipientAddress: miner,
			Amount:           amount,
			Timestamp:        ts,
			TxID:             types.ComputeCoinbaseTxID(miner, ts),
		},
	}
}

func TestBuildEmptyTreeRoot(t *testing.T) {
	tree, err := Build(nil)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Root() != emptyHash {
		t.Fatalf("expected empty-tree root to be SHA-256(\"\"), got %s", tree.Root())
	}
}

func TestProofVerifiesForEveryTransaction(t *testing.T) {
	txs := []types.Transaction{
		coinbaseTx("alice", 1, 1.0),
		coinbaseTx("bob", 2, 2.0),
		coinbaseTx("carol", 3, 3.0),
	}
	tree, err := Build(txs)
	if err != nil {
		t.Fatal(err)
	}

	for i := range txs {
		proof, err := tree.Proof(&txs[i])
		if err != nil {
			t.Fatalf("tx %d: %v", i, err)
		}
		leafHash, err := hashTransaction(&txs[i])
		if err != nil {
			t.Fatal(err)
		}
		if !Verify(leafHash, proof, tree.Root()) {
			t.Fatalf("tx %d: inclusion proof failed to verify", i)
		}
	}
}

func TestProofMissingTransactionErrors(t *testing.T) {
	txs := []types.Transaction{coinbaseTx("alice", 1, 1.0)}
	tree, err := Build(txs)
	if err != nil {
		t.Fatal(err)
	}
	other := coinbaseTx("mallory", 99, 9.0)
	if _, err := tree.Proof(&other); err == nil {
		t.Fatal("expected proof generation for an absent transaction to fail")
	}
}

func TestVerifyDetectsTamperedLeaf(t *testing.T) {
	txs := []types.Transaction{
		coinbaseTx("alice", 1, 1.0),
		coinbaseTx("bob", 2, 2.0),
	}
	tree, err := Build(txs)
	if err != nil {
		t.Fatal(err)
	}
	proof, err := tree.Proof(&txs[0])
	if err != nil {
		t.Fatal(err)
	}

	tampered := coinbaseTx("alice", 999, 1.0)
	tamperedHash, err := hashTransaction(&tampered)
	if err != nil {
		t.Fatal(err)
	}
	if Verify(tamperedHash, proof, tree.Root()) {
		t.Fatal("expected tampered leaf to fail verification against the original proof")
	}
}

func TestOddLeafCountDuplicatesTrailingLeaf(t *testing.T) {
	txs := []types.Transaction{
		coinbaseTx("a", 1, 1.0),
		coinbaseTx("b", 2, 2.0),
		coinbaseTx("c", 3, 3.0),
	}
	tree, err := Build(txs)
	if err != nil {
		t.Fatal(err)
	}
	proof, err := tree.Proof(&txs[2])
	if err != nil {
		t.Fatal(err)
	}
	leafHash, err := hashTransaction(&txs[2])
	if err != nil {
		t.Fatal(err)
	}
	if !Verify(leafHash, proof, tree.Root()) {
		t.Fatal("expected the duplicated trailing leaf to still verify")
	}
}
