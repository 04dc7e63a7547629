package state

import (
	"sync"
	"testing"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/ccoin/veil/internal/chain"
	"github.com/ccoin/veil/internal/mempool"
	"github.com/ccoin/veil/internal/zkp"
	"github.com/ccoin/veil/pkg/types"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	zctx, err := zkp.NewCryptoContext(zkp.CurveDefault)
	if err != nil {
		t.Fatal(err)
	}
	m, err := New(DefaultConfig(), chain.Config{Difficulty: 1}, mempool.DefaultConfig(), zctx)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func coinbaseTx(miner string, ts float64) types.Transaction {
	return types.Transaction{
		Kind: types.TxKindCoinbase,
		Coinbase: &types.CoinbaseData{
			SenderAddress:    "COINBASE",
			RecipientAddress: miner,
			Amount:           1,
			Timestamp:        ts,
			TxID:             types.ComputeCoinbaseTxID(miner, ts),
		},
	}
}

func TestAddTransactionAddsToMempool(t *testing.T) {
	m := newTestManager(t)
	if !m.AddTransaction(coinbaseTx("alice", 1.0)) {
		t.Fatal("expected AddTransaction to succeed")
	}
	if len(m.PendingTransactions()) != 1 {
		t.Fatal("expected 1 pending transaction")
	}
}

func TestMineBlockDrainsMempoolAndFiresListener(t *testing.T) {
	m := newTestManager(t)
	m.AddTransaction(coinbaseTx("prefunded", 1.0))

	var fired types.Block
	var called bool
	m.AddListener("block_mined", func(data interface{}) {
		called = true
		fired = data.(types.Block)
	})

	block, err := m.MineBlock("miner")
	if err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatal("expected block_mined listener to fire")
	}
	if fired.Index != block.Index {
		t.Fatal("listener did not receive the mined block")
	}
	if len(m.PendingTransactions()) != 0 {
		t.Fatal("expected mempool to be drained after mining")
	}
	if len(block.Transactions) != 2 {
		t.Fatalf("expected prefunded tx + coinbase, got %d", len(block.Transactions))
	}
}

func TestListenerPanicIsRecovered(t *testing.T) {
	m := newTestManager(t)
	m.AddListener("block_mined", func(interface{}) { panic("boom") })
	if _, err := m.MineBlock("miner"); err != nil {
		t.Fatalf("expected MineBlock to succeed despite a panicking listener: %v", err)
	}
}

func TestScanForAddressAndFindTransaction(t *testing.T) {
	m := newTestManager(t)
	block, err := m.MineBlock("alice")
	if err != nil {
		t.Fatal(err)
	}
	matches := m.ScanForAddress("alice")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	txID := block.Transactions[0].ID()
	_, _, valid, found := m.FindTransaction(txID)
	if !found || !valid {
		t.Fatal("expected mined coinbase tx to be found with a valid Merkle proof")
	}
}

func TestRegisterPublicKeyDeduplicates(t *testing.T) {
	m := newTestManager(t)
	kp, err := m.ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	m.RegisterPublicKey(kp.PublicKey)
	m.RegisterPublicKey(kp.PublicKey)
	if len(m.pubKeys) != 1 {
		t.Fatalf("expected dedup to keep registry at 1, got %d", len(m.pubKeys))
	}
}

func TestGetRandomPublicKeysBackfillsEphemeralKeys(t *testing.T) {
	m := newTestManager(t)
	kp, err := m.ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	m.RegisterPublicKey(kp.PublicKey)

	keys, err := m.GetRandomPublicKeys(4, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 4 {
		t.Fatalf("expected 4 keys (1 registered + 3 backfilled), got %d", len(keys))
	}
}

func TestGetRandomPublicKeysExcludesGivenKeys(t *testing.T) {
	m := newTestManager(t)
	kp1, err := m.ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	kp2, err := m.ctx.KeyGen()
	if err != nil {
		t.Fatal(err)
	}
	m.RegisterPublicKey(kp1.PublicKey)
	m.RegisterPublicKey(kp2.PublicKey)

	keys, err := m.GetRandomPublicKeys(1, []bn254.G1Affine{kp1.PublicKey})
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected 1 key, got %d", len(keys))
	}
	if keys[0].Equal(&kp1.PublicKey) {
		t.Fatal("expected excluded key to never be sampled")
	}
}

func TestStartStopBackgroundScan(t *testing.T) {
	m := newTestManager(t)
	var mu sync.Mutex
	ticks := 0
	m.StartBackgroundScan(func() {
		mu.Lock()
		ticks++
		mu.Unlock()
	})
	m.StartBackgroundScan(func() {}) // second call must be a no-op

	time.Sleep(50 * time.Millisecond)
	m.StopBackgroundScan()

	mu.Lock()
	defer mu.Unlock()
	_ = ticks // scanner may or may not have ticked in 50ms at a 10s interval; just confirm no panic/deadlock
}

func TestStopBackgroundScanWithoutStartIsSafe(t *testing.T) {
	m := newTestManager(t)
	m.StopBackgroundScan()
}
