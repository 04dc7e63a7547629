package wallet

import "testing"

// RingWallet has no coinbase path of its own (coinbase rewards are a plain
// address credit, not a stealth output), so tests seed a starting balance
// directly and exercise Send/ScanForTransactions from there.

func TestRingWalletSendAndReceiveEndToEnd(t *testing.T) {
	zctx, sm := newTestState(t)
	alice, err := NewRingWallet(zctx, sm)
	if err != nil {
		t.Fatal(err)
	}
	bob, err := NewRingWallet(zctx, sm)
	if err != nil {
		t.Fatal(err)
	}

	alice.mu.Lock()
	alice.balance = 100
	alice.mu.Unlock()

	if err := alice.Send(bob, 40, DefaultRingSize); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if alice.Balance() != 60 {
		t.Fatalf("expected alice balance 60 after send, got %d", alice.Balance())
	}

	bob.ScanForTransactions()
	if bob.Balance() != 40 {
		t.Fatalf("expected bob balance 40 after scan, got %d", bob.Balance())
	}

	history := bob.History()
	if len(history) != 1 || history[0].Direction != "received" || history[0].Amount != 40 {
		t.Fatalf("unexpected bob history: %+v", history)
	}
}

func TestRingWalletSendInsufficientFunds(t *testing.T) {
	zctx, sm := newTestState(t)
	alice, err := NewRingWallet(zctx, sm)
	if err != nil {
		t.Fatal(err)
	}
	bob, err := NewRingWallet(zctx, sm)
	if err != nil {
		t.Fatal(err)
	}

	if err := alice.Send(bob, 10, DefaultRingSize); err == nil {
		t.Fatal("expected send to fail with a zero balance")
	}
}

func TestRingWalletRescanDoesNotDoubleCredit(t *testing.T) {
	zctx, sm := newTestState(t)
	alice, err := NewRingWallet(zctx, sm)
	if err != nil {
		t.Fatal(err)
	}
	bob, err := NewRingWallet(zctx, sm)
	if err != nil {
		t.Fatal(err)
	}
	alice.mu.Lock()
	alice.balance = 50
	alice.mu.Unlock()

	if err := alice.Send(bob, 20, DefaultRingSize); err != nil {
		t.Fatal(err)
	}

	bob.ScanForTransactions()
	bob.ScanForTransactions()
	if bob.Balance() != 20 {
		t.Fatalf("expected rescans to be idempotent, got balance %d", bob.Balance())
	}
}

func TestRingWalletOutsiderCannotRecoverStealthOutput(t *testing.T) {
	zctx, sm := newTestState(t)
	alice, err := NewRingWallet(zctx, sm)
	if err != nil {
		t.Fatal(err)
	}
	bob, err := NewRingWallet(zctx, sm)
	if err != nil {
		t.Fatal(err)
	}
	outsider, err := NewRingWallet(zctx, sm)
	if err != nil {
		t.Fatal(err)
	}
	alice.mu.Lock()
	alice.balance = 50
	alice.mu.Unlock()

	if err := alice.Send(bob, 20, DefaultRingSize); err != nil {
		t.Fatal(err)
	}

	outsider.ScanForTransactions()
	if outsider.Balance() != 0 {
		t.Fatalf("expected outsider to recover nothing, got balance %d", outsider.Balance())
	}
}
