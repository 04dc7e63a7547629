// Veil Daemon - Main entry point for the confidential-transaction node
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ccoin/veil/internal/chain"
	"github.com/ccoin/veil/internal/mempool"
	"github.com/ccoin/veil/internal/state"
	"github.com/ccoin/veil/internal/wallet"
	"github.com/ccoin/veil/internal/zkp"
	"github.com/ccoin/veil/pkg/common"
	"github.com/ccoin/veil/pkg/types"
)

const (
	version = "0.1.0"
	banner  = `
 __   __    _ _
 \ \ / /__ (_) |
  \ V / _ \| | |
   \_/\___/|_|_|

  Veil Daemon v%s
  A confidential transaction ledger
`
)

func main() {
	difficulty := flag.Int("difficulty", chain.DefaultConfig().Difficulty, "proof-of-work difficulty (leading hex zeros)")
	stateFile := flag.String("state-file", "./veil-state.json", "snapshot file path")
	passphrase := flag.String("passphrase", "", "snapshot encryption passphrase (empty means plaintext)")
	scanInterval := flag.Duration("scan-interval", state.DefaultConfig().ScanInterval, "background mining/scan interval")
	flag.Parse()

	fmt.Printf(banner, version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cancel()
	}()

	if err := run(ctx, *difficulty, *stateFile, *passphrase, *scanInterval); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, difficulty int, stateFile, passphrase string, scanInterval time.Duration) error {
	fmt.Println("Initializing cryptographic context...")
	zctx, err := zkp.NewCryptoContext(zkp.CurveDefault)
	if err != nil {
		return fmt.Errorf("crypto context: %w", err)
	}

	chainCfg := chain.DefaultConfig()
	chainCfg.Difficulty = int(common.Clamp(uint64(difficulty), 1, 8))
	poolCfg := mempool.DefaultConfig()
	stateCfg := state.DefaultConfig()
	stateCfg.ScanInterval = scanInterval

	sm, err := state.New(stateCfg, chainCfg, poolCfg, zctx)
	if err != nil {
		return fmt.Errorf("state manager: %w", err)
	}

	if _, statErr := os.Stat(stateFile); statErr == nil {
		fmt.Printf("Loading snapshot from %s...\n", stateFile)
		if err := sm.LoadState(stateFile, passphrase); err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
	}

	alice, err := wallet.NewZKWallet(zctx, sm)
	if err != nil {
		return fmt.Errorf("create wallet: %w", err)
	}
	bob, err := wallet.NewZKWallet(zctx, sm)
	if err != nil {
		return fmt.Errorf("create wallet: %w", err)
	}
	fmt.Printf("Wallet alice: %s\n", alice.Address())
	fmt.Printf("Wallet bob:   %s\n", bob.Address())

	sm.AddListener("block_mined", func(data interface{}) {
		block, ok := data.(types.Block)
		if !ok {
			return
		}
		fmt.Printf("Block #%d mined: %d tx(s), hash %s\n", block.Index, len(block.Transactions), block.Hash)
	})

	sm.StartBackgroundScan(func() {
		if _, err := sm.MineBlock(alice.Address()); err != nil {
			fmt.Printf("mining pass failed: %v\n", err)
		}
	})
	defer sm.StopBackgroundScan()

	fmt.Println("Veil node started. Press Ctrl+C to stop.")
	<-ctx.Done()

	fmt.Printf("Saving snapshot to %s...\n", stateFile)
	if err := sm.SaveState(stateFile, passphrase); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	fmt.Println("Node stopped.")
	return nil
}
