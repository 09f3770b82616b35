// Copyright 2026 The emberchain Authors
// This file is part of the emberchain library.
//
// The emberchain library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The emberchain library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the emberchain library. If not, see <http://www.gnu.org/licenses/>.

// Command emberd wires the consensus engine to a config file and runs
// it until interrupted. It has no RPC or CLI surface: a node-identity
// keypair, data directory, and genesis parameters are the only inputs,
// all read from the config document (non-goals: gossip transport,
// JSON-RPC, a shell console).
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emberchain/core/config"
	"github.com/emberchain/core/consensus"
	"github.com/emberchain/core/crypto"
	"github.com/emberchain/core/log"
	"github.com/emberchain/core/storage"
	"github.com/emberchain/core/wallet"
)

var logger = log.NewModuleLogger(log.ModuleCmd)

func main() {
	defer log.Sync()

	path := "config.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.Load(path)
	if err != nil {
		logger.Warn("no config found, writing a fresh one", "path", path, "err", err)
		cfg, err = freshConfig(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	engine, store, err := wireEngine(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer store.Close()

	engine.Start()
	defer engine.Stop()
	logger.Info("emberd started", "storage_dir", cfg.Chain.StorageDir)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case sig := <-sigs:
			logger.Info("shutting down", "signal", sig.String())
			return
		case err := <-engine.Halted():
			logger.Crit("engine halted, exiting", "err", err)
			return
		}
	}
}

// freshConfig generates a keypair and writes a default config document
// to path, for a node's first run.
func freshConfig(path string) (*config.Config, error) {
	priv, _, err := crypto.GenerateKeys()
	if err != nil {
		return nil, fmt.Errorf("emberd: generate keypair: %w", err)
	}
	cfg := config.Default()
	cfg.Wallet.PrivateKey = fmt.Sprintf("%x", priv.Serialize())
	cfg.Chain.GenesisTs = uint64(1)
	cfg.Chain.GenesisBid = 1
	if err := cfg.WriteTo(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func wireEngine(cfg *config.Config) (*consensus.Engine, *storage.FileStore, error) {
	keyBytes, err := cfg.Wallet.PrivateKeyBytes()
	if err != nil {
		return nil, nil, err
	}
	priv, pub := crypto.ParsePrivateKey(keyBytes)
	addr := crypto.CompressedAddress(pub)
	w := wallet.New(priv, pub)
	for _, s := range cfg.Wallet.Outputs {
		w.AddSlip(s)
	}

	store, err := storage.Open(cfg.Chain.StorageDir)
	if err != nil {
		return nil, nil, fmt.Errorf("emberd: open storage: %w", err)
	}

	engine := consensus.NewEngine(consensus.Config{
		GenesisTs:     cfg.Chain.GenesisTs,
		GenesisBid:    cfg.Chain.GenesisBid,
		GenesisPeriod: cfg.Chain.GenesisPeriod,
		Heartbeat:     time.Duration(cfg.Chain.HeartbeatMillis) * time.Millisecond,
		Storage:       store,
		Wallet:        w,
		WatchAddr:     addr,
		Creator:       addr,
		MaxPending:    1024,
		InboxSize:     256,
	})
	return engine, store, nil
}
