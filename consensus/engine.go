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

package consensus

import (
	"sync"
	"time"

	"github.com/emberchain/core/block"
	"github.com/emberchain/core/blockchain"
	"github.com/emberchain/core/common"
	"github.com/emberchain/core/log"
	"github.com/emberchain/core/mempool"
	"github.com/emberchain/core/slip"
	"github.com/emberchain/core/transaction"
)

var logger = log.NewModuleLogger(log.ModuleConsensus)

// inbound is the sum type fed through Engine's bounded channel: either
// a block arriving from the network or a transaction arriving for the
// mempool. The engine goroutine blocks only on this channel, on the
// heartbeat ticker, and in the storage reads and writes that AddBlock
// and tryBundle make; Halted() is written without blocking.
type inbound interface{ isInbound() }

// IncomingBlock is a candidate block plus the admission-bypass flag
// AddBlock forwards unchanged to blockchain.AddBlock.
type IncomingBlock struct {
	Block *block.Block
	Force bool
}

// IncomingTransaction is a transaction handed to the mempool.
type IncomingTransaction struct {
	Tx *transaction.Transaction
}

func (IncomingBlock) isInbound()       {}
func (IncomingTransaction) isInbound() {}

// deltaWallet wraps a Wallet to accumulate the AddSlip/RemoveSlip
// calls one AddBlock makes, so the engine can emit a single WalletDelta
// per processed block instead of one event per slip.
type deltaWallet struct {
	inner          Wallet
	added, removed []slip.Slip
}

func (d *deltaWallet) AddSlip(s slip.Slip) {
	d.inner.AddSlip(s)
	d.added = append(d.added, s)
}

func (d *deltaWallet) RemoveSlip(s slip.Slip) {
	d.inner.RemoveSlip(s)
	d.removed = append(d.removed, s)
}

func (d *deltaWallet) drain() WalletDelta {
	delta := WalletDelta{Added: d.added, Removed: d.removed}
	d.added, d.removed = nil, nil
	return delta
}

// Config wires an Engine's collaborators and genesis parameters.
type Config struct {
	GenesisTs     uint64
	GenesisBid    uint32
	GenesisPeriod uint32
	Heartbeat     time.Duration

	Storage   Storage
	Wallet    Wallet
	Lottery   Lottery
	Network   Network
	WatchAddr common.Address

	Creator    common.Address
	MaxPending int
	InboxSize  int
}

// Engine owns the blockchain and mempool exclusively: every mutation
// happens on its single goroutine, started by Start and fed by
// SubmitBlock/SubmitTransaction. A StorageFailed error halts the loop
// and is surfaced on Halted rather than panicking, so the host process
// decides how to recover.
type Engine struct {
	chain   *blockchain.Blockchain
	pool    *mempool.Mempool
	wallet  *deltaWallet
	storage Storage
	lottery Lottery
	network Network
	creator common.Address

	heartbeat time.Duration
	deltas    chan WalletDelta

	inbox  chan inbound
	halted chan error
	quit   chan struct{}
	wg     sync.WaitGroup
}

// NewEngine constructs an Engine. Call Start to begin processing.
func NewEngine(cfg Config) *Engine {
	dw := &deltaWallet{inner: cfg.Wallet}
	e := &Engine{
		pool:      mempool.New(cfg.MaxPending),
		wallet:    dw,
		storage:   cfg.Storage,
		lottery:   cfg.Lottery,
		network:   cfg.Network,
		creator:   cfg.Creator,
		heartbeat: cfg.Heartbeat,
		deltas:    make(chan WalletDelta, 16),
		inbox:     make(chan inbound, cfg.InboxSize),
		halted:    make(chan error, 1),
		quit:      make(chan struct{}),
	}
	e.chain = blockchain.New(blockchain.Config{
		GenesisTs:     cfg.GenesisTs,
		GenesisBid:    cfg.GenesisBid,
		GenesisPeriod: cfg.GenesisPeriod,
		Heartbeat:     uint64(cfg.Heartbeat / time.Millisecond),
		Storage:       cfg.Storage,
		Hooks:         engineHooks{e},
		Wallet:        dw,
		WatchAddr:     cfg.WatchAddr,
	})
	return e
}

// engineHooks adapts Engine to blockchain.Hooks without colliding
// with Engine's own public SubmitBlock (the inbound-enqueue API) and
// blockchain.Hooks' SubmitBlock (the lottery-notification callback) —
// two unrelated operations the source happens to name the same.
type engineHooks struct{ e *Engine }

func (h engineHooks) RequestBlock(bsh common.Hash) {
	if h.e.network != nil {
		h.e.network.RequestBlock(bsh)
	}
}

func (h engineHooks) AnnounceTip(hd block.Header) {
	if h.e.network != nil {
		h.e.network.AnnounceTip(hd)
	}
}

func (h engineHooks) SubmitBlock(hd block.Header) {
	if h.e.lottery != nil {
		h.e.lottery.SubmitBlock(hd)
	}
}

// Start launches the engine's single processing goroutine.
func (e *Engine) Start() {
	e.wg.Add(1)
	go e.run()
}

// Stop signals the processing goroutine to exit and waits for it.
func (e *Engine) Stop() {
	close(e.quit)
	e.wg.Wait()
}

// Halted delivers the fatal error that stopped the engine, if any. A
// reader should treat a value here as the end of this Engine's useful
// life.
func (e *Engine) Halted() <-chan error { return e.halted }

// WalletDeltas delivers one event per AddBlock call that changed the
// watched address's spendable set.
func (e *Engine) WalletDeltas() <-chan WalletDelta { return e.deltas }

// SubmitBlock enqueues a candidate block for processing, returning
// false if the inbound channel is full (back-pressure; the caller
// should retry or drop per its own policy).
func (e *Engine) SubmitBlock(blk *block.Block, force bool) bool {
	select {
	case e.inbox <- IncomingBlock{Block: blk, Force: force}:
		return true
	default:
		return false
	}
}

// SubmitTransaction enqueues a transaction for the mempool.
func (e *Engine) SubmitTransaction(tx *transaction.Transaction) bool {
	select {
	case e.inbox <- IncomingTransaction{Tx: tx}:
		return true
	default:
		return false
	}
}

// Tip exposes the current canonical tip for read-only callers, safe to
// call from any goroutine between AddBlock calls (see blockchain's own
// single-writer caveat).
func (e *Engine) Tip() (block.Header, bool) { return e.chain.Tip() }

func (e *Engine) run() {
	defer e.wg.Done()
	ticker := time.NewTicker(e.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-e.quit:
			return
		case msg := <-e.inbox:
			if !e.handle(msg) {
				return
			}
		case <-ticker.C:
			if !e.tryBundle() {
				return
			}
		}
	}
}

func (e *Engine) handle(msg inbound) bool {
	switch m := msg.(type) {
	case IncomingBlock:
		return e.addBlock(m.Block, m.Force)
	case IncomingTransaction:
		e.pool.AddTransaction(m.Tx)
	}
	return true
}

func (e *Engine) addBlock(blk *block.Block, force bool) bool {
	if err := e.chain.AddBlock(blk, force); err != nil {
		// a failed call's unwind/rewind notifications net to nothing;
		// discard them so they are not reported with the next block.
		e.wallet.drain()
		if blockchain.IsReason(err, blockchain.StorageFailed) {
			e.halt(err)
			return false
		}
		logger.Warn("block rejected", "err", err)
		return true
	}
	if delta := e.wallet.drain(); len(delta.Added) > 0 || len(delta.Removed) > 0 {
		select {
		case e.deltas <- delta:
		default:
			logger.Warn("wallet delta channel full, dropping event")
		}
	}
	return true
}

func (e *Engine) tryBundle() bool {
	now := nowMillis()
	tip, ok := e.chain.Tip()
	var prev *mempool.PrevHeader
	if ok {
		body, err := e.storage.ReadBlock(tip.Bsh)
		if err != nil {
			e.halt(err)
			return false
		}
		prev = &mempool.PrevHeader{
			ID:         body.ID,
			Bsh:        body.Bsh(),
			Timestamp:  body.Timestamp,
			BurnFee:    body.BurnFee,
			Difficulty: body.Difficulty,
			PaySplit:   body.PaySplit,
			Treasury:   body.Treasury,
			Coinbase:   body.Coinbase,
			Reclaimed:  body.Reclaimed,
		}
	}
	if !e.pool.CanBundle(prev, now) {
		return true
	}
	blk, err := e.pool.Bundle(e.creator, prev, now)
	if err != nil {
		logger.Error("bundle failed", "err", err)
		return true
	}
	return e.addBlock(blk, false)
}

func (e *Engine) halt(err error) {
	logger.Crit("engine halted", "err", err)
	select {
	case e.halted <- err:
	default:
	}
}

func nowMillis() uint64 {
	return uint64(time.Now().UnixNano() / int64(time.Millisecond))
}
