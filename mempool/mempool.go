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

// Package mempool accumulates pending transactions, decides when
// enough fee-work has accrued to mint a block, and assembles the
// successor block's monetary parameters.
package mempool

import (
	"sort"
	"sync"

	"github.com/emberchain/core/block"
	"github.com/emberchain/core/burnfee"
	"github.com/emberchain/core/common"
	"github.com/emberchain/core/goldenticket"
	"github.com/emberchain/core/log"
	"github.com/emberchain/core/params"
	"github.com/emberchain/core/transaction"
	"github.com/emberchain/core/utxoindex"
	metrics "github.com/rcrowley/go-metrics"
)

var logger = log.NewModuleLogger(log.ModuleMempool)

// InitialDifficulty, InitialPaySplit and InitialBurnFeeStart seed the
// genesis block's monetary parameters when there is no previous block
// to roll forward from.
const (
	InitialDifficulty   = 0.0
	InitialPaySplit     = 0.5
	InitialBurnFeeStart = 1_000_000.0
)

var (
	gaugeWorkAvailable = metrics.NewRegisteredGauge("mempool/work_available", nil)
	gaugePending       = metrics.NewRegisteredGauge("mempool/pending", nil)
)

// entry pairs a pending transaction with its contribution to
// work_available, so eviction under back-pressure can sort cheaply.
type entry struct {
	tx   *transaction.Transaction
	work uint64
}

// Mempool holds pending transactions awaiting bundling into a block.
type Mempool struct {
	mu            sync.Mutex
	pending       []entry
	workAvailable uint64
	maxPending    int
	heartbeat     uint64
}

// New returns an empty mempool. maxPending is the soft cap from
// spec.md §5 back-pressure; 0 means unbounded.
func New(maxPending int) *Mempool {
	return &Mempool{maxPending: maxPending, heartbeat: params.HeartbeatMillis}
}

// workAvailableFor is the fee-denominated work a single transaction
// contributes. The source treats this as a flat per-transaction
// contribution (spec.md §4.3); routed transactions are not currently
// discounted by path length.
func workAvailableFor(tx *transaction.Transaction) uint64 {
	in, out := tx.InputSum(), tx.OutputSum()
	if out >= in {
		return 0
	}
	return in - out
}

// AddTransaction appends tx to the pending set and updates
// work_available.
func (m *Mempool) AddTransaction(tx *transaction.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertLocked(tx)
	m.evictIfOverCapLocked()
}

func (m *Mempool) insertLocked(tx *transaction.Transaction) {
	w := workAvailableFor(tx)
	m.pending = append(m.pending, entry{tx: tx, work: w})
	m.workAvailable += w
	gaugeWorkAvailable.Update(int64(m.workAvailable))
	gaugePending.Update(int64(len(m.pending)))
}

// evictIfOverCapLocked drops the lowest-work-available transactions
// first once the soft cap is exceeded (spec.md §5 back-pressure).
func (m *Mempool) evictIfOverCapLocked() {
	if m.maxPending <= 0 || len(m.pending) <= m.maxPending {
		return
	}
	sort.SliceStable(m.pending, func(i, j int) bool {
		return m.pending[i].work < m.pending[j].work
	})
	excess := len(m.pending) - m.maxPending
	for i := 0; i < excess; i++ {
		m.workAvailable -= m.pending[i].work
	}
	m.pending = append([]entry{}, m.pending[excess:]...)
	gaugeWorkAvailable.Update(int64(m.workAvailable))
	gaugePending.Update(int64(len(m.pending)))
}

// RecoverTransaction reinserts a transaction whose containing block
// was unwound during a reorg, provided every input slip is still
// unspent in utxo. This is the supplemented behavior named in
// SPEC_FULL.md §4.3, restoring the original's unfinished "recovering
// transactions from previous blocks" intent.
func (m *Mempool) RecoverTransaction(tx *transaction.Transaction, utxo *utxoindex.Index) {
	for _, in := range tx.From {
		status, _ := utxo.Lookup(in.Fingerprint())
		if status != utxoindex.StatusUnspent {
			return
		}
	}
	m.AddTransaction(tx)
}

// PrevHeader is the minimal previous-block context the mempool needs
// to decide bundling readiness and compute successor parameters.
type PrevHeader struct {
	ID         uint32
	Bsh        common.Hash
	Timestamp  uint64
	BurnFee    burnfee.BurnFee
	Difficulty float64
	PaySplit   float64
	Treasury   uint64
	Coinbase   uint64
	Reclaimed  uint64
}

// CanBundle reports whether there is enough accumulated work to mint
// a block right now. A nil prev means bootstrap: the very first block
// may always be minted once at least one transaction is pending.
func (m *Mempool) CanBundle(prev *PrevHeader, now uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return false
	}
	if prev == nil {
		return true
	}
	needed := burnfee.WorkNeeded(prev.Timestamp, now, prev.BurnFee.Start, m.heartbeat)
	return needed <= m.workAvailable
}

// Bundle atomically drains the pending set into a new candidate block
// seeded from prev, computing the successor's burn-fee, difficulty,
// paysplit, treasury and coinbase. The returned block's Reclaimed
// field is left zero; no package in this module computes reclaimed
// funds, so it stays zero once the block is added.
func (m *Mempool) Bundle(creator common.Address, prev *PrevHeader, now uint64) (*block.Block, error) {
	m.mu.Lock()
	txs := make([]*transaction.Transaction, len(m.pending))
	for i, e := range m.pending {
		txs[i] = e.tx
	}
	m.pending = nil
	m.workAvailable = 0
	gaugeWorkAvailable.Update(0)
	gaugePending.Update(0)
	m.mu.Unlock()

	var (
		id                   uint32 = 1
		previousHash         common.Hash
		difficulty, paysplit        = InitialDifficulty, InitialPaySplit
		bf                          = burnfee.BurnFee{Start: InitialBurnFeeStart}
		treasury, coinbase   uint64
	)

	if prev != nil {
		id = prev.ID + 1
		previousHash = prev.Bsh
		difficulty = prev.Difficulty
		paysplit = prev.PaySplit
		bf = burnfee.Adjust(prev.BurnFee.Start, prev.Timestamp, now, m.heartbeat)

		nextCoinbase, err := block.NextCoinbase(prev.Treasury, prev.Reclaimed)
		if err != nil {
			return nil, err
		}
		nextTreasury, err := block.NextTreasury(prev.Treasury, prev.Reclaimed, nextCoinbase)
		if err != nil {
			return nil, err
		}
		coinbase = nextCoinbase
		treasury = nextTreasury
	} else {
		treasury = params.TreasuryInitial
	}

	vote, found := scanGoldenTicketVote(txs)
	if found {
		switch vote {
		case goldenticket.VoteUp:
			difficulty += 0.01
			paysplit += 0.01
		case goldenticket.VoteDown:
			difficulty -= 0.01
			paysplit -= 0.01
		}
	}

	blk := block.New(creator, previousHash)
	blk.ID = id
	blk.Timestamp = now
	blk.IsValid = true
	blk.BurnFee = bf
	blk.Difficulty = difficulty
	blk.PaySplit = paysplit
	blk.Treasury = treasury
	blk.Coinbase = coinbase
	blk.SetTransactions(txs)

	logger.Info("bundled block", "id", blk.ID, "txs", len(txs), "difficulty", difficulty, "paysplit", paysplit)
	return blk, nil
}

// scanGoldenTicketVote looks for a golden-ticket transaction among the
// bundled set and returns its vote. Only the first one found is
// honored, matching spec.md §4.3's "if present" singular framing.
func scanGoldenTicketVote(txs []*transaction.Transaction) (goldenticket.Vote, bool) {
	for _, tx := range txs {
		if tx.Type != transaction.GoldenTicket {
			continue
		}
		ticket, err := goldenticket.UnmarshalBinary(tx.Payload)
		if err != nil {
			logger.Warn("malformed golden ticket payload, ignoring", "err", err)
			continue
		}
		return ticket.Vote, true
	}
	return 0, false
}

// Len reports the number of pending transactions, for metrics and
// tests.
func (m *Mempool) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// WorkAvailable reports the current accumulated work, for tests.
func (m *Mempool) WorkAvailable() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.workAvailable
}
