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

// Package blockchain implements the chain index, fork choice, and
// reorganization engine: the component that decides which branch is
// canonical and drives the utxo index's wind/unwind transitions
// across every tip change.
//
// Blockchain is not safe for concurrent use. Per the single-writer
// rule, AddBlock is driven exclusively by the owning consensus
// goroutine; observers must read the utxo index only before AddBlock
// starts or after it returns.
package blockchain

import (
	"fmt"

	"github.com/emberchain/core/block"
	"github.com/emberchain/core/common"
	"github.com/emberchain/core/log"
	"github.com/emberchain/core/slip"
	"github.com/emberchain/core/transaction"
	"github.com/emberchain/core/utxoindex"
	metrics "github.com/rcrowley/go-metrics"
)

var logger = log.NewModuleLogger(log.ModuleBlockchain)

var (
	gaugeChainHeight = metrics.NewRegisteredGauge("blockchain/chain_height", nil)
	gaugeReorgDepth  = metrics.NewRegisteredGauge("blockchain/reorg_depth", nil)
)

// Storage is the persistence contract the blockchain consumes. A
// write is assumed atomic at block granularity.
type Storage interface {
	WriteBlock(blk *block.Block) error
	ReadBlock(bsh common.Hash) (*block.Block, error)
}

// WalletSink receives slip deltas for the locally-watched address on
// every tip change, in either direction.
type WalletSink interface {
	AddSlip(s slip.Slip)
	RemoveSlip(s slip.Slip)
}

// Hooks are the observable signals the blockchain raises toward the
// network and lottery collaborators. It performs no I/O itself.
type Hooks interface {
	RequestBlock(bsh common.Hash)
	AnnounceTip(h block.Header)
	SubmitBlock(h block.Header)
}

type entry struct {
	header block.Header
	lc     bool
}

// Blockchain is the chain index plus the utxo index it drives.
type Blockchain struct {
	entries  []entry
	posByBsh map[common.Hash]int

	tipPos int // -1 when empty

	genesisTs     uint64
	genesisBid    uint32
	genesisPeriod uint32
	heartbeat     uint64

	lowestAcceptableTs  uint64
	lowestAcceptableBsh common.Hash
	lowestAcceptableBid uint32

	lastBsh common.Hash
	lastTs  uint64
	lastBid uint32

	utxo    *utxoindex.Index
	storage Storage
	hooks   Hooks
	wallet  WalletSink

	watchAddr common.Address
}

// Config seeds the genesis parameters and collaborators.
type Config struct {
	GenesisTs     uint64
	GenesisBid    uint32
	GenesisPeriod uint32
	Heartbeat     uint64
	Storage       Storage
	Hooks         Hooks
	Wallet        WalletSink
	WatchAddr     common.Address
}

// New returns an empty Blockchain ready to accept its genesis block.
func New(cfg Config) *Blockchain {
	return &Blockchain{
		posByBsh:      make(map[common.Hash]int),
		tipPos:        -1,
		genesisTs:     cfg.GenesisTs,
		genesisBid:    cfg.GenesisBid,
		genesisPeriod: cfg.GenesisPeriod,
		heartbeat:     cfg.Heartbeat,
		utxo:          utxoindex.New(),
		storage:       cfg.Storage,
		hooks:         cfg.Hooks,
		wallet:        cfg.Wallet,
		watchAddr:     cfg.WatchAddr,
	}
}

// Utxo exposes the live utxo index for read access between AddBlock
// calls; callers must not mutate it.
func (bc *Blockchain) Utxo() *utxoindex.Index { return bc.utxo }

// Tip returns the current canonical tip header and whether one
// exists.
func (bc *Blockchain) Tip() (block.Header, bool) {
	if bc.tipPos < 0 {
		return block.Header{}, false
	}
	return bc.entries[bc.tipPos].header, true
}

// Height returns the number of headers ever indexed, on every branch.
func (bc *Blockchain) Height() int { return len(bc.entries) }

// LongestChainFlag reports the bsh -> longest-chain-flag mapping for
// bsh, false if bsh is unknown.
func (bc *Blockchain) LongestChainFlag(bsh common.Hash) bool {
	pos, ok := bc.posByBsh[bsh]
	if !ok {
		return false
	}
	return bc.entries[pos].lc
}

// AddBlock is the central operation: admission, indexing, fork
// choice, and (if the tip moves) reorganization.
func (bc *Blockchain) AddBlock(blk *block.Block, force bool) error {
	// Phase A: admission checks.
	if !blk.IsValid {
		return newError(AdmissionRejected, fmt.Errorf("block.IsValid is false"))
	}
	bsh := blk.Bsh()
	if !force {
		if blk.Timestamp < bc.genesisTs || blk.ID < bc.genesisBid {
			return newError(AdmissionRejected, fmt.Errorf("block %d predates genesis", blk.ID))
		}
	}
	if _, exists := bc.posByBsh[bsh]; exists {
		logger.Debug("duplicate block ignored", "bsh", bsh.String())
		return nil
	}

	// Phase B: boundary bookkeeping.
	if !force {
		if bc.lowestAcceptableTs == 0 {
			bc.lowestAcceptableTs = blk.Timestamp
			bc.lowestAcceptableBsh = bsh
			bc.lowestAcceptableBid = blk.ID
		} else if blk.Timestamp < bc.lowestAcceptableTs {
			bc.lowestAcceptableTs = blk.Timestamp
		}
	}
	previousKnown := blk.PreviousHash.IsZero()
	if !previousKnown {
		_, previousKnown = bc.posByBsh[blk.PreviousHash]
	}
	if !previousKnown {
		tipID := bc.genesisBid
		if bc.tipPos >= 0 {
			tipID = bc.entries[bc.tipPos].header.ID
		}
		if blk.ID >= tipID && blk.ID-tipID <= bc.genesisPeriod {
			bc.hooks.RequestBlock(blk.PreviousHash)
		}
	}

	// Phase C: index the header.
	pos := len(bc.entries)
	bc.entries = append(bc.entries, entry{header: blk.Header()})
	bc.posByBsh[bsh] = pos
	gaugeChainHeight.Update(int64(len(bc.entries)))

	// Phase D: fork choice.
	plan, adopt := bc.decidePlan(pos, blk)
	if !adopt {
		logger.Debug("block indexed off-chain", "bsh", bsh.String(), "id", blk.ID)
		return nil
	}

	gaugeReorgDepth.Update(int64(len(plan.oldPositions)))
	if err := bc.applyReorg(plan, blk); err != nil {
		return err
	}

	bc.tipPos = pos
	tip := bc.entries[pos]
	tip.lc = true
	bc.entries[pos] = tip
	bc.lastBsh, bc.lastTs, bc.lastBid = bsh, blk.Timestamp, blk.ID

	if err := bc.storage.WriteBlock(blk); err != nil {
		return newError(StorageFailed, err)
	}
	bc.hooks.AnnounceTip(tip.header)
	bc.hooks.SubmitBlock(tip.header)
	logger.Info("tip advanced", "id", blk.ID, "bsh", bsh.String())
	return nil
}

type reorgPlan struct {
	ancestorPos  int // -1 for bootstrap (no ancestor)
	oldPositions []int
	newPositions []int
}

// decidePlan implements Phase D (cases D1-D4 of the fork-choice
// description): fast paths for bootstrap and simple extension, a
// unified weighted ancestor search otherwise. Late blocks (D4) are
// folded into the same ancestor-search policy as out-of-order
// reorganizations (D3); both ultimately ask "is the candidate branch
// longer, or equal length and heavier" which is the same question.
func (bc *Blockchain) decidePlan(pos int, blk *block.Block) (reorgPlan, bool) {
	if bc.tipPos == -1 {
		if bc.lastBid == 0 || blk.PreviousHash == bc.lastBsh {
			return reorgPlan{ancestorPos: -1, newPositions: []int{pos}}, true
		}
		return reorgPlan{}, false
	}

	tip := bc.entries[bc.tipPos].header
	if blk.ID >= tip.ID && blk.PreviousHash == tip.Bsh {
		return reorgPlan{ancestorPos: bc.tipPos, newPositions: []int{pos}}, true
	}

	ancestorPos, oldPositions, newPositions, found := bc.ancestorSearch(bc.tipPos, pos)
	if !found {
		return reorgPlan{}, false
	}
	newLen, oldLen := len(newPositions), len(oldPositions)
	newWork, oldWork := bc.branchWork(newPositions), bc.branchWork(oldPositions)
	switch {
	case newLen > oldLen && newWork >= oldWork:
		return reorgPlan{ancestorPos, oldPositions, newPositions}, true
	case newLen == oldLen && newWork > oldWork:
		return reorgPlan{ancestorPos, oldPositions, newPositions}, true
	default:
		return reorgPlan{}, false
	}
}

// ancestorSearch walks two cursors backward from oldTipPos and
// newTipPos, stepping whichever currently points at the later
// timestamp, following each entry's own previous-hash pointer rather
// than array order (entries are insertion-ordered, not chain-ordered).
// It stops at a common position (ancestor found) or when a cursor's
// previous hash is not indexed (disconnected).
func (bc *Blockchain) ancestorSearch(oldTipPos, newTipPos int) (ancestorPos int, oldPositions, newPositions []int, found bool) {
	cursorOld, cursorNew := oldTipPos, newTipPos
	for cursorOld != cursorNew {
		tsOld := bc.entries[cursorOld].header.Timestamp
		tsNew := bc.entries[cursorNew].header.Timestamp
		if tsOld >= tsNew {
			oldPositions = append(oldPositions, cursorOld)
			prev, ok := bc.prevPos(cursorOld)
			if !ok {
				return 0, nil, nil, false
			}
			cursorOld = prev
		} else {
			newPositions = append(newPositions, cursorNew)
			prev, ok := bc.prevPos(cursorNew)
			if !ok {
				return 0, nil, nil, false
			}
			cursorNew = prev
		}
	}
	reverse(oldPositions)
	reverse(newPositions)
	return cursorOld, oldPositions, newPositions, true
}

func (bc *Blockchain) prevPos(pos int) (int, bool) {
	prevBsh := bc.entries[pos].header.PreviousBsh
	if prevBsh.IsZero() {
		return 0, false
	}
	p, ok := bc.posByBsh[prevBsh]
	return p, ok
}

func (bc *Blockchain) branchWork(positions []int) float64 {
	var total float64
	for _, pos := range positions {
		total += bc.entries[pos].header.BurnFeeStart
	}
	return total
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// notifyWind reports the slip deltas a forward application of tx
// causes for the watched address: its inputs become spent (removed
// from the wallet's spendable set) and its outputs become spendable
// (added).
func (bc *Blockchain) notifyWind(tx *transaction.Transaction) {
	if bc.wallet == nil {
		return
	}
	for _, s := range tx.From {
		if s.Address == bc.watchAddr {
			bc.wallet.RemoveSlip(s)
		}
	}
	for _, s := range tx.To {
		if s.Address == bc.watchAddr {
			bc.wallet.AddSlip(s)
		}
	}
}

// notifyUnwind reports the inverse deltas when tx's containing block
// is undone: its inputs become unspent again (added back) and its
// outputs cease to exist (removed).
func (bc *Blockchain) notifyUnwind(tx *transaction.Transaction) {
	if bc.wallet == nil {
		return
	}
	for _, s := range tx.From {
		if s.Address == bc.watchAddr {
			bc.wallet.AddSlip(s)
		}
	}
	for _, s := range tx.To {
		if s.Address == bc.watchAddr {
			bc.wallet.RemoveSlip(s)
		}
	}
}

