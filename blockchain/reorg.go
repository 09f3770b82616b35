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

package blockchain

import (
	"github.com/emberchain/core/block"
	"github.com/emberchain/core/burnfee"
	"github.com/emberchain/core/common"
	"github.com/emberchain/core/crypto"
	"github.com/emberchain/core/utxoindex"
	"github.com/pkg/errors"
)

// applyReorg is the explicit work-stack reorganization engine: it
// replaces the source's mutually-recursive unwind/wind pair with two
// plain loops over plan.oldPositions and plan.newPositions, so a deep
// reorg costs stack-independent heap slices rather than call frames.
//
// The state machine is: UNWINDING -> WINDING -> SUCCESS, or on a
// winding failure, WINDING -> UNWINDING(partial) -> RESETTING ->
// failure returned to the caller. Every exit path leaves the utxo
// index and lc flags consistent with either the new tip or the
// pre-call tip; there is no state in which both branches are
// partially applied.
func (bc *Blockchain) applyReorg(plan reorgPlan, candidate *block.Block) error {
	candidateBsh := candidate.Bsh()

	// UNWINDING: reverse order, tip toward ancestor.
	for i := len(plan.oldPositions) - 1; i >= 0; i-- {
		pos := plan.oldPositions[i]
		blk, err := bc.loadBody(pos, candidateBsh, candidate)
		if err != nil {
			return newError(StorageFailed, err)
		}
		bc.unwindBlock(pos, blk)
	}

	var prevBlk *block.Block
	if plan.ancestorPos >= 0 {
		blk, err := bc.loadBody(plan.ancestorPos, candidateBsh, candidate)
		if err != nil {
			return newError(StorageFailed, err)
		}
		prevBlk = blk
	}

	// WINDING: forward order, ancestor toward new tip.
	for i, pos := range plan.newPositions {
		blk, err := bc.loadBody(pos, candidateBsh, candidate)
		if err != nil {
			return newError(StorageFailed, err)
		}
		if err := bc.validateBlock(blk, prevBlk); err != nil {
			bc.unwindApplied(plan.newPositions[:i], candidateBsh, candidate)
			if len(plan.oldPositions) > 0 {
				bc.rewindOldBranch(plan.oldPositions, candidateBsh, candidate)
			}
			return newError(ValidationFailed, err)
		}
		bc.windBlock(pos, blk)
		prevBlk = blk
	}
	return nil
}

func (bc *Blockchain) loadBody(pos int, candidateBsh common.Hash, candidate *block.Block) (*block.Block, error) {
	h := bc.entries[pos].header
	if h.Bsh == candidateBsh {
		return candidate, nil
	}
	return bc.storage.ReadBlock(h.Bsh)
}

func (bc *Blockchain) unwindBlock(pos int, blk *block.Block) {
	for _, tx := range blk.Transactions {
		bc.utxo.Unspend(tx)
		bc.notifyUnwind(tx)
	}
	e := bc.entries[pos]
	e.lc = false
	bc.entries[pos] = e
}

func (bc *Blockchain) windBlock(pos int, blk *block.Block) {
	for _, tx := range blk.Transactions {
		bc.utxo.InsertNew(tx)
		bc.utxo.Spend(tx, blk.ID)
		bc.notifyWind(tx)
	}
	e := bc.entries[pos]
	e.lc = true
	bc.entries[pos] = e
}

// unwindApplied rolls back the subset of the new branch that was
// already wound before a later block in the same branch failed
// validation.
func (bc *Blockchain) unwindApplied(positions []int, candidateBsh common.Hash, candidate *block.Block) {
	for i := len(positions) - 1; i >= 0; i-- {
		pos := positions[i]
		blk, err := bc.loadBody(pos, candidateBsh, candidate)
		if err != nil {
			logger.Crit("storage failure during rollback unwind, utxo state may be inconsistent", "err", err)
			continue
		}
		bc.unwindBlock(pos, blk)
	}
}

// rewindOldBranch reapplies the previously-canonical branch (the
// RESETTING state): forward order, ancestor toward its own tip.
func (bc *Blockchain) rewindOldBranch(positions []int, candidateBsh common.Hash, candidate *block.Block) {
	for _, pos := range positions {
		blk, err := bc.loadBody(pos, candidateBsh, candidate)
		if err != nil {
			logger.Crit("storage failure resetting to prior branch, utxo state may be inconsistent", "err", err)
			continue
		}
		bc.windBlock(pos, blk)
	}
}

// validateBlock checks utxo-level, signature, and arithmetic
// correctness of blk in the current utxo context, with prev providing
// the previous canonical block's monetary state (nil for a genesis
// candidate).
func (bc *Blockchain) validateBlock(blk *block.Block, prev *block.Block) error {
	spentWithinBlock := make(map[string]bool)
	for _, tx := range blk.Transactions {
		for _, in := range tx.From {
			fp := in.Fingerprint()
			if spentWithinBlock[fp] {
				return errors.Errorf("slip %x double-spent within block %d", in.Address, blk.ID)
			}
			status, _ := bc.utxo.Lookup(fp)
			known := status == utxoindex.StatusUnspent
			if !known {
				return errors.Errorf("slip %x is not unspent (status=%d)", in.Address, status)
			}
			pub, err := crypto.ParseAddress(in.Address)
			if err != nil {
				return errors.Wrapf(err, "slip %x: parse owner address", in.Address)
			}
			if !crypto.Verify(pub, tx.SignatureBody(), tx.Signature) {
				return errors.Errorf("transaction %d: signature does not match input owner %x", tx.ID, in.Address)
			}
			spentWithinBlock[fp] = true
		}
		// an input-less transaction mints new value (a reward or
		// genesis-style payout) and is exempt from the balance check;
		// any transaction with inputs must balance.
		if len(tx.From) > 0 && tx.InputSum() < tx.OutputSum() {
			return errors.Errorf("transaction %d: outputs exceed inputs", tx.ID)
		}
	}

	if prev == nil {
		return nil
	}

	wantCoinbase, err := block.NextCoinbase(prev.Treasury, prev.Reclaimed)
	if err != nil {
		return errors.Wrap(err, "coinbase computation")
	}
	if blk.Coinbase != wantCoinbase {
		return errors.Errorf("coinbase mismatch: got %d, want %d", blk.Coinbase, wantCoinbase)
	}
	wantTreasury, err := block.NextTreasury(prev.Treasury, prev.Reclaimed, wantCoinbase)
	if err != nil {
		return errors.Wrap(err, "treasury computation")
	}
	if blk.Treasury != wantTreasury {
		return errors.Errorf("treasury mismatch: got %d, want %d", blk.Treasury, wantTreasury)
	}
	wantBF := burnfee.Adjust(prev.BurnFee.Start, prev.Timestamp, blk.Timestamp, bc.heartbeat)
	if blk.BurnFee.Start != wantBF.Start {
		return errors.Errorf("burn-fee start mismatch: got %v, want %v", blk.BurnFee.Start, wantBF.Start)
	}
	return nil
}
