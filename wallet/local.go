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

// Package wallet tracks the local address's spendable slips, updated
// by the consensus engine on every tip change and read by anything
// that needs a balance or a spendable set (fee estimation, a future
// send-transaction path).
package wallet

import (
	"sync"

	"github.com/emberchain/core/crypto"
	"github.com/emberchain/core/log"
	"github.com/emberchain/core/slip"
)

var logger = log.NewModuleLogger(log.ModuleWallet)

// Local is an in-memory slip set guarded by a RWMutex: the consensus
// engine is the sole writer (AddSlip/RemoveSlip as blocks are wound
// and unwound, including rollback after a failed reorg), while any
// number of readers may call Balance/Slips concurrently.
type Local struct {
	mu    sync.RWMutex
	slips map[string]slip.Slip
	priv  *crypto.PrivateKey
	pub   *crypto.PublicKey
}

// New returns an empty wallet bound to the given keypair.
func New(priv *crypto.PrivateKey, pub *crypto.PublicKey) *Local {
	return &Local{slips: make(map[string]slip.Slip), priv: priv, pub: pub}
}

// PublicKey identifies the address this wallet watches, satisfying
// the consensus.Wallet contract.
func (w *Local) PublicKey() *crypto.PublicKey { return w.pub }

// PrivateKey is needed by a future send-transaction path to sign
// spends of this wallet's slips; not exercised by consensus itself.
func (w *Local) PrivateKey() *crypto.PrivateKey { return w.priv }

// AddSlip records s as spendable. Called once per watched output on
// every block wound onto the canonical chain, including re-winds
// during a reorg.
func (w *Local) AddSlip(s slip.Slip) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.slips[s.Fingerprint()] = s
	logger.Debug("slip added", "amount", s.Amount, "origin_block", s.OriginBlockID)
}

// RemoveSlip drops s from the spendable set, whether because it was
// spent going forward or because its containing block was unwound.
func (w *Local) RemoveSlip(s slip.Slip) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fp := s.Fingerprint()
	if _, ok := w.slips[fp]; !ok {
		return
	}
	delete(w.slips, fp)
	logger.Debug("slip removed", "amount", s.Amount, "origin_block", s.OriginBlockID)
}

// Balance sums the amount of every currently spendable slip.
func (w *Local) Balance() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var total uint64
	for _, s := range w.slips {
		total += s.Amount
	}
	return total
}

// Slips returns a snapshot of the spendable set. The returned slice is
// a copy; mutating it does not affect the wallet.
func (w *Local) Slips() []slip.Slip {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]slip.Slip, 0, len(w.slips))
	for _, s := range w.slips {
		out = append(out, s)
	}
	return out
}

// Len reports the number of spendable slips currently held.
func (w *Local) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.slips)
}
