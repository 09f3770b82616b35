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

// Package utxoindex implements the slip hashmap: the authoritative
// spent-state map keyed by slip fingerprint.
//
// Index is not safe for concurrent use. Per spec.md §5, it is
// exclusively mutated by the reorganization engine while the
// blockchain holds it; observers must read it only before AddBlock
// starts or after it completes, never mid-reorganization.
package utxoindex

import "github.com/emberchain/core/transaction"

// Unspent is the sentinel value meaning "known and unspent". Any
// other stored value is a block id at which the slip was spent.
const Unspent int64 = -1

// Status classifies a lookup result.
type Status int

const (
	Absent Status = iota
	StatusUnspent
	StatusSpent
)

// Index is the in-memory spend-state map.
type Index struct {
	m map[string]int64
}

// New returns an empty Index.
func New() *Index {
	return &Index{m: make(map[string]int64)}
}

// InsertNew records every output slip of tx as unspent. Idempotent:
// calling it twice, or after the slip has since been spent, resets the
// entry back to unspent — matching spec.md §4.1's "overwrites existing
// -1 or the current spend height" semantics, which is relied on by
// the wind phase (insert_new runs immediately before spend).
func (idx *Index) InsertNew(tx *transaction.Transaction) {
	for _, s := range tx.To {
		idx.m[s.Fingerprint()] = Unspent
	}
}

// Spend marks every input slip of tx as spent at block bid. Must only
// be called in canonical-chain application order.
func (idx *Index) Spend(tx *transaction.Transaction, bid uint32) {
	for _, s := range tx.From {
		idx.m[s.Fingerprint()] = int64(bid)
	}
}

// Unspend reverses a transaction's effect: inputs return to unspent,
// and outputs are removed entirely since they cease to exist once the
// minting block is unwound.
func (idx *Index) Unspend(tx *transaction.Transaction) {
	for _, s := range tx.From {
		idx.m[s.Fingerprint()] = Unspent
	}
	for _, s := range tx.To {
		delete(idx.m, s.Fingerprint())
	}
}

// Lookup reports the spend status of a slip fingerprint and, when
// spent, the block id it was spent at.
func (idx *Index) Lookup(fingerprint string) (status Status, spentAt uint32) {
	v, ok := idx.m[fingerprint]
	if !ok {
		return Absent, 0
	}
	if v == Unspent {
		return StatusUnspent, 0
	}
	return StatusSpent, uint32(v)
}

// Len returns the number of tracked fingerprints, for metrics and
// tests.
func (idx *Index) Len() int { return len(idx.m) }

// Snapshot returns a defensive copy of the map, used by tests and by
// the "rebuild from scratch equals incremental result" round-trip
// property in spec.md §8.
func (idx *Index) Snapshot() map[string]int64 {
	out := make(map[string]int64, len(idx.m))
	for k, v := range idx.m {
		out[k] = v
	}
	return out
}
