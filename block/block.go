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

// Package block implements the block body, its derived header, the
// block signature hash (bsh), and the merkle root over transactions.
package block

import (
	"github.com/emberchain/core/burnfee"
	"github.com/emberchain/core/common"
	"github.com/emberchain/core/crypto"
	"github.com/emberchain/core/transaction"
)

// Block is the full body plus the validity flag the admission phase
// requires to be set; a block with IsValid false is rejected.
type Block struct {
	IsValid      bool
	ID           uint32
	Timestamp    uint64 // milliseconds since epoch
	PreviousHash common.Hash
	Creator      common.Address
	Transactions []*transaction.Transaction
	BurnFee      burnfee.BurnFee
	MerkleRoot   common.Hash
	Difficulty   float64
	PaySplit     float64
	Vote         int8 // -1, 0, +1
	Treasury     uint64
	Coinbase     uint64
	Reclaimed    uint64
}

// New returns a block seeded with the given creator and previous
// hash; callers fill in the remaining fields (mempool.Bundle does
// this for candidates).
func New(creator common.Address, previousHash common.Hash) *Block {
	return &Block{Creator: creator, PreviousHash: previousHash}
}

// Bsh is the block signature hash: SHA-256 over (id || timestamp ||
// creator), big-endian, deliberately excluding transactions so
// equivalent blocks with differently-ordered transactions still
// compare equal.
func (b *Block) Bsh() common.Hash {
	e := common.NewEncoder()
	e.PutUint32(b.ID)
	e.PutUint64(b.Timestamp)
	e.PutRaw(b.Creator[:])
	return crypto.Sha256(e.Bytes())
}

// MerkleRootOf computes the merkle root over a transaction list. A
// simple balanced binary tree over transaction hashes; the root
// commits to the set and order of transactions, separately from bsh.
func MerkleRootOf(txs []*transaction.Transaction) common.Hash {
	if len(txs) == 0 {
		return common.Hash{}
	}
	level := make([]common.Hash, len(txs))
	for i, tx := range txs {
		level[i] = tx.Hash()
	}
	for len(level) > 1 {
		var next []common.Hash
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, hashPair(level[i], level[i]))
			} else {
				next = append(next, hashPair(level[i], level[i+1]))
			}
		}
		level = next
	}
	return level[0]
}

func hashPair(a, b common.Hash) common.Hash {
	e := common.NewEncoder()
	e.PutRaw(a[:])
	e.PutRaw(b[:])
	return crypto.Sha256(e.Bytes())
}

// SetTransactions installs txs and recomputes the merkle root.
func (b *Block) SetTransactions(txs []*transaction.Transaction) {
	b.Transactions = txs
	b.MerkleRoot = MerkleRootOf(txs)
}

// Header projects the block down to its index-only representation.
func (b *Block) Header() Header {
	return Header{
		BurnFeeStart: b.BurnFee.Start,
		Bsh:          b.Bsh(),
		PreviousBsh:  b.PreviousHash,
		ID:           b.ID,
		Timestamp:    b.Timestamp,
	}
}

// Header is the chain index's projection of a block: everything fork
// choice and ancestor search need, without the transaction body. The
// full body is owned by the storage collaborator once committed.
type Header struct {
	BurnFeeStart float64
	Bsh          common.Hash
	PreviousBsh  common.Hash
	ID           uint32
	Timestamp    uint64
}
