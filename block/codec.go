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

package block

import (
	"github.com/emberchain/core/common"
	"github.com/emberchain/core/transaction"
)

// MarshalBinary writes the canonical on-disk encoding of the block
// body, matching the ".sai" format named in spec.md §6.
func (b *Block) MarshalBinary() []byte {
	e := common.NewEncoder()
	if b.IsValid {
		e.PutUint8(1)
	} else {
		e.PutUint8(0)
	}
	e.PutUint32(b.ID)
	e.PutUint64(b.Timestamp)
	e.PutBytes(b.PreviousHash[:])
	e.PutBytes(b.Creator[:])
	e.PutUint32(uint32(len(b.Transactions)))
	for _, tx := range b.Transactions {
		e.PutBytes(tx.MarshalBinary())
	}
	e.PutFloat64(b.BurnFee.Start)
	e.PutFloat64(b.BurnFee.Current)
	e.PutBytes(b.MerkleRoot[:])
	e.PutFloat64(b.Difficulty)
	e.PutFloat64(b.PaySplit)
	e.PutInt8(b.Vote)
	e.PutUint64(b.Treasury)
	e.PutUint64(b.Coinbase)
	e.PutUint64(b.Reclaimed)
	return e.Bytes()
}

// UnmarshalBinary decodes a block body previously produced by
// MarshalBinary.
func UnmarshalBinary(raw []byte) (*Block, error) {
	d := common.NewDecoder(raw)
	b := &Block{}

	valid, err := d.GetUint8()
	if err != nil {
		return nil, err
	}
	b.IsValid = valid == 1

	if b.ID, err = d.GetUint32(); err != nil {
		return nil, err
	}
	if b.Timestamp, err = d.GetUint64(); err != nil {
		return nil, err
	}
	prev, err := d.GetBytes()
	if err != nil {
		return nil, err
	}
	b.PreviousHash = common.BytesToHash(prev)
	creator, err := d.GetBytes()
	if err != nil {
		return nil, err
	}
	b.Creator = common.BytesToAddress(creator)

	nTx, err := d.GetUint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nTx; i++ {
		raw, err := d.GetBytes()
		if err != nil {
			return nil, err
		}
		tx, err := transaction.UnmarshalBinary(raw)
		if err != nil {
			return nil, err
		}
		b.Transactions = append(b.Transactions, tx)
	}

	if b.BurnFee.Start, err = d.GetFloat64(); err != nil {
		return nil, err
	}
	if b.BurnFee.Current, err = d.GetFloat64(); err != nil {
		return nil, err
	}
	merkle, err := d.GetBytes()
	if err != nil {
		return nil, err
	}
	b.MerkleRoot = common.BytesToHash(merkle)
	if b.Difficulty, err = d.GetFloat64(); err != nil {
		return nil, err
	}
	if b.PaySplit, err = d.GetFloat64(); err != nil {
		return nil, err
	}
	if b.Vote, err = d.GetInt8(); err != nil {
		return nil, err
	}
	if b.Treasury, err = d.GetUint64(); err != nil {
		return nil, err
	}
	if b.Coinbase, err = d.GetUint64(); err != nil {
		return nil, err
	}
	if b.Reclaimed, err = d.GetUint64(); err != nil {
		return nil, err
	}
	return b, nil
}
