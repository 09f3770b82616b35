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

package storage

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/emberchain/core/block"
	"github.com/emberchain/core/common"
	"github.com/emberchain/core/slip"
	"github.com/emberchain/core/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	dir, err := ioutil.TempDir("", "filestore_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	fs, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(fs.Close)
	return fs
}

func sampleBlock(id uint32) *block.Block {
	addr := common.Address{0x01}
	tx := transaction.New(transaction.Normal)
	tx.To = []slip.Slip{{Address: addr, Amount: 1000, OriginBlockID: id}}
	blk := block.New(addr, common.Hash{})
	blk.ID = id
	blk.Timestamp = uint64(id) * 1000
	blk.IsValid = true
	blk.SetTransactions([]*transaction.Transaction{tx})
	return blk
}

func TestWriteReadRoundTrip(t *testing.T) {
	fs := newTestStore(t)
	blk := sampleBlock(1)

	require.NoError(t, fs.WriteBlock(blk))
	assert.True(t, fs.Has(blk.Bsh()))

	got, err := fs.ReadBlock(blk.Bsh())
	require.NoError(t, err)
	assert.Equal(t, blk.ID, got.ID)
	assert.Equal(t, blk.Timestamp, got.Timestamp)
	assert.Equal(t, blk.Bsh(), got.Bsh())
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, blk.Transactions[0].To[0].Amount, got.Transactions[0].To[0].Amount)
}

func TestReadBlockByID(t *testing.T) {
	fs := newTestStore(t)
	blk := sampleBlock(7)
	require.NoError(t, fs.WriteBlock(blk))

	got, err := fs.ReadBlockByID(7)
	require.NoError(t, err)
	assert.Equal(t, blk.Bsh(), got.Bsh())
}

func TestReadUnknownBshFails(t *testing.T) {
	fs := newTestStore(t)
	_, err := fs.ReadBlock(common.Hash{0xFF})
	assert.Error(t, err)
	assert.False(t, fs.Has(common.Hash{0xFF}))
}

func TestReadBlockServesFromCacheAfterFileRemoved(t *testing.T) {
	fs := newTestStore(t)
	blk := sampleBlock(3)
	require.NoError(t, fs.WriteBlock(blk))

	name, err := fs.index.Get(bshKey(blk.Bsh()))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(fs.dir, string(name))))

	got, err := fs.ReadBlock(blk.Bsh())
	require.NoError(t, err)
	assert.Equal(t, blk.ID, got.ID)
}
