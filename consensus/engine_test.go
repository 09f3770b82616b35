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
	"fmt"
	"testing"
	"time"

	"github.com/emberchain/core/block"
	"github.com/emberchain/core/common"
	"github.com/emberchain/core/crypto"
	"github.com/emberchain/core/params"
	"github.com/emberchain/core/slip"
	"github.com/emberchain/core/transaction"
	"github.com/emberchain/core/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStorage struct {
	blocks    map[common.Hash]*block.Block
	failWrite bool
	failRead  bool
}

func newMemStorage() *memStorage { return &memStorage{blocks: map[common.Hash]*block.Block{}} }

func (s *memStorage) WriteBlock(blk *block.Block) error {
	if s.failWrite {
		return fmt.Errorf("memStorage: forced write failure")
	}
	s.blocks[blk.Bsh()] = blk
	return nil
}

func (s *memStorage) ReadBlock(bsh common.Hash) (*block.Block, error) {
	if s.failRead {
		return nil, fmt.Errorf("memStorage: forced read failure")
	}
	blk, ok := s.blocks[bsh]
	if !ok {
		return nil, fmt.Errorf("memStorage: no block for %s", bsh)
	}
	return blk, nil
}

type recordingLottery struct{ submitted []block.Header }

func (l *recordingLottery) SubmitBlock(h block.Header) { l.submitted = append(l.submitted, h) }

type recordingNetwork struct {
	requested []common.Hash
	tips      []block.Header
}

func (n *recordingNetwork) RequestBlock(bsh common.Hash) { n.requested = append(n.requested, bsh) }
func (n *recordingNetwork) AnnounceTip(h block.Header)   { n.tips = append(n.tips, h) }

func genesisBlock(addr common.Address, amount uint64) *block.Block {
	tx := transaction.New(transaction.Normal)
	tx.To = []slip.Slip{{Address: addr, Amount: amount, OriginBlockID: 1}}
	blk := block.New(addr, common.Hash{})
	blk.ID = 1
	blk.Timestamp = 1
	blk.IsValid = true
	blk.Treasury = params.TreasuryInitial
	blk.SetTransactions([]*transaction.Transaction{tx})
	return blk
}

func TestSubmitBlockBackpressure(t *testing.T) {
	storage := newMemStorage()
	e := NewEngine(Config{
		GenesisPeriod: params.GenesisPeriod,
		Heartbeat:     time.Hour,
		Storage:       storage,
		InboxSize:     1,
		MaxPending:    10,
	})
	// Never started: nothing drains the inbox, so the second enqueue
	// must observe it full.
	blk := genesisBlock(common.Address{0x01}, 1000)
	assert.True(t, e.SubmitBlock(blk, false))
	assert.False(t, e.SubmitBlock(blk, false))
}

func TestSubmitTransactionBackpressure(t *testing.T) {
	storage := newMemStorage()
	e := NewEngine(Config{
		GenesisPeriod: params.GenesisPeriod,
		Heartbeat:     time.Hour,
		Storage:       storage,
		InboxSize:     1,
		MaxPending:    10,
	})
	tx := transaction.New(transaction.Normal)
	assert.True(t, e.SubmitTransaction(tx))
	assert.False(t, e.SubmitTransaction(tx))
}

func TestTryBundleOnHeartbeat(t *testing.T) {
	storage := newMemStorage()
	addr := common.Address{0x02}
	e := NewEngine(Config{
		GenesisPeriod: params.GenesisPeriod,
		Heartbeat:     10 * time.Millisecond,
		Storage:       storage,
		Creator:       addr,
		InboxSize:     8,
		MaxPending:    10,
	})
	e.Start()
	defer e.Stop()

	tx := transaction.New(transaction.Normal)
	tx.To = []slip.Slip{{Address: addr, Amount: 500}}
	require.True(t, e.SubmitTransaction(tx))

	deadline := time.After(2 * time.Second)
	for {
		if _, ok := e.Tip(); ok {
			return
		}
		select {
		case <-deadline:
			t.Fatal("heartbeat never bundled a block")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestHaltedOnStorageFailure(t *testing.T) {
	storage := newMemStorage()
	storage.failWrite = true
	e := NewEngine(Config{
		GenesisPeriod: params.GenesisPeriod,
		Heartbeat:     time.Hour,
		Storage:       storage,
		InboxSize:     4,
		MaxPending:    10,
	})
	e.Start()
	defer e.Stop()

	blk := genesisBlock(common.Address{0x03}, 1000)
	require.True(t, e.SubmitBlock(blk, false))

	select {
	case err := <-e.Halted():
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("engine never halted on storage failure")
	}
}

func TestWalletDeltaEmittedOnAddBlock(t *testing.T) {
	storage := newMemStorage()
	addr := common.Address{0x04}
	priv, pub, err := crypto.GenerateKeys()
	require.NoError(t, err)
	w := wallet.New(priv, pub)
	e := NewEngine(Config{
		GenesisPeriod: params.GenesisPeriod,
		Heartbeat:     time.Hour,
		Storage:       storage,
		Wallet:        w,
		WatchAddr:     addr,
		InboxSize:     4,
		MaxPending:    10,
	})
	e.Start()
	defer e.Stop()

	blk := genesisBlock(addr, 1000)
	require.True(t, e.SubmitBlock(blk, false))

	select {
	case delta := <-e.WalletDeltas():
		require.Len(t, delta.Added, 1)
		assert.Equal(t, uint64(1000), delta.Added[0].Amount)
	case <-time.After(2 * time.Second):
		t.Fatal("engine never emitted a wallet delta")
	}
}

func TestLotteryNotifiedOnTipAdvance(t *testing.T) {
	storage := newMemStorage()
	addr := common.Address{0x05}
	lottery := &recordingLottery{}
	e := NewEngine(Config{
		GenesisPeriod: params.GenesisPeriod,
		Heartbeat:     time.Hour,
		Storage:       storage,
		Lottery:       lottery,
		InboxSize:     4,
		MaxPending:    10,
	})
	e.Start()
	defer e.Stop()

	blk := genesisBlock(addr, 1000)
	require.True(t, e.SubmitBlock(blk, false))

	deadline := time.After(2 * time.Second)
	for {
		if len(lottery.submitted) > 0 {
			assert.Equal(t, blk.Bsh(), lottery.submitted[0].Bsh)
			return
		}
		select {
		case <-deadline:
			t.Fatal("lottery never notified of new tip")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestStartStopLifecycle(t *testing.T) {
	storage := newMemStorage()
	e := NewEngine(Config{
		GenesisPeriod: params.GenesisPeriod,
		Heartbeat:     time.Hour,
		Storage:       storage,
		InboxSize:     4,
		MaxPending:    10,
	})
	e.Start()
	e.Stop()
}
