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
	"fmt"
	"testing"

	"github.com/emberchain/core/block"
	"github.com/emberchain/core/burnfee"
	"github.com/emberchain/core/common"
	"github.com/emberchain/core/crypto"
	"github.com/emberchain/core/params"
	"github.com/emberchain/core/slip"
	"github.com/emberchain/core/transaction"
	"github.com/emberchain/core/utxoindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHeartbeat = 100_000

type memStorage struct{ blocks map[common.Hash]*block.Block }

func newMemStorage() *memStorage { return &memStorage{blocks: map[common.Hash]*block.Block{}} }

func (s *memStorage) WriteBlock(blk *block.Block) error {
	s.blocks[blk.Bsh()] = blk
	return nil
}

func (s *memStorage) ReadBlock(bsh common.Hash) (*block.Block, error) {
	blk, ok := s.blocks[bsh]
	if !ok {
		return nil, fmt.Errorf("memStorage: no block for %s", bsh)
	}
	return blk, nil
}

type recordingHooks struct {
	requested []common.Hash
	tips      []block.Header
}

func (h *recordingHooks) RequestBlock(bsh common.Hash)   { h.requested = append(h.requested, bsh) }
func (h *recordingHooks) AnnounceTip(hd block.Header)    { h.tips = append(h.tips, hd) }
func (h *recordingHooks) SubmitBlock(hd block.Header)    {}

type recordingWallet struct {
	added, removed []slip.Slip
}

func (w *recordingWallet) AddSlip(s slip.Slip)    { w.added = append(w.added, s) }
func (w *recordingWallet) RemoveSlip(s slip.Slip) { w.removed = append(w.removed, s) }

func newTestChain() (*Blockchain, *memStorage, *recordingHooks) {
	storage := newMemStorage()
	hooks := &recordingHooks{}
	bc := New(Config{
		GenesisTs:     1,
		GenesisBid:    1,
		GenesisPeriod: params.GenesisPeriod,
		Heartbeat:     testHeartbeat,
		Storage:       storage,
		Hooks:         hooks,
	})
	return bc, storage, hooks
}

// buildBlock mirrors mempool.Bundle's monetary-parameter computation
// so manually assembled test blocks pass validateBlock's arithmetic
// checks exactly as a real bundled block would.
func buildBlock(prev *block.Block, ts uint64, creator common.Address, txs []*transaction.Transaction) *block.Block {
	var previousHash common.Hash
	id := uint32(1)
	bf := burnfee.BurnFee{Start: 1_000_000}
	treasury := params.TreasuryInitial
	var coinbase uint64

	if prev != nil {
		previousHash = prev.Bsh()
		id = prev.ID + 1
		bf = burnfee.Adjust(prev.BurnFee.Start, prev.Timestamp, ts, testHeartbeat)
		coinbase, _ = block.NextCoinbase(prev.Treasury, prev.Reclaimed)
		treasury, _ = block.NextTreasury(prev.Treasury, prev.Reclaimed, coinbase)
	}

	blk := block.New(creator, previousHash)
	blk.ID = id
	blk.Timestamp = ts
	blk.IsValid = true
	blk.BurnFee = bf
	blk.Treasury = treasury
	blk.Coinbase = coinbase
	blk.SetTransactions(txs)
	return blk
}

// outputTx returns a pure-output transaction (no inputs); originBlockID
// records the block it is expected to be minted in, so tests can check
// it was carried through to the indexed slip.
func outputTx(addr common.Address, amount uint64, originBlockID uint32) *transaction.Transaction {
	tx := transaction.New(transaction.Normal)
	tx.To = []slip.Slip{{Address: addr, Amount: amount, OriginBlockID: originBlockID}}
	return tx
}

// spendTx returns a transaction spending in, signed by priv so it
// passes validateBlock's per-input signature check.
func spendTx(priv *crypto.PrivateKey, in slip.Slip, to []slip.Slip) *transaction.Transaction {
	tx := transaction.New(transaction.Normal)
	tx.From = []slip.Slip{in}
	tx.To = to
	tx.Signature = crypto.Sign(priv, tx.SignatureBody())
	return tx
}

func TestGenesisExtension(t *testing.T) {
	bc, storage, _ := newTestChain()
	addr := common.Address{0x01}
	tx := outputTx(addr, 200_000_000, 1)
	b1 := buildBlock(nil, 1, addr, []*transaction.Transaction{tx})

	require.NoError(t, bc.AddBlock(b1, false))

	tip, ok := bc.Tip()
	require.True(t, ok)
	assert.Equal(t, b1.Bsh(), tip.Bsh)
	// spending nothing, the slip stays unspent; its OriginBlockID
	// carries the block-id association the scenario describes.
	status, _ := bc.Utxo().Lookup(tx.To[0].Fingerprint())
	assert.Equal(t, utxoindex.StatusUnspent, status)
	assert.Equal(t, uint32(1), tx.To[0].OriginBlockID)
	_, err := storage.ReadBlock(b1.Bsh())
	assert.NoError(t, err)
}

func TestLinearFiveBlockChain(t *testing.T) {
	bc, _, _ := newTestChain()
	addr := common.Address{0x01}

	var prev *block.Block
	var blocks []*block.Block
	for i := uint32(1); i <= 5; i++ {
		tx := outputTx(addr, 10_000, i)
		blk := buildBlock(prev, uint64(i)*200_000, addr, []*transaction.Transaction{tx})
		require.NoError(t, bc.AddBlock(blk, false))
		blocks = append(blocks, blk)
		prev = blk
	}

	tip, ok := bc.Tip()
	require.True(t, ok)
	assert.Equal(t, blocks[4].Bsh(), tip.Bsh)

	for _, blk := range blocks {
		fp := blk.Transactions[0].To[0].Fingerprint()
		status, _ := bc.Utxo().Lookup(fp)
		assert.Equal(t, utxoindex.StatusUnspent, status)
		assert.Equal(t, blk.ID, blk.Transactions[0].To[0].OriginBlockID)
	}
}

func TestSimpleReorganization(t *testing.T) {
	bc, _, _ := newTestChain()
	addr := common.Address{0x01}

	b1 := buildBlock(nil, 1, addr, []*transaction.Transaction{outputTx(addr, 10_000, 1)})
	require.NoError(t, bc.AddBlock(b1, false))
	b2 := buildBlock(b1, 200_000, addr, []*transaction.Transaction{outputTx(addr, 10_000, 2)})
	require.NoError(t, bc.AddBlock(b2, false))
	b3 := buildBlock(b2, 400_000, addr, []*transaction.Transaction{outputTx(addr, 10_000, 3)})
	require.NoError(t, bc.AddBlock(b3, false))
	b4 := buildBlock(b3, 600_000, addr, []*transaction.Transaction{outputTx(addr, 10_000, 4)})
	require.NoError(t, bc.AddBlock(b4, false))

	// branch B, rooted at b3: a much tighter timestamp gap than branch
	// A's b4 drives burnfee.Adjust to a far larger curve start, so the
	// branch's aggregate burn-fee exceeds branch A's at equal length.
	b4p := buildBlock(b3, 400_100, addr, []*transaction.Transaction{outputTx(addr, 20_000, 4)})
	require.Greater(t, b4p.BurnFee.Start, b4.BurnFee.Start)
	b5p := buildBlock(b4p, 400_200, addr, []*transaction.Transaction{outputTx(addr, 30_000, 5)})

	require.NoError(t, bc.AddBlock(b4p, false))
	require.NoError(t, bc.AddBlock(b5p, false))

	tip, ok := bc.Tip()
	require.True(t, ok)
	assert.Equal(t, b5p.Bsh(), tip.Bsh)

	b4Fp := b4.Transactions[0].To[0].Fingerprint()
	status, _ := bc.Utxo().Lookup(b4Fp)
	assert.Equal(t, utxoindex.Absent, status, "b4's outputs must be gone once unwound")

	// neither output is consumed by a later transaction, so both remain
	// unspent; OriginBlockID carries the minting block association.
	b4pFp := b4p.Transactions[0].To[0].Fingerprint()
	status, _ = bc.Utxo().Lookup(b4pFp)
	assert.Equal(t, utxoindex.StatusUnspent, status)
	assert.Equal(t, b4p.ID, b4p.Transactions[0].To[0].OriginBlockID)

	b5pFp := b5p.Transactions[0].To[0].Fingerprint()
	status, _ = bc.Utxo().Lookup(b5pFp)
	assert.Equal(t, utxoindex.StatusUnspent, status)
	assert.Equal(t, b5p.ID, b5p.Transactions[0].To[0].OriginBlockID)
}

func TestFailedValidationRollback(t *testing.T) {
	bc, _, _ := newTestChain()
	priv, pub, err := crypto.GenerateKeys()
	require.NoError(t, err)
	addr := crypto.CompressedAddress(pub)

	b1 := buildBlock(nil, 1, addr, []*transaction.Transaction{outputTx(addr, 10_000, 1)})
	require.NoError(t, bc.AddBlock(b1, false))
	s1 := b1.Transactions[0].To[0]

	spend2 := spendTx(priv, s1, []slip.Slip{{Address: addr, Amount: 10_000, OriginBlockID: 2}})
	b2 := buildBlock(b1, 200_000, addr, []*transaction.Transaction{spend2})
	require.NoError(t, bc.AddBlock(b2, false))

	b3 := buildBlock(b2, 400_000, addr, []*transaction.Transaction{outputTx(addr, 10_000, 3)})
	require.NoError(t, bc.AddBlock(b3, false))

	beforeSnapshot := bc.Utxo().Snapshot()

	// b4bad double-spends s1, which was already consumed by spend2 at
	// block 2 and is therefore no longer unspent.
	badTx := spendTx(priv, s1, nil)
	b4bad := buildBlock(b3, 600_000, addr, []*transaction.Transaction{badTx})

	err = bc.AddBlock(b4bad, false)
	require.Error(t, err)
	assert.True(t, IsReason(err, ValidationFailed))

	tip, ok := bc.Tip()
	require.True(t, ok)
	assert.Equal(t, b3.Bsh(), tip.Bsh)
	assert.Equal(t, beforeSnapshot, bc.Utxo().Snapshot())
}

func TestWalletNotifiedOnAddAndRemove(t *testing.T) {
	storage := newMemStorage()
	hooks := &recordingHooks{}
	wallet := &recordingWallet{}
	priv, pub, err := crypto.GenerateKeys()
	require.NoError(t, err)
	addr := crypto.CompressedAddress(pub)
	bc := New(Config{
		GenesisTs:     1,
		GenesisBid:    1,
		GenesisPeriod: params.GenesisPeriod,
		Heartbeat:     testHeartbeat,
		Storage:       storage,
		Hooks:         hooks,
		Wallet:        wallet,
		WatchAddr:     addr,
	})

	b1 := buildBlock(nil, 1, addr, []*transaction.Transaction{outputTx(addr, 10_000, 1)})
	require.NoError(t, bc.AddBlock(b1, false))
	require.Len(t, wallet.added, 1)
	s1 := b1.Transactions[0].To[0]
	assert.Equal(t, s1.Fingerprint(), wallet.added[0].Fingerprint())

	spend2 := spendTx(priv, s1, []slip.Slip{{Address: addr, Amount: 10_000, OriginBlockID: 2}})
	b2 := buildBlock(b1, 200_000, addr, []*transaction.Transaction{spend2})
	require.NoError(t, bc.AddBlock(b2, false))

	// spending s1 fires RemoveSlip for the consumed input; minting the
	// new output fires AddSlip again, since it is still watched.
	require.Len(t, wallet.removed, 1)
	assert.Equal(t, s1.Fingerprint(), wallet.removed[0].Fingerprint())
	require.Len(t, wallet.added, 2)
}

func TestTreasuryConservationAlongCanonicalChain(t *testing.T) {
	bc, _, _ := newTestChain()
	addr := common.Address{0x01}

	var prev *block.Block
	var sumCoinbase uint64
	for i := uint32(1); i <= 6; i++ {
		blk := buildBlock(prev, uint64(i)*200_000, addr, []*transaction.Transaction{outputTx(addr, 1_000, i)})
		require.NoError(t, bc.AddBlock(blk, false))
		sumCoinbase += blk.Coinbase
		prev = blk
	}

	// treasury_tip + sum of every coinbase released since genesis must
	// reconstruct the initial pool exactly (reclaimed is zero here).
	assert.Equal(t, params.TreasuryInitial, prev.Treasury+sumCoinbase)
}

func TestLongestChainFlagFormsSinglePath(t *testing.T) {
	bc, _, _ := newTestChain()
	addr := common.Address{0x01}

	b1 := buildBlock(nil, 1, addr, []*transaction.Transaction{outputTx(addr, 10_000, 1)})
	require.NoError(t, bc.AddBlock(b1, false))
	b2 := buildBlock(b1, 200_000, addr, []*transaction.Transaction{outputTx(addr, 10_000, 2)})
	require.NoError(t, bc.AddBlock(b2, false))
	b3 := buildBlock(b2, 400_000, addr, []*transaction.Transaction{outputTx(addr, 10_000, 3)})
	require.NoError(t, bc.AddBlock(b3, false))
	b4 := buildBlock(b3, 600_000, addr, []*transaction.Transaction{outputTx(addr, 10_000, 4)})
	require.NoError(t, bc.AddBlock(b4, false))

	b4p := buildBlock(b3, 400_100, addr, []*transaction.Transaction{outputTx(addr, 20_000, 4)})
	require.NoError(t, bc.AddBlock(b4p, false))
	b5p := buildBlock(b4p, 400_200, addr, []*transaction.Transaction{outputTx(addr, 30_000, 5)})
	require.NoError(t, bc.AddBlock(b5p, false))

	tip, ok := bc.Tip()
	require.True(t, ok)

	// walk the lc=1 chain back from the tip via PreviousBsh; it must
	// reach the genesis in exactly as many steps as blocks were wound,
	// visiting only flagged positions.
	path := []common.Hash{tip.Bsh}
	cur := tip
	for !cur.PreviousBsh.IsZero() {
		pos, ok := bc.posByBsh[cur.PreviousBsh]
		require.True(t, ok)
		cur = bc.entries[pos].header
		path = append(path, cur.Bsh)
	}
	assert.Len(t, path, 5, "b1, b2, b3, b4p, b5p")

	for _, bsh := range path {
		assert.True(t, bc.LongestChainFlag(bsh))
	}
	assert.False(t, bc.LongestChainFlag(b4.Bsh()), "orphaned branch must not carry the longest-chain flag")

	var lcCount int
	for _, e := range bc.entries {
		if e.lc {
			lcCount++
		}
	}
	assert.Equal(t, len(path), lcCount, "lc=1 set must be exactly the single canonical path")
}

func TestDuplicateAddBlockIsIdempotent(t *testing.T) {
	bc, _, _ := newTestChain()
	addr := common.Address{0x01}
	b1 := buildBlock(nil, 1, addr, []*transaction.Transaction{outputTx(addr, 10_000, 1)})

	require.NoError(t, bc.AddBlock(b1, false))
	before := bc.Utxo().Snapshot()
	require.NoError(t, bc.AddBlock(b1, false))
	assert.Equal(t, before, bc.Utxo().Snapshot())
	assert.Equal(t, 1, bc.Height())
}
