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

// Package consensus orchestrates the blockchain and mempool packages
// behind a single goroutine, and defines the external collaborator
// contracts (Storage, Wallet, Lottery, Network) that let the engine
// stay ignorant of how blocks are persisted, how a golden ticket is
// found, or how peers are reached.
package consensus

import (
	"github.com/emberchain/core/block"
	"github.com/emberchain/core/common"
	"github.com/emberchain/core/crypto"
	"github.com/emberchain/core/slip"
)

// Storage is the persistence contract. storage.FileStore is the
// reference implementation.
type Storage interface {
	WriteBlock(blk *block.Block) error
	ReadBlock(bsh common.Hash) (*block.Block, error)
}

// Wallet is the local address's slip bookkeeping contract. wallet.Local
// is the reference implementation; it is also a blockchain.WalletSink
// by structural typing (AddSlip/RemoveSlip match exactly).
type Wallet interface {
	AddSlip(s slip.Slip)
	RemoveSlip(s slip.Slip)
	PublicKey() *crypto.PublicKey
}

// Lottery receives every block the engine adopts as the new tip, so a
// golden-ticket search process can evaluate it against the previous
// winner. No search implementation is provided (non-goal); callers
// needing one provide their own Lottery.
type Lottery interface {
	SubmitBlock(h block.Header)
}

// Network is the peer-facing half of the Hooks surface: requesting a
// missing predecessor, and announcing a new tip once adopted. No
// transport implementation is provided (non-goal).
type Network interface {
	RequestBlock(bsh common.Hash)
	AnnounceTip(h block.Header)
}

// WalletDelta reports the slip-level effect a single AddBlock call had
// on the watched address, for an external dashboard or balance cache
// that would rather observe deltas than poll Wallet.Slips().
type WalletDelta struct {
	Added   []slip.Slip
	Removed []slip.Slip
}
