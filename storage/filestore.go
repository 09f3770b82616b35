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

// Package storage persists block bodies to flat ".sai" files named by
// write time and bsh, with a leveldb side-index resolving a bsh or a
// block id back to the file that holds it.
package storage

import (
	"encoding/binary"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/emberchain/core/block"
	"github.com/emberchain/core/common"
	"github.com/emberchain/core/log"
	lru "github.com/hashicorp/golang-lru"
	"github.com/syndtr/goleveldb/leveldb"
)

var logger = log.NewModuleLogger(log.ModuleStorage)

const (
	bshPrefix = 'h' // bshPrefix || bsh -> file path
	bidPrefix = 'n' // bidPrefix || bid (big-endian uint32) -> bsh

	// blockCacheSize bounds the in-memory block cache fronting disk
	// reads; ancestor search and wallet rescans tend to revisit the
	// same recent blocks repeatedly.
	blockCacheSize = 256
)

// FileStore is the on-disk block store named in spec.md §6: one ".sai"
// file per block body, plus a small index so a bsh or a bid resolves
// to a path without scanning the directory.
type FileStore struct {
	dir   string
	index *levelIndex
	cache *lru.Cache
}

// Open creates dir if needed and opens (or initializes) its index.
func Open(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}
	idx, err := openLevelIndex(filepath.Join(dir, "index"))
	if err != nil {
		return nil, fmt.Errorf("storage: open index: %w", err)
	}
	cache, err := lru.New(blockCacheSize)
	if err != nil {
		return nil, fmt.Errorf("storage: create block cache: %w", err)
	}
	return &FileStore{dir: dir, index: idx, cache: cache}, nil
}

// Close releases the index's file handles.
func (fs *FileStore) Close() { fs.index.Close() }

func bshKey(bsh common.Hash) []byte {
	k := make([]byte, 1+len(bsh))
	k[0] = bshPrefix
	copy(k[1:], bsh[:])
	return k
}

func bidKey(bid uint32) []byte {
	k := make([]byte, 5)
	k[0] = bidPrefix
	binary.BigEndian.PutUint32(k[1:], bid)
	return k
}

// WriteBlock encodes blk and writes it to a new "<ts>-<bsh>.sai" file,
// then records the bsh->path and bid->bsh index entries. Implements
// blockchain.Storage.
func (fs *FileStore) WriteBlock(blk *block.Block) error {
	bsh := blk.Bsh()
	nowMs := time.Now().UnixNano() / int64(time.Millisecond)
	name := fmt.Sprintf("%d-%s.sai", nowMs, bsh.String())
	path := filepath.Join(fs.dir, name)

	if err := ioutil.WriteFile(path, blk.MarshalBinary(), 0o644); err != nil {
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	if err := fs.index.Put(bshKey(bsh), []byte(name)); err != nil {
		return fmt.Errorf("storage: index bsh: %w", err)
	}
	if err := fs.index.Put(bidKey(blk.ID), bsh[:]); err != nil {
		return fmt.Errorf("storage: index bid: %w", err)
	}
	fs.cache.Add(bsh, blk)
	logger.Debug("wrote block", "file", name, "id", blk.ID)
	return nil
}

// ReadBlock resolves bsh to its file and decodes the body, serving
// from the block cache when possible. Implements blockchain.Storage.
func (fs *FileStore) ReadBlock(bsh common.Hash) (*block.Block, error) {
	if cached, ok := fs.cache.Get(bsh); ok {
		return cached.(*block.Block), nil
	}
	name, err := fs.index.Get(bshKey(bsh))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, fmt.Errorf("storage: no block for bsh %s", bsh.String())
		}
		return nil, fmt.Errorf("storage: index lookup: %w", err)
	}
	raw, err := ioutil.ReadFile(filepath.Join(fs.dir, string(name)))
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	blk, err := block.UnmarshalBinary(raw)
	if err != nil {
		return nil, err
	}
	fs.cache.Add(bsh, blk)
	return blk, nil
}

// ReadBlockByID resolves a block id to its body via the bid->bsh
// index, for replay and wallet-rescan callers that do not have a bsh
// on hand.
func (fs *FileStore) ReadBlockByID(id uint32) (*block.Block, error) {
	bshRaw, err := fs.index.Get(bidKey(id))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, fmt.Errorf("storage: no block for id %d", id)
		}
		return nil, fmt.Errorf("storage: index lookup: %w", err)
	}
	return fs.ReadBlock(common.BytesToHash(bshRaw))
}

// Has reports whether bsh is already indexed, without reading the
// body from disk.
func (fs *FileStore) Has(bsh common.Hash) bool {
	ok, err := fs.index.Has(bshKey(bsh))
	return err == nil && ok
}
