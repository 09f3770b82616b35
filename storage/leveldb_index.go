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
	"sync"
	"time"

	"github.com/emberchain/core/log"
	"github.com/syndtr/goleveldb/leveldb"
	lderrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	metrics "github.com/rcrowley/go-metrics"
)

// levelIndex is the bsh/bid side-index backing FileStore: it never
// holds a block body, only the path a body was written to and the
// bid->bsh mapping needed to resolve a block by height.
type levelIndex struct {
	fn string
	db *leveldb.DB

	compTimeMeter  metrics.Meter
	compReadMeter  metrics.Meter
	compWriteMeter metrics.Meter
	diskReadMeter  metrics.Meter
	diskWriteMeter metrics.Meter

	quitLock sync.Mutex
	quitChan chan chan error

	logger *log.Logger
}

func openLevelIndex(dir string) (*levelIndex, error) {
	opts := &opt.Options{
		OpenFilesCacheCapacity: 64,
		BlockCacheCapacity:     8 * opt.MiB,
		WriteBuffer:            4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	}
	db, err := leveldb.OpenFile(dir, opts)
	if _, corrupted := err.(*lderrors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(dir, nil)
	}
	if err != nil {
		return nil, err
	}
	idx := &levelIndex{fn: dir, db: db, logger: log.NewModuleLogger(log.ModuleStorage)}
	idx.startMeter("storage/index/")
	return idx, nil
}

func (idx *levelIndex) Put(key, value []byte) error { return idx.db.Put(key, value, nil) }
func (idx *levelIndex) Has(key []byte) (bool, error) { return idx.db.Has(key, nil) }
func (idx *levelIndex) Get(key []byte) ([]byte, error) {
	v, err := idx.db.Get(key, nil)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (idx *levelIndex) Close() {
	idx.quitLock.Lock()
	defer idx.quitLock.Unlock()
	if idx.quitChan != nil {
		errc := make(chan error)
		idx.quitChan <- errc
		if err := <-errc; err != nil {
			idx.logger.Error("metrics collection failed", "err", err)
		}
		idx.quitChan = nil
	}
	if err := idx.db.Close(); err != nil {
		idx.logger.Error("failed to close index", "err", err)
	}
}

// startMeter mirrors the compaction/IO metering every levelDB-backed
// component in the corpus runs: a background goroutine sampling
// leveldb's internal DBStats every few seconds into named meters.
func (idx *levelIndex) startMeter(prefix string) {
	idx.compTimeMeter = metrics.NewRegisteredMeter(prefix+"compaction/time", nil)
	idx.compReadMeter = metrics.NewRegisteredMeter(prefix+"compaction/read", nil)
	idx.compWriteMeter = metrics.NewRegisteredMeter(prefix+"compaction/write", nil)
	idx.diskReadMeter = metrics.NewRegisteredMeter(prefix+"disk/read", nil)
	idx.diskWriteMeter = metrics.NewRegisteredMeter(prefix+"disk/write", nil)

	idx.quitLock.Lock()
	idx.quitChan = make(chan chan error)
	idx.quitLock.Unlock()

	go idx.meter(3 * time.Second)
}

// compactionSample is the running total of leveldb's own compaction
// counters at the last sampling tick, so meter can mark only the
// delta since the previous tick.
type compactionSample struct {
	readBytes, writeBytes int64
	dur                   time.Duration
	diskRead, diskWrite   uint64
}

func (idx *levelIndex) sample(stats *leveldb.DBStats, prev compactionSample) compactionSample {
	next := compactionSample{diskRead: stats.IORead, diskWrite: stats.IOWrite}
	for i := range stats.LevelDurations {
		next.dur += stats.LevelDurations[i]
		next.readBytes += stats.LevelRead[i]
		next.writeBytes += stats.LevelWrite[i]
	}

	idx.compTimeMeter.Mark(int64(next.dur.Seconds() - prev.dur.Seconds()))
	idx.compReadMeter.Mark(next.readBytes - prev.readBytes)
	idx.compWriteMeter.Mark(next.writeBytes - prev.writeBytes)
	idx.diskReadMeter.Mark(int64(next.diskRead - prev.diskRead))
	idx.diskWriteMeter.Mark(int64(next.diskWrite - prev.diskWrite))
	return next
}

// meter polls leveldb's internal stats on a fixed interval until told
// to stop, feeding each tick's delta into the registered go-metrics
// meters.
func (idx *levelIndex) meter(refresh time.Duration) {
	var prev compactionSample
	stats := new(leveldb.DBStats)
	var stopc chan error
	var err error

	for stopc == nil {
		if err = idx.db.Stats(stats); err != nil {
			break
		}
		prev = idx.sample(stats, prev)

		select {
		case stopc = <-idx.quitChan:
		case <-time.After(refresh):
		}
	}
	if stopc == nil {
		stopc = <-idx.quitChan
	}
	stopc <- err
}
