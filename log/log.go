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

// Package log provides one structured logger per module, backed by zap.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Module names used with NewModuleLogger.
const (
	ModuleBlockchain   = "blockchain"
	ModuleMempool      = "mempool"
	ModuleUtxoIndex    = "utxoindex"
	ModuleConsensus    = "consensus"
	ModuleStorage      = "storage"
	ModuleWallet       = "wallet"
	ModuleGoldenTicket = "goldenticket"
	ModuleConfig       = "config"
	ModuleCmd          = "emberd"
)

// Logger is the structured logger handed out to each module.
type Logger struct {
	z      *zap.SugaredLogger
	module string
}

var base *zap.Logger

func init() {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	base = l
}

// NewModuleLogger returns a logger tagged with the given module name.
func NewModuleLogger(module string) *Logger {
	return &Logger{z: base.Sugar().With("module", module), module: module}
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.z.Debugw(msg, kv...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.z.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.z.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.z.Errorw(msg, kv...) }

// Crit logs at error level and is reserved for failures that halt a
// subsystem (e.g. StorageFailed on the consensus engine).
func (l *Logger) Crit(msg string, kv ...interface{}) { l.z.Errorw(msg, kv...) }

// Sync flushes buffered log entries; call on process shutdown.
func Sync() { _ = base.Sync() }
