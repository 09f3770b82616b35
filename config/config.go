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

// Package config loads the single JSON document a node starts from:
// its chain parameters, its wallet keypair and pre-seeded slips, and
// its network section (reserved; transport is out of scope here).
package config

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/emberchain/core/params"
	"github.com/emberchain/core/slip"
)

// ChainConfig seeds a Blockchain's genesis parameters and on-disk
// layout.
type ChainConfig struct {
	GenesisTs       uint64 `json:"genesis_ts"`
	GenesisBid      uint32 `json:"genesis_bid"`
	GenesisPeriod   uint32 `json:"genesis_period"`
	HeartbeatMillis uint64 `json:"heartbeat_millis"`
	StorageDir      string `json:"storage_dir"`
}

// WalletConfig carries the node's own keypair, hex-encoded, plus any
// slips to pre-seed the wallet with (e.g. a genesis allocation known
// ahead of time).
type WalletConfig struct {
	PublicKey  string      `json:"publickey"`
	PrivateKey string      `json:"privatekey"`
	Amount     uint64      `json:"amount"`
	Inputs     []slip.Slip `json:"inputs"`
	Outputs    []slip.Slip `json:"outputs"`
}

// NetworkConfig is reserved for a future peer list and listen address;
// gossip transport is out of scope here.
type NetworkConfig struct{}

// Config is the top-level document, matching the source's three-section
// layout (chain/wallet/network).
type Config struct {
	ConfigFilename string        `json:"config_filename"`
	Chain          ChainConfig   `json:"chain_config"`
	Wallet         WalletConfig  `json:"wallet_config"`
	Network        NetworkConfig `json:"network_config"`
}

// Default returns a Config with the module's compiled-in genesis
// parameters, for a node with no config file on disk yet.
func Default() *Config {
	return &Config{
		Chain: ChainConfig{
			GenesisPeriod:   params.GenesisPeriod,
			HeartbeatMillis: params.HeartbeatMillis,
			StorageDir:      "data",
		},
	}
}

// Load reads and parses the config document at path.
func Load(path string) (*Config, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.ConfigFilename = path
	return &cfg, nil
}

// WriteTo serializes cfg as indented JSON to path, for a node writing
// back a freshly generated keypair on first run.
func (c *Config) WriteTo(path string) error {
	raw, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := ioutil.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// PrivateKeyBytes decodes the hex-encoded privatekey field.
func (w WalletConfig) PrivateKeyBytes() ([]byte, error) {
	b, err := hex.DecodeString(w.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("config: decode privatekey: %w", err)
	}
	return b, nil
}
