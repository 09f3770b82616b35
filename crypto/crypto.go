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

// Package crypto wraps secp256k1 keypairs/signatures and the SHA-256
// hash used to derive block signature hashes and slip fingerprints.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/emberchain/core/common"
)

// PrivateKey and PublicKey alias the underlying curve implementation
// so callers never import btcec directly.
type PrivateKey = btcec.PrivateKey
type PublicKey = btcec.PublicKey

// GenerateKeys returns a freshly generated secp256k1 keypair.
func GenerateKeys() (*PrivateKey, *PublicKey, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("crypto: generate keypair: %w", err)
	}
	return priv, priv.PubKey(), nil
}

// ParsePrivateKey decodes a 32-byte secret scalar into a keypair, for
// loading a wallet key from its hex-encoded config value.
func ParsePrivateKey(b []byte) (*PrivateKey, *PublicKey) {
	return btcec.PrivKeyFromBytes(b)
}

// CompressedAddress returns the 33-byte compressed encoding of pub,
// used everywhere in the data model as a slip recipient or block
// creator address.
func CompressedAddress(pub *PublicKey) common.Address {
	return common.BytesToAddress(pub.SerializeCompressed())
}

// ParseAddress decodes a 33-byte compressed address back into a public
// key, for signature verification.
func ParseAddress(a common.Address) (*PublicKey, error) {
	pub, err := btcec.ParsePubKey(a[:])
	if err != nil {
		return nil, fmt.Errorf("crypto: parse address: %w", err)
	}
	return pub, nil
}

// Sha256 is the single hash primitive used throughout the module: bsh
// derivation, the merkle root, and transaction hashes.
// Spec pins this to SHA-256 specifically, so the standard library is
// the correct dependency here rather than a third-party hash package
// (see DESIGN.md).
func Sha256(data []byte) common.Hash {
	return sha256.Sum256(data)
}

// Sign produces an ECDSA signature over the SHA-256 digest of body.
// Fed a transaction's SignatureBody(), that digest is the same value
// Transaction.Hash() returns.
func Sign(priv *PrivateKey, body []byte) []byte {
	digest := Sha256(body)
	sig := ecdsa.Sign(priv, digest[:])
	return sig.Serialize()
}

// Verify reports whether sig is a valid ECDSA signature by pub over
// the SHA-256 digest of body.
func Verify(pub *PublicKey, body, sig []byte) bool {
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	digest := Sha256(body)
	return parsed.Verify(digest[:], pub)
}

// RandomBytes returns n cryptographically random bytes, used for the
// golden-ticket preimage.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("crypto: read random bytes: %w", err)
	}
	return b, nil
}
