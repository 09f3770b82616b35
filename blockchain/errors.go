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

import "fmt"

// Reason classifies why add_block did not complete normally.
type Reason int

const (
	// AdmissionRejected: the block's IsValid flag is unset or it
	// predates genesis. A hash duplicate is not an error: AddBlock
	// ignores it and returns nil.
	AdmissionRejected Reason = iota
	// PredecessorMissing: previous hash unknown but within one
	// genesis period of the tip. A request is raised on the network
	// hook; the block stays indexed but off-chain, and AddBlock
	// returns nil rather than an Error with this reason.
	PredecessorMissing
	// Disconnected: ancestor search reached the start of the index
	// without finding a common ancestor. The block stays indexed but
	// off-chain, and AddBlock returns nil rather than an Error with
	// this reason.
	Disconnected
	// ValidationFailed: utxo-level or arithmetic validation rejected
	// a block during winding. Triggers rollback.
	ValidationFailed
	// StorageFailed: a block body read or write failed. Fatal; the
	// caller (consensus.Engine) halts on this reason.
	StorageFailed
)

func (r Reason) String() string {
	switch r {
	case AdmissionRejected:
		return "admission_rejected"
	case PredecessorMissing:
		return "predecessor_missing"
	case Disconnected:
		return "disconnected"
	case ValidationFailed:
		return "validation_failed"
	case StorageFailed:
		return "storage_failed"
	default:
		return "unknown"
	}
}

// Error pairs a Reason with the underlying cause.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Reason.String()
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(reason Reason, cause error) *Error {
	return &Error{Reason: reason, Err: cause}
}

// IsReason reports whether err is a *Error carrying the given reason.
func IsReason(err error, reason Reason) bool {
	bcErr, ok := err.(*Error)
	return ok && bcErr.Reason == reason
}
