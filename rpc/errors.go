/*
Copyright (C) 2024  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package rpc

import "fmt"

// ErrHandshakeFailed is raised when the client's dispatcher tags are not
// a prefix of the server's.
type ErrHandshakeFailed struct {
	Client []string
	Server []string
}

func (e ErrHandshakeFailed) Error() string {
	return fmt.Sprintf("rpc: handshake failed: client %v is not a prefix of server %v", e.Client, e.Server)
}

// ErrHandlerError wraps a remote handler's error, stringified and sent
// back across the wire.
type ErrHandlerError struct{ Reason string }

func (e ErrHandlerError) Error() string { return "rpc: remote handler error: " + e.Reason }

// ErrCompletion wraps a transport failure mid-call (connection closed,
// read/write error) surfaced to the caller awaiting a completion.
type ErrCompletion struct{ Cause error }

func (e ErrCompletion) Error() string { return fmt.Sprintf("rpc: completion: %v", e.Cause) }
func (e ErrCompletion) Unwrap() error { return e.Cause }

// ErrAccessPolicyPoisoned is returned by any call made on a policy after
// Error has drained its outstanding completions.
type ErrAccessPolicyPoisoned struct{ Cause error }

func (e ErrAccessPolicyPoisoned) Error() string {
	return fmt.Sprintf("rpc: access policy poisoned: %v", e.Cause)
}
func (e ErrAccessPolicyPoisoned) Unwrap() error { return e.Cause }

// ErrMustBePositive is raised by constructors that require n > 0
// (AtMost(0)).
type ErrMustBePositive struct{ What string }

func (e ErrMustBePositive) Error() string { return e.What + " must be positive" }
