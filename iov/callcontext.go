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

package iov

import "github.com/jtolds/gls"

// callCtxMgr propagates the originating collection::Delete call's id into
// every worker goroutine the fan-out spawns, the same technique
// storage/partition.go uses gls.Go for per-shard worker goroutines.
// Code running in those goroutines reads it back with currentCallID
// without a context value being threaded through StoragesClients.
var callCtxMgr = gls.NewContextManager()

const callIDKey = "iov_call_id"

// currentCallID returns the call id set by the goroutine that started
// the current Delete fan-out, or "" outside of one.
func currentCallID() string {
	if v, ok := callCtxMgr.GetValue(callIDKey); ok {
		return v.(string)
	}
	return ""
}
