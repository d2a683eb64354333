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

// Package cmdutil holds the handful of conveniences every cmd/ binary's
// main package repeats: a top-level panic/error recovery that prints the
// full cause chain (deepest cause last) and exits EXIT_FAILURE, and
// GOMAXPROCS wiring from the CLI's n_threads argument.
package cmdutil

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/dc0d/onexit"
)

// Main runs run, recovering any panic, printing the full cause chain to
// stderr and calling os.Exit(1) on either a panic or a returned error
// (spec.md §7's "every cmd/ main recovers at the top level").
func Main(run func() error) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				fmt.Fprintln(os.Stderr, CauseChain(err))
			} else {
				fmt.Fprintln(os.Stderr, r)
			}
			os.Exit(1)
		}
	}()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, CauseChain(err))
		os.Exit(1)
	}
}

// CauseChain renders err followed by every error it wraps, deepest
// cause last.
func CauseChain(err error) string {
	s := err.Error()
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return s
		}
		err = next
		s += "\ncaused by: " + err.Error()
	}
}

// RegisterCleanup arranges for f to run when the process exits, however it
// exits (normal return, os.Exit, or a captured signal) — the same
// onexit.Register idiom the original CLI used for closing its trace file.
// Server binaries use it to release listeners and flush tracers that a
// deferred Close alone would miss on a signal-driven shutdown.
func RegisterCleanup(f func()) {
	onexit.Register(f)
}

// SetGOMAXPROCS applies nThreads to runtime.GOMAXPROCS when positive,
// matching the CLI surface's n_threads argument to the scheduler knob
// the original's explicit thread count configured.
func SetGOMAXPROCS(nThreads int) {
	if nThreads > 0 {
		runtime.GOMAXPROCS(nThreads)
	}
}
