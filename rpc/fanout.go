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

import "sync"

// Parallelism bounds how many calls a Fanout runs at once. Unlimited
// runs every call as soon as its target is available; AtMost(n) caps
// it to n concurrent in-flight calls.
type Parallelism struct{ limit int }

// Unlimited places no bound on concurrent fan-out calls.
func Unlimited() Parallelism { return Parallelism{limit: 0} }

// AtMost bounds fan-out to n concurrent calls. n must be positive.
func AtMost(n int) (Parallelism, error) {
	if n <= 0 {
		return Parallelism{}, ErrMustBePositive{What: "parallelism"}
	}
	return Parallelism{limit: n}, nil
}

// FanoutResult pairs one target's index with its outcome.
type FanoutResult[T any] struct {
	Index int
	Value T
	Err   error
}

// Fanout issues one call per target concurrently, bounded by p, and
// collects every result. Results arrive in no particular order; Index
// identifies which target produced each one (component C6 §4.4.5).
func Fanout[T any](targets []*Client, p Parallelism, call func(c *Client) (T, error)) []FanoutResult[T] {
	results := make([]FanoutResult[T], len(targets))
	if len(targets) == 0 {
		return results
	}

	limit := p.limit
	if limit <= 0 || limit > len(targets) {
		limit = len(targets)
	}
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, target := range targets {
		wg.Add(1)
		go func(i int, target *Client) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			value, err := call(target)
			results[i] = FanoutResult[T]{Index: i, Value: value, Err: err}
		}(i, target)
	}
	wg.Wait()
	return results
}
