/* Copyright 2025 Mochisync Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package ratelimit provides a sliding-window request limiter. The remote
// store enforces a fixed quota of requests per window, so the limiter keeps
// a FIFO of recent request timestamps and blocks a caller until the oldest
// one falls outside the window.
package ratelimit

import (
	"sync"
	"time"

	"github.com/mochisync/mochisync/pkg/clock"
)

// Limiter bounds calls to at most k requests per window. It is constructed
// once per run and passed by reference to every call site.
type Limiter struct {
	mu     sync.Mutex
	k      int
	window time.Duration
	clock  clock.Clock
	stamps []time.Time

	// sleep is swapped out in tests to drive a mock clock
	sleep func(d time.Duration)
}

// New returns a limiter allowing k requests per window
func New(k int, window time.Duration, c clock.Clock) *Limiter {
	return &Limiter{
		k:      k,
		window: window,
		clock:  c,
		sleep:  time.Sleep,
	}
}

// SetSleep replaces the sleep function. Tests use it to advance a mock
// clock instead of blocking.
func (l *Limiter) SetSleep(fn func(d time.Duration)) {
	l.sleep = fn
}

// evict drops timestamps that have fallen outside the window
func (l *Limiter) evict(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.stamps) && !l.stamps[i].After(cutoff) {
		i++
	}
	l.stamps = l.stamps[i:]
}

// Wait blocks until a request slot is available, then records the request
func (l *Limiter) Wait() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.evict(l.clock.Now())

	for len(l.stamps) >= l.k {
		wait := l.stamps[0].Add(l.window).Sub(l.clock.Now())
		if wait > 0 {
			l.sleep(wait)
		}
		l.evict(l.clock.Now())
	}

	l.stamps = append(l.stamps, l.clock.Now())
}

// Len returns the number of requests currently inside the window
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.evict(l.clock.Now())
	return len(l.stamps)
}
