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

package ratelimit

import (
	"testing"
	"time"

	"github.com/mochisync/mochisync/pkg/assert"
	"github.com/mochisync/mochisync/pkg/clock"
)

func TestWait_UnderLimit(t *testing.T) {
	c := clock.NewMock()
	l := New(3, time.Minute, c)
	l.SetSleep(func(d time.Duration) {
		t.Fatalf("limiter slept %s below the limit", d)
	})

	l.Wait()
	l.Wait()
	l.Wait()

	assert.Equal(t, l.Len(), 3, "window occupancy mismatch")
}

func TestWait_BlocksAtLimit(t *testing.T) {
	c := clock.NewMock()
	l := New(2, time.Minute, c)

	var slept time.Duration
	l.SetSleep(func(d time.Duration) {
		slept += d
		c.Advance(d)
	})

	l.Wait()
	c.Advance(10 * time.Second)
	l.Wait()

	// Third call must wait until the first timestamp leaves the window.
	l.Wait()

	assert.Equal(t, slept, 50*time.Second, "sleep duration mismatch")
	assert.Equal(t, l.Len(), 2, "window occupancy mismatch")
}

func TestWait_EvictsExpired(t *testing.T) {
	c := clock.NewMock()
	l := New(2, time.Minute, c)
	l.SetSleep(func(d time.Duration) {
		t.Fatalf("limiter slept %s after expiry", d)
	})

	l.Wait()
	l.Wait()

	c.Advance(61 * time.Second)

	l.Wait()
	assert.Equal(t, l.Len(), 1, "window occupancy mismatch")
}
