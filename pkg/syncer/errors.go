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

package syncer

import "github.com/pkg/errors"

// Per-card errors. These are logged and counted; they never abort the
// remaining cards.
var (
	// ErrDeckUnresolved means a card's deck has no id even after the
	// deck-creation phase
	ErrDeckUnresolved = errors.New("deck could not be resolved")
)
