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

package logseq

import (
	git "github.com/go-git/go-git/v5"
	"github.com/pkg/errors"
)

// Pull fast-forwards the graph's git checkout from origin before the graph
// is read. A graph directory that is not a repository is an error; callers
// only invoke Pull when the graph is configured as git-backed.
func Pull(dir string) error {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return errors.Wrapf(err, "opening repository at %s", dir)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return errors.Wrap(err, "getting worktree")
	}

	err = worktree.Pull(&git.PullOptions{RemoteName: "origin"})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return errors.Wrap(err, "pulling changes")
	}

	return nil
}
