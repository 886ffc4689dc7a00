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

// Package syncer drives one full synchronization run: fetch remote state,
// build cards from the graph, decide per card, apply, then prune orphans.
// A failure on one card is logged and counted; only failures of the initial
// fetches or of the local database abort the run.
package syncer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mochisync/mochisync/pkg/card"
	"github.com/mochisync/mochisync/pkg/cli/config"
	"github.com/mochisync/mochisync/pkg/cli/consts"
	"github.com/mochisync/mochisync/pkg/cli/database"
	"github.com/mochisync/mochisync/pkg/cli/log"
	"github.com/mochisync/mochisync/pkg/cli/utils/diff"
	"github.com/mochisync/mochisync/pkg/clock"
	"github.com/mochisync/mochisync/pkg/logseq"
	"github.com/mochisync/mochisync/pkg/mochi"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Syncer performs one-way sync runs from a graph to the remote store
type Syncer struct {
	Client *mochi.Client
	Graph  *logseq.Graph
	DB     *database.DB
	Config config.Config
	Clock  clock.Clock

	// DryRun computes and reports the full plan without issuing any
	// mutation, remote or local
	DryRun bool
	// Prune enables orphan deletion for this run regardless of the
	// configured default
	Prune bool
}

// Result aggregates the outcome of one run
type Result struct {
	Created int
	Updated int
	Deleted int
	Skipped int
	Failed  int
}

func (r Result) String() string {
	return fmt.Sprintf("%d created, %d updated, %d deleted, %d unchanged, %d failed",
		r.Created, r.Updated, r.Deleted, r.Skipped, r.Failed)
}

// Run performs one full synchronization run
func (s *Syncer) Run() (Result, error) {
	var ret Result

	var remoteCards []mochi.Card
	var decks []mochi.Deck
	var templates []mochi.Template

	var g errgroup.Group
	g.Go(func() error {
		var err error
		remoteCards, err = s.Client.ListCardsWithTag(consts.SystemTag)
		return errors.Wrap(err, "fetching cards")
	})
	g.Go(func() error {
		var err error
		decks, err = s.Client.ListDecks()
		return errors.Wrap(err, "fetching decks")
	})
	g.Go(func() error {
		var err error
		templates, err = s.Client.ListTemplates()
		return errors.Wrap(err, "fetching templates")
	})
	if err := g.Wait(); err != nil {
		return ret, err
	}

	links, err := database.AllLinks(s.DB)
	if err != nil {
		return ret, errors.Wrap(err, "loading links")
	}

	templatesByName := map[string]mochi.Template{}
	for _, t := range templates {
		templatesByName[t.Name] = t
	}

	cards := s.buildCards(templatesByName, links, &ret)
	deckIDs := s.resolveDecks(cards, decks)

	// a trashed remote card is as good as deleted; its local counterpart
	// is recreated and orphan pruning leaves it alone
	remoteByID := map[string]mochi.Card{}
	for _, rc := range remoteCards {
		if rc.Trashed() {
			continue
		}
		remoteByID[rc.ID] = rc
	}

	uploaded := map[string]bool{}
	referenced := map[string]bool{}

	for i := range cards {
		c := &cards[i]

		// the remote card stays referenced even when the mutation below
		// fails; only a successful create assigns a different id
		if c.CardID != "" {
			referenced[c.CardID] = true
		}

		deckID, ok := deckIDs[strings.ToLower(c.DeckName)]
		if !ok {
			log.Errorf("card %s: %s: %q\n", c.BlockUUID, ErrDeckUnresolved, c.DeckName)
			ret.Failed++
			continue
		}

		templateID := ""
		if c.TemplateName != "" {
			templateID = templatesByName[c.TemplateName].ID
		}

		// a recorded id pointing at nothing remote is stale; the card
		// is recreated under a fresh id
		var remote *mochi.Card
		if c.CardID != "" {
			if rc, ok := remoteByID[c.CardID]; ok {
				remote = &rc
			}
		}

		op := Decide(*c, remote, deckID, templateID, consts.SystemTag)

		if s.DryRun {
			s.reportPlanned(*c, remote, op)
			switch op {
			case OpCreate:
				ret.Created++
			case OpUpdate:
				ret.Updated++
			default:
				ret.Skipped++
			}
			continue
		}

		switch op {
		case OpCreate:
			if err := s.create(c, deckID, templateID, uploaded); err != nil {
				log.Errorf("card %s: %s\n", c.BlockUUID, err)
				ret.Failed++
				continue
			}
			ret.Created++
		case OpUpdate:
			if err := s.update(c, remote, deckID, templateID, uploaded); err != nil {
				log.Errorf("card %s: %s\n", c.BlockUUID, err)
				ret.Failed++
				continue
			}
			ret.Updated++
		default:
			ret.Skipped++
		}

		referenced[c.CardID] = true
	}

	// the orphan snapshot is taken only now, after creations have been
	// assigned their ids, so a card created this run is never an orphan
	if s.Prune || s.Config.DeleteOrphans {
		s.prune(remoteByID, referenced, &ret)
	}

	if !s.DryRun {
		if err := database.UpsertSystem(s.DB, consts.SystemLastSyncAt, s.now().Unix()); err != nil {
			return ret, errors.Wrap(err, "recording sync time")
		}
	}

	return ret, nil
}

// buildCards turns every tagged block into a card, assigning uuids to
// blocks that lack one and filling ids from the persisted links
func (s *Syncer) buildCards(templates map[string]mochi.Template, links map[string]string, res *Result) []card.Card {
	builder := &card.Builder{
		Graph:            s.Graph,
		Templates:        templates,
		Transformer:      card.Transformer{Tag: s.Config.SyncTag},
		DefaultDeck:      s.Config.DefaultDeck,
		IncludePageTitle: s.Config.IncludePageTitle,
		IncludeAncestors: s.Config.IncludeAncestors,
	}

	var ret []card.Card
	for _, blk := range s.Graph.Tagged(s.Config.SyncTag) {
		// a dry run never touches the page files; a block without a
		// uuid is simply planned as a create
		if blk.UUID == "" && !s.DryRun {
			if _, err := s.Graph.EnsureUUID(blk); err != nil {
				log.Errorf("assigning uuid on page %s: %s\n", blk.Page.Title, err)
				res.Failed++
				continue
			}
		}

		c, err := builder.Build(blk)
		if err != nil {
			log.Errorf("building card for block %s: %s\n", blk.UUID, err)
			res.Failed++
			continue
		}

		if c.CardID == "" && c.BlockUUID != "" {
			if id, ok := links[c.BlockUUID]; ok {
				c.CardID = id
			}
		}

		ret = append(ret, c)
	}

	return ret
}

// resolveDecks maps every needed deck name, folded, to a deck id, creating
// missing decks. A deck that cannot be created stays unresolved and its
// cards fail individually.
func (s *Syncer) resolveDecks(cards []card.Card, decks []mochi.Deck) map[string]string {
	ids := map[string]string{}
	for _, d := range decks {
		ids[strings.ToLower(d.Name)] = d.ID
	}

	for _, name := range NeededDeckNames(cards, s.Config.DefaultDeck) {
		key := strings.ToLower(name)
		if _, ok := ids[key]; ok {
			continue
		}

		if s.DryRun {
			log.Plainf("would create deck %q\n", name)
			ids[key] = "(new)"
			continue
		}

		d, err := s.Client.CreateDeck(name)
		if err != nil {
			log.Errorf("creating deck %q: %s\n", name, err)
			continue
		}
		log.Successf("created deck %q\n", name)
		ids[key] = d.ID
	}

	return ids
}

func (s *Syncer) create(c *card.Card, deckID, templateID string, uploaded map[string]bool) error {
	payload := toRemote(*c, deckID, templateID)
	payload.ID = ""

	created, err := s.Client.CreateCard(payload)
	if err != nil {
		return errors.Wrap(err, "creating card")
	}
	c.CardID = created.ID

	if blk, ok := s.Graph.BlockByUUID(c.BlockUUID); ok {
		if err := s.Graph.WriteBlockProperty(blk, consts.PropCardID, created.ID); err != nil {
			return errors.Wrap(err, "writing card id back")
		}
	}
	if err := database.UpsertLink(s.DB, c.BlockUUID, created.ID); err != nil {
		return errors.Wrap(err, "recording link")
	}

	s.ensureAttachments(*c, nil, uploaded)

	return nil
}

func (s *Syncer) update(c *card.Card, remote *mochi.Card, deckID, templateID string, uploaded map[string]bool) error {
	payload := toRemote(*c, deckID, templateID)
	if _, err := s.Client.UpdateCard(payload); err != nil {
		return errors.Wrap(err, "updating card")
	}

	if err := database.UpsertLink(s.DB, c.BlockUUID, c.CardID); err != nil {
		return errors.Wrap(err, "recording link")
	}

	s.ensureAttachments(*c, remote.AttachmentFilenames(), uploaded)

	return nil
}

// ensureAttachments uploads the card's attachments that the server does not
// have yet. Attachment failures degrade the card, they do not fail it.
func (s *Syncer) ensureAttachments(c card.Card, remoteFiles, uploaded map[string]bool) {
	for _, a := range c.Attachments {
		key := c.CardID + "/" + a.Filename
		if uploaded[key] {
			continue
		}
		if remoteFiles[a.Filename] {
			uploaded[key] = true
			continue
		}

		exists, err := s.Client.AttachmentExists(c.CardID, a.Filename)
		if err != nil {
			log.Warnf("card %s: checking attachment %s: %s\n", c.CardID, a.Filename, err)
			continue
		}
		if exists {
			uploaded[key] = true
			continue
		}

		if err := s.Client.UploadAttachment(c.CardID, a.Filename, a.ContentType, a.Bytes); err != nil {
			log.Warnf("card %s: uploading attachment %s: %s\n", c.CardID, a.Filename, err)
			continue
		}
		uploaded[key] = true
	}
}

// prune deletes every remote card that no local card references
func (s *Syncer) prune(remoteByID map[string]mochi.Card, referenced map[string]bool, res *Result) {
	var orphans []string
	for id := range remoteByID {
		if !referenced[id] {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)

	for _, id := range orphans {
		if s.DryRun {
			log.Plainf("would delete card %s\n", id)
			res.Deleted++
			continue
		}

		if err := s.Client.DeleteCard(id); err != nil {
			log.Errorf("deleting card %s: %s\n", id, err)
			res.Failed++
			continue
		}
		if err := database.DeleteLinkByCardID(s.DB, id); err != nil {
			log.Errorf("forgetting card %s: %s\n", id, err)
		}
		res.Deleted++
	}
}

// reportPlanned prints the planned operation for one card during a dry run
func (s *Syncer) reportPlanned(c card.Card, remote *mochi.Card, op Op) {
	switch op {
	case OpCreate:
		log.Plainf("would create card for block %s in deck %q\n", c.BlockUUID, c.DeckName)
	case OpUpdate:
		log.Plainf("would update card %s\n", c.CardID)
		if remote != nil && remote.Content != c.Content {
			printDiff(remote.Content, c.Content)
		}
	default:
		log.Debug("card %s unchanged\n", c.CardID)
	}
}

func printDiff(before, after string) {
	for _, d := range diff.Do(before, after) {
		text := strings.TrimRight(d.Text, "\n")
		for _, line := range strings.Split(text, "\n") {
			switch d.Type {
			case diff.DiffInsert:
				log.Plain(log.ColorGreen.Sprintf("+ %s", line) + "\n")
			case diff.DiffDelete:
				log.Plain(log.ColorRed.Sprintf("- %s", line) + "\n")
			default:
				log.Plainf("  %s\n", line)
			}
		}
	}
}

// toRemote shapes a local card into the remote payload. Tags are sorted so
// payloads are deterministic.
func toRemote(c card.Card, deckID, templateID string) mochi.Card {
	var tags []string
	for t := range c.TagSet(consts.SystemTag) {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	return mochi.Card{
		ID:         c.CardID,
		Content:    c.Content,
		DeckID:     deckID,
		TemplateID: templateID,
		Fields:     c.Fields,
		Tags:       tags,
	}
}

func (s *Syncer) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now()
	}

	return time.Now()
}
