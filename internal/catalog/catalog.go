package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	yaml "gopkg.in/yaml.v3"
)

//go:embed cards.yaml decks.yaml
var defaultFiles embed.FS

// Card is an immutable catalog entity keyed by id. Instances copied into
// zones carry a mutable exhausted flag elsewhere; nothing here mutates.
type Card struct {
	ID     string `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Type   string `yaml:"type" json:"type"`
	Attack int    `yaml:"attack,omitempty" json:"attack,omitempty"`
	Health int    `yaml:"health,omitempty" json:"health,omitempty"`
}

// TypeToken marks bare token cards, which are subject to the draw redirect
// rule when the opponent runs an assassin token pool.
const TypeToken = "token"

// TokenInfo is the per-deck token archetype lookup.
type TokenInfo struct {
	Type  string `yaml:"type" json:"type"`
	Count int    `yaml:"count" json:"count"`
}

type deckEntry struct {
	ID     string `yaml:"id"`
	Copies int    `yaml:"copies"`
}

type deckDef struct {
	Name  string      `yaml:"name"`
	Token *TokenInfo  `yaml:"token,omitempty"`
	Cards []deckEntry `yaml:"cards"`
}

type cardsFile struct {
	Cards []Card `yaml:"cards"`
}

type decksFile struct {
	Decks map[string]deckDef `yaml:"decks"`
}

// Catalog is the read-only card and deck lookup. Loaded once from embedded
// defaults plus an optional override directory; safe for concurrent reads.
type Catalog struct {
	mu    sync.RWMutex
	cards map[string]Card
	decks map[string]deckDef
}

// New loads the embedded catalog and then applies overrides from dir if
// provided. Overrides replace whole files, not individual entries.
func New(overrideDir string) (*Catalog, error) {
	c := &Catalog{cards: make(map[string]Card), decks: make(map[string]deckDef)}

	rawCards, err := fs.ReadFile(defaultFiles, "cards.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded cards: %w", err)
	}
	rawDecks, err := fs.ReadFile(defaultFiles, "decks.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded decks: %w", err)
	}

	if strings.TrimSpace(overrideDir) != "" {
		if b, err := readOverride(overrideDir, "cards.yaml"); err != nil {
			return nil, err
		} else if b != nil {
			rawCards = b
		}
		if b, err := readOverride(overrideDir, "decks.yaml"); err != nil {
			return nil, err
		} else if b != nil {
			rawDecks = b
		}
	}

	if err := c.applyCards(rawCards); err != nil {
		return nil, err
	}
	if err := c.applyDecks(rawDecks); err != nil {
		return nil, err
	}
	return c, nil
}

func readOverride(dir, name string) ([]byte, error) {
	p := filepath.Join(dir, name)
	b, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return b, nil
}

func (c *Catalog) applyCards(b []byte) error {
	var f cardsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("parse cards: %w", err)
	}
	if len(f.Cards) == 0 {
		return fmt.Errorf("card catalog is empty")
	}
	for _, card := range f.Cards {
		id := strings.TrimSpace(card.ID)
		if id == "" {
			return fmt.Errorf("card with empty id")
		}
		if _, dup := c.cards[id]; dup {
			return fmt.Errorf("duplicate card id %q", id)
		}
		card.ID = id
		c.cards[id] = card
	}
	return nil
}

func (c *Catalog) applyDecks(b []byte) error {
	var f decksFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("parse decks: %w", err)
	}
	// Four decks are sampled per session, so the catalog must carry at least
	// that many.
	if len(f.Decks) < 4 {
		return fmt.Errorf("deck catalog needs at least 4 decks, got %d", len(f.Decks))
	}
	for id, def := range f.Decks {
		if len(def.Cards) == 0 {
			return fmt.Errorf("deck %q has no cards", id)
		}
		for _, e := range def.Cards {
			if e.Copies <= 0 {
				return fmt.Errorf("deck %q: card %q has non-positive copies", id, e.ID)
			}
			if _, ok := c.cards[e.ID]; !ok {
				return fmt.Errorf("deck %q references unknown card %q", id, e.ID)
			}
		}
		c.decks[id] = def
	}
	return nil
}

// Card returns the definition for a card id.
func (c *Catalog) Card(id string) (Card, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	card, ok := c.cards[strings.TrimSpace(id)]
	return card, ok
}

// AllCards returns every card definition sorted by id.
func (c *Catalog) AllCards() []Card {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Card, 0, len(c.cards))
	for _, card := range c.cards {
		out = append(out, card)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DeckIDs returns every deck id sorted.
func (c *Catalog) DeckIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.decks))
	for id := range c.decks {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// DeckList expands a deck definition into its full card id list
// (copies included).
func (c *Catalog) DeckList(id string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.decks[strings.TrimSpace(id)]
	if !ok {
		return nil, false
	}
	var out []string
	for _, e := range def.Cards {
		for i := 0; i < e.Copies; i++ {
			out = append(out, e.ID)
		}
	}
	return out, true
}

// DeckLists expands every deck.
func (c *Catalog) DeckLists() map[string][]string {
	out := make(map[string][]string)
	for _, id := range c.DeckIDs() {
		list, _ := c.DeckList(id)
		out[id] = list
	}
	return out
}

// RandomDecks draws n distinct deck ids using the provided random source.
func (c *Catalog) RandomDecks(n int, rng *rand.Rand) []string {
	ids := c.DeckIDs()
	if n >= len(ids) {
		return ids
	}
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	picked := ids[:n]
	sort.Strings(picked)
	return picked
}

// Token returns the token archetype for a deck, or ok=false when the deck
// grants no token pool.
func (c *Catalog) Token(deckID string) (TokenInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.decks[strings.TrimSpace(deckID)]
	if !ok || def.Token == nil {
		return TokenInfo{}, false
	}
	return *def.Token, true
}

// DeckName returns the display name for a deck id.
func (c *Catalog) DeckName(id string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if def, ok := c.decks[strings.TrimSpace(id)]; ok {
		return def.Name
	}
	return ""
}
