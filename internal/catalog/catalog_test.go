package catalog

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedCatalogLoads(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ids := c.DeckIDs()
	if len(ids) < 4 {
		t.Fatalf("catalog carries %d decks", len(ids))
	}
	for _, id := range ids {
		list, ok := c.DeckList(id)
		if !ok {
			t.Fatalf("DeckList(%s) missing", id)
		}
		if len(list) != 30 {
			t.Fatalf("deck %s expands to %d cards, want 30", id, len(list))
		}
		for _, cardID := range list {
			if _, ok := c.Card(cardID); !ok {
				t.Fatalf("deck %s references unknown card %s", id, cardID)
			}
		}
		if c.DeckName(id) == "" {
			t.Fatalf("deck %s has no display name", id)
		}
	}
}

func TestTokenLookup(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tok, ok := c.Token("assassin")
	if !ok || tok.Type != "assassin" || tok.Count != 8 {
		t.Fatalf("assassin token: %+v %v", tok, ok)
	}
	if _, ok := c.Token("dragon"); ok {
		t.Fatalf("dragon should grant no token pool")
	}
	if _, ok := c.Token("nope"); ok {
		t.Fatalf("unknown deck should grant no token pool")
	}

	card, ok := c.Card("token")
	if !ok || card.Type != TypeToken {
		t.Fatalf("bare token card: %+v %v", card, ok)
	}
}

func TestRandomDecksDistinct(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(3))

	picked := c.RandomDecks(4, rng)
	if len(picked) != 4 {
		t.Fatalf("picked %d decks", len(picked))
	}
	seen := map[string]bool{}
	for _, id := range picked {
		if seen[id] {
			t.Fatalf("duplicate deck in sample: %s", id)
		}
		seen[id] = true
		if _, ok := c.DeckList(id); !ok {
			t.Fatalf("sampled unknown deck %s", id)
		}
	}
	for i := 1; i < len(picked); i++ {
		if picked[i-1] >= picked[i] {
			t.Fatalf("sample not sorted: %v", picked)
		}
	}

	// asking for more than exist returns everything
	all := c.RandomDecks(100, rng)
	if len(all) != len(c.DeckIDs()) {
		t.Fatalf("oversized sample: %v", all)
	}
}

func writeOverride(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}
}

func TestOverrideDirectory(t *testing.T) {
	dir := t.TempDir()
	writeOverride(t, dir, "cards.yaml", `
cards:
  - { id: alpha, name: Alpha, type: unit }
  - { id: beta, name: Beta, type: unit }
`)
	writeOverride(t, dir, "decks.yaml", `
decks:
  d1: { name: One, cards: [{ id: alpha, copies: 30 }] }
  d2: { name: Two, cards: [{ id: beta, copies: 30 }] }
  d3: { name: Three, cards: [{ id: alpha, copies: 15 }, { id: beta, copies: 15 }] }
  d4: { name: Four, cards: [{ id: beta, copies: 1 }] }
`)

	c, err := New(dir)
	if err != nil {
		t.Fatalf("New with overrides: %v", err)
	}
	if _, ok := c.Card("alpha"); !ok {
		t.Fatalf("override cards not applied")
	}
	if _, ok := c.Card("shadow-blade"); ok {
		t.Fatalf("embedded cards leaked past a whole-file override")
	}
}

func TestOverrideValidation(t *testing.T) {
	// deck referencing an unknown card
	dir := t.TempDir()
	writeOverride(t, dir, "decks.yaml", `
decks:
  d1: { name: One, cards: [{ id: ghost-card, copies: 30 }] }
  d2: { name: Two, cards: [{ id: token, copies: 1 }] }
  d3: { name: Three, cards: [{ id: token, copies: 1 }] }
  d4: { name: Four, cards: [{ id: token, copies: 1 }] }
`)
	if _, err := New(dir); err == nil {
		t.Fatalf("expected unknown-card error")
	}

	// too few decks
	dir = t.TempDir()
	writeOverride(t, dir, "decks.yaml", `
decks:
  d1: { name: One, cards: [{ id: token, copies: 1 }] }
`)
	if _, err := New(dir); err == nil {
		t.Fatalf("expected deck-count error")
	}

	// non-positive copies
	dir = t.TempDir()
	writeOverride(t, dir, "decks.yaml", `
decks:
  d1: { name: One, cards: [{ id: token, copies: 0 }] }
  d2: { name: Two, cards: [{ id: token, copies: 1 }] }
  d3: { name: Three, cards: [{ id: token, copies: 1 }] }
  d4: { name: Four, cards: [{ id: token, copies: 1 }] }
`)
	if _, err := New(dir); err == nil {
		t.Fatalf("expected copies error")
	}
}
