package game

import (
	"fmt"
	"sort"
)

// Option is one food a player can put on a plate.
type Option struct {
	ID      string `json:"id" yaml:"id"`
	Label   string `json:"label" yaml:"label"`
	Healthy bool   `json:"healthy" yaml:"healthy"`
}

// PlayItem is one unit of play content: a trivia question, a food to sort,
// a food/benefit pair or a plate-building round.
type PlayItem struct {
	ID     string `json:"id" yaml:"id"`
	Round  int    `json:"round" yaml:"round"`
	Prompt string `json:"prompt" yaml:"prompt"`

	// Trivia
	Choices     []string `json:"choices,omitempty" yaml:"choices,omitempty"`
	AnswerIndex int      `json:"answerIndex,omitempty" yaml:"answer_index,omitempty"`

	// Sorting: the drop zone the food belongs in
	TypeTag string `json:"typeTag,omitempty" yaml:"type_tag,omitempty"`

	// Memory: the benefit card that pairs with Prompt
	Match string `json:"match,omitempty" yaml:"match,omitempty"`

	// Plate building
	Options  []Option `json:"options,omitempty" yaml:"options,omitempty"`
	Expected []string `json:"expected,omitempty" yaml:"expected,omitempty"`

	// Points overrides the rule table's base points when positive
	Points int `json:"points,omitempty" yaml:"points,omitempty"`
}

// ExpectedSet returns the option ids that make a perfect plate. When the item
// does not list them explicitly, every healthy option is expected.
func (it PlayItem) ExpectedSet() map[string]bool {
	set := make(map[string]bool)
	if len(it.Expected) > 0 {
		for _, id := range it.Expected {
			set[id] = true
		}
		return set
	}
	for _, opt := range it.Options {
		if opt.Healthy {
			set[opt.ID] = true
		}
	}
	return set
}

func (it PlayItem) option(id string) (Option, bool) {
	for _, opt := range it.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// ContentSet is the ordered play content for one game plus its time budget.
// It is read-only once loaded.
type ContentSet struct {
	GameID     string     `json:"gameId"`
	TimeBudget int        `json:"timeBudget"`
	Items      []PlayItem `json:"items"`
}

// Size returns the number of play items.
func (c *ContentSet) Size() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

// RoundOf returns the round number of the item at index i, or 0 when i is out
// of range.
func (c *ContentSet) RoundOf(i int) int {
	if c == nil || i < 0 || i >= len(c.Items) {
		return 0
	}
	return c.Items[i].Round
}

// RoundSize returns how many items belong to the given round.
func (c *ContentSet) RoundSize(round int) int {
	n := 0
	for _, it := range c.Items {
		if it.Round == round {
			n++
		}
	}
	return n
}

// Rounds returns the number of distinct rounds.
func (c *ContentSet) Rounds() int {
	seen := make(map[int]bool)
	for _, it := range c.Items {
		seen[it.Round] = true
	}
	return len(seen)
}

// Normalize assigns round 1 to items without a round and orders items by
// round, keeping the original order inside a round.
func (c *ContentSet) Normalize() {
	for i := range c.Items {
		if c.Items[i].Round <= 0 {
			c.Items[i].Round = 1
		}
	}
	sort.SliceStable(c.Items, func(i, j int) bool {
		return c.Items[i].Round < c.Items[j].Round
	})
}

// Validate checks that every item carries the correctness criterion the
// scoring kind needs.
func (c *ContentSet) Validate(kind ScoringKind) error {
	if c.Size() == 0 {
		return fmt.Errorf("game %q has no play items", c.GameID)
	}
	ids := make(map[string]bool, len(c.Items))
	for _, it := range c.Items {
		if it.ID == "" {
			return fmt.Errorf("game %q: item without id", c.GameID)
		}
		if ids[it.ID] {
			return fmt.Errorf("game %q: duplicate item id %q", c.GameID, it.ID)
		}
		ids[it.ID] = true

		switch kind {
		case ScoringBinary:
			if len(it.Choices) == 0 && it.TypeTag == "" {
				return fmt.Errorf("item %q: needs choices or a type tag", it.ID)
			}
			if len(it.Choices) > 0 && (it.AnswerIndex < 0 || it.AnswerIndex >= len(it.Choices)) {
				return fmt.Errorf("item %q: answer index %d out of range", it.ID, it.AnswerIndex)
			}
		case ScoringMatching:
			if it.Prompt == "" || it.Match == "" {
				return fmt.Errorf("item %q: pair needs both a prompt and a match", it.ID)
			}
		case ScoringMultiSelect:
			if len(it.Options) == 0 {
				return fmt.Errorf("item %q: plate round has no options", it.ID)
			}
			for _, id := range it.Expected {
				if _, ok := it.option(id); !ok {
					return fmt.Errorf("item %q: expected option %q is not offered", it.ID, id)
				}
			}
		}
	}
	return nil
}

// Side identifies which face of a memory pair a card shows.
type Side string

const (
	SideFood    Side = "food"
	SideBenefit Side = "benefit"
)

// Card is one flipped memory card.
type Card struct {
	PairID string `json:"pairId"`
	Side   Side   `json:"side"`
}

// Attempt is a single player action resolved against the active item.
type Attempt struct {
	// ItemID, when set, must name the active item; attempts aimed at an item
	// that is no longer active are ignored.
	ItemID   string   `json:"itemId,omitempty"`
	Choice   *int     `json:"choice,omitempty"`
	Zone     string   `json:"zone,omitempty"`
	Selected []string `json:"selected,omitempty"`
	Card     *Card    `json:"card,omitempty"`
}

// ChoiceAt returns a choice index for an Attempt.
func ChoiceAt(i int) *int {
	return &i
}
