package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"nutriquest/internal/game"
	"nutriquest/internal/models"
	"nutriquest/internal/repository"
)

// ContentPack is the YAML document the content catalog is seeded from
type ContentPack struct {
	Version string     `yaml:"version"`
	Games   []GamePack `yaml:"games"`
}

// GamePack is one game's content plus optional rule overrides. Rules is kept
// as a raw node and applied on top of the built-in table when a session is
// created.
type GamePack struct {
	ID         string          `yaml:"id"`
	TimeBudget int             `yaml:"time_budget"`
	Rules      yaml.Node       `yaml:"rules"`
	Items      []game.PlayItem `yaml:"items"`
}

// ContentService manages the content catalog and resolves per-game rules
type ContentService struct {
	repo  *repository.ContentRepository
	debug bool
}

// NewContentService creates a new content service
func NewContentService(repo *repository.ContentRepository, debug bool) *ContentService {
	return &ContentService{repo: repo, debug: debug}
}

// Loader returns the content loader sessions fetch their items from
func (s *ContentService) Loader() game.ContentLoader {
	return s.repo
}

// ParsePack decodes and validates a content pack
func ParsePack(r io.Reader) (*ContentPack, error) {
	var pack ContentPack
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&pack); err != nil {
		return nil, fmt.Errorf("failed to parse content pack: %w", err)
	}

	seen := make(map[string]bool)
	for i := range pack.Games {
		gp := &pack.Games[i]
		if seen[gp.ID] {
			return nil, fmt.Errorf("game %s listed twice", gp.ID)
		}
		seen[gp.ID] = true

		rules, err := gp.resolveRules()
		if err != nil {
			return nil, err
		}
		set := &game.ContentSet{GameID: gp.ID, Items: gp.Items}
		set.Normalize()
		if err := set.Validate(rules.Scoring); err != nil {
			return nil, err
		}
	}
	return &pack, nil
}

// resolveRules applies the pack's overrides to the built-in table
func (gp *GamePack) resolveRules() (game.Rules, error) {
	rules, err := game.DefaultRules(gp.ID)
	if err != nil {
		return game.Rules{}, err
	}
	overrides, err := gp.rulesYAML()
	if err != nil {
		return game.Rules{}, err
	}
	return applyOverrides(rules, overrides, gp.TimeBudget)
}

func (gp *GamePack) rulesYAML() (string, error) {
	if gp.Rules.Kind == 0 {
		return "", nil
	}
	out, err := yaml.Marshal(&gp.Rules)
	if err != nil {
		return "", fmt.Errorf("failed to encode rules for %s: %w", gp.ID, err)
	}
	return string(out), nil
}

// applyOverrides decodes YAML overrides onto a copy of rules. Fields the
// overrides leave out keep their built-in values.
func applyOverrides(rules game.Rules, overrides string, timeBudget int) (game.Rules, error) {
	id := rules.GameID
	if overrides != "" {
		if err := yaml.Unmarshal([]byte(overrides), &rules); err != nil {
			return game.Rules{}, fmt.Errorf("invalid rule overrides for %s: %w", id, err)
		}
	}
	rules.GameID = id
	if timeBudget > 0 {
		rules.TimeBudget = timeBudget
	}
	if err := rules.Validate(); err != nil {
		return game.Rules{}, err
	}
	return rules, nil
}

// SeedFromFile loads the content pack at path into the catalog. Games that
// already have content are left alone unless force is set.
func (s *ContentService) SeedFromFile(ctx context.Context, path string, force bool) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !force {
			log.Printf("Content pack %s not found, skipping seed", path)
			return nil
		}
		return fmt.Errorf("failed to open content pack: %w", err)
	}
	defer f.Close()
	return s.Seed(ctx, f, force)
}

// Seed loads a content pack from r
func (s *ContentService) Seed(ctx context.Context, r io.Reader, force bool) error {
	pack, err := ParsePack(r)
	if err != nil {
		return err
	}

	for i := range pack.Games {
		gp := &pack.Games[i]
		count, err := s.repo.CountItems(ctx, gp.ID)
		if err != nil {
			return err
		}
		if count > 0 && !force {
			if s.debug {
				log.Printf("[DEBUG] Content for %s already present (%d items), skipping", gp.ID, count)
			}
			continue
		}

		if err := s.repo.ReplaceGameContent(ctx, gp.ID, gp.Items); err != nil {
			return err
		}
		overrides, err := gp.rulesYAML()
		if err != nil {
			return err
		}
		settings := models.GameSettings{GameID: gp.ID, TimeBudget: gp.TimeBudget, Rules: overrides}
		if err := s.repo.SaveSettings(ctx, settings); err != nil {
			return err
		}
		log.Printf("Seeded %d items for %s", len(gp.Items), gp.ID)
	}
	return nil
}

// RulesFor returns the rule table a new session of gameID runs with
func (s *ContentService) RulesFor(ctx context.Context, gameID string) (game.Rules, error) {
	rules, err := game.DefaultRules(gameID)
	if err != nil {
		return game.Rules{}, err
	}
	settings, err := s.repo.GetSettings(ctx, gameID)
	if err != nil {
		return game.Rules{}, err
	}
	if settings == nil {
		return rules, nil
	}
	return applyOverrides(rules, settings.Rules, settings.TimeBudget)
}

// Catalog lists every built-in game with its effective rules and content size
func (s *ContentService) Catalog(ctx context.Context) ([]models.GameSummary, error) {
	var out []models.GameSummary
	for _, id := range game.GameIDs() {
		rules, err := s.RulesFor(ctx, id)
		if err != nil {
			return nil, err
		}
		set, err := s.repo.Fetch(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, models.GameSummary{
			GameID:     id,
			Title:      rules.Title,
			Scoring:    string(rules.Scoring),
			TimeBudget: rules.TimeBudget,
			TimerScope: string(rules.TimerScope),
			Lives:      rules.Lives,
			Items:      set.Size(),
			Rounds:     set.Rounds(),
		})
	}
	return out, nil
}
