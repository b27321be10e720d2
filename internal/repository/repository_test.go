package repository

import (
	"context"
	"path/filepath"
	"testing"

	"nutriquest/internal/database"
	"nutriquest/internal/game"
	"nutriquest/internal/models"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	db, err := database.Initialize(filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(context.Background(), filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func TestContentRepositoryFetch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)
	ctx := context.Background()

	items := []game.PlayItem{
		{ID: "pair-b", Round: 2, Prompt: "Fish", Match: "Healthy heart"},
		{ID: "pair-a", Round: 1, Prompt: "Milk", Match: "Strong bones"},
		{ID: "pair-c", Prompt: "Carrot", Match: "Good eyesight"},
	}
	if err := repo.ReplaceGameContent(ctx, game.GameMemory, items); err != nil {
		t.Fatalf("ReplaceGameContent failed: %v", err)
	}

	set, err := repo.Fetch(ctx, game.GameMemory)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if set.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", set.Size())
	}
	order := []string{set.Items[0].ID, set.Items[1].ID, set.Items[2].ID}
	want := []string{"pair-a", "pair-c", "pair-b"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("item order = %v, want %v", order, want)
		}
	}
	if set.Items[1].Round != 1 || set.Items[0].Match != "Strong bones" {
		t.Errorf("decoded items = %+v", set.Items)
	}
	if set.TimeBudget != 0 {
		t.Errorf("TimeBudget = %d, want 0 without settings", set.TimeBudget)
	}

	if err := repo.SaveSettings(ctx, models.GameSettings{GameID: game.GameMemory, TimeBudget: 120, Rules: "round_break: false"}); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	set, err = repo.Fetch(ctx, game.GameMemory)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if set.TimeBudget != 120 {
		t.Errorf("TimeBudget = %d, want 120", set.TimeBudget)
	}

	// Replacing drops the old items
	if err := repo.ReplaceGameContent(ctx, game.GameMemory, items[:1]); err != nil {
		t.Fatalf("ReplaceGameContent failed: %v", err)
	}
	count, err := repo.CountItems(ctx, game.GameMemory)
	if err != nil {
		t.Fatalf("CountItems failed: %v", err)
	}
	if count != 1 {
		t.Errorf("CountItems() = %d, want 1", count)
	}

	empty, err := repo.Fetch(ctx, game.GameTrivia)
	if err != nil {
		t.Fatalf("Fetch of an empty game failed: %v", err)
	}
	if empty.Size() != 0 {
		t.Errorf("Size() = %d, want 0", empty.Size())
	}
}

func TestTutorialRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTutorialRepository(db)
	ctx := context.Background()

	gate := repo.ForPlayer("player-1")
	seen, err := gate.HasSeen(ctx, game.GameTrivia)
	if err != nil {
		t.Fatalf("HasSeen failed: %v", err)
	}
	if seen {
		t.Fatal("fresh player has seen the tutorial")
	}

	for i := 0; i < 2; i++ {
		if err := gate.MarkSeen(ctx, game.GameTrivia); err != nil {
			t.Fatalf("MarkSeen failed: %v", err)
		}
	}
	if seen, _ := gate.HasSeen(ctx, game.GameTrivia); !seen {
		t.Error("flag not stored")
	}
	if seen, _ := repo.ForPlayer("player-2").HasSeen(ctx, game.GameTrivia); seen {
		t.Error("flag leaked to another player")
	}
	if seen, _ := gate.HasSeen(ctx, game.GameMemory); seen {
		t.Error("flag leaked to another game")
	}

	flags, err := repo.ListFlags(ctx)
	if err != nil {
		t.Fatalf("ListFlags failed: %v", err)
	}
	if len(flags) != 1 {
		t.Errorf("ListFlags() = %d flags, want 1", len(flags))
	}
}

func TestResultRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResultRepository(db)
	ctx := context.Background()

	first := game.SessionResult{
		SessionID: "s-1", GameID: game.GameTrivia, Score: 30, CorrectAnswers: 3, TotalQuestions: 5,
		Extra: map[string]any{"status": "GAME_OVER", "lives": 0},
	}
	second := first
	second.Score = 50
	second.Extra = map[string]any{"status": "COMPLETED", "lives": 2}

	saved, err := repo.Save(ctx, "player-1", first)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.ID <= 0 || saved.Status != "GAME_OVER" {
		t.Errorf("saved = %+v", saved)
	}
	if _, err := repo.Save(ctx, "player-1", second); err != nil {
		t.Fatalf("Save of a restarted run failed: %v", err)
	}
	if _, err := repo.Save(ctx, "player-2", game.SessionResult{SessionID: "s-2", GameID: game.GamePlate, Extra: map[string]any{"status": "EXITED"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	latest, err := repo.GetLatestForSession(ctx, "s-1")
	if err != nil {
		t.Fatalf("GetLatestForSession failed: %v", err)
	}
	if latest == nil || latest.Score != 50 || latest.Status != "COMPLETED" {
		t.Fatalf("latest = %+v", latest)
	}
	if latest.Extra["lives"] != float64(2) {
		t.Errorf("extra lives = %v, want 2", latest.Extra["lives"])
	}

	missing, err := repo.GetLatestForSession(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("GetLatestForSession(nope) = %v, %v", missing, err)
	}

	recent, err := repo.ListRecentByPlayer(ctx, "player-1", 10)
	if err != nil {
		t.Fatalf("ListRecentByPlayer failed: %v", err)
	}
	if len(recent) != 2 || recent[0].Score != 50 {
		t.Errorf("recent = %+v", recent)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListAll() = %d results, want 3", len(all))
	}
}

func TestContactRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()

	if c, err := repo.Get(ctx, "player-1"); err != nil || c != nil {
		t.Fatalf("Get before save = %v, %v", c, err)
	}

	contact := models.PlayerContact{PlayerID: "player-1", DisplayName: "Sam", ParentEmail: "parent@example.com", Notify: true}
	if err := repo.Save(ctx, contact); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	contact.Notify = false
	if err := repo.Save(ctx, contact); err != nil {
		t.Fatalf("Save update failed: %v", err)
	}

	got, err := repo.Get(ctx, "player-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.ParentEmail != "parent@example.com" || got.Notify {
		t.Errorf("contact = %+v", got)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("ListAll() = %d contacts, want 1", len(all))
	}
}
