package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/dukerupert/flourish/internal/database"
	"github.com/dukerupert/flourish/internal/insight"
	"github.com/dukerupert/flourish/internal/model"
	"github.com/dukerupert/flourish/internal/store"
)

func setupJournalTest(t *testing.T) (*JournalHandler, int64) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}

	u, err := store.NewUserStore(db).Create("journal@example.com", "Journal Tester")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	h := NewJournalHandler(store.NewJournalStore(db), nil, slog.Default())
	return h, u.ID
}

func TestJournalCreateComputesMetrics(t *testing.T) {
	h, userID := setupJournalTest(t)

	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest(t, userID, "POST", "/api/journal", map[string]any{
		"title":   "Good day",
		"content": "I felt happy and grateful today, everything was wonderful",
	}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var entry model.JournalEntry
	if err := json.NewDecoder(rec.Body).Decode(&entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry.Sentiment != insight.SentimentPositive {
		t.Errorf("sentiment = %q, want %q", entry.Sentiment, insight.SentimentPositive)
	}
	if entry.WordCount != 9 {
		t.Errorf("word_count = %d, want 9", entry.WordCount)
	}
	if entry.ReadingTime != 1 {
		t.Errorf("reading_time = %d, want 1", entry.ReadingTime)
	}
}

func TestJournalUpdateRecomputesSentiment(t *testing.T) {
	h, userID := setupJournalTest(t)

	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest(t, userID, "POST", "/api/journal", map[string]any{
		"title":   "Day one",
		"content": "happy happy happy",
	}))
	var entry model.JournalEntry
	json.NewDecoder(rec.Body).Decode(&entry)

	idStr := strconv.FormatInt(entry.ID, 10)
	req := authedRequest(t, userID, "PUT", "/api/journal/"+idStr, map[string]any{
		"title":   "Day one",
		"content": "sad tired awful",
	})
	req.SetPathValue("id", idStr)
	rec = httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var updated model.JournalEntry
	json.NewDecoder(rec.Body).Decode(&updated)
	if updated.Sentiment != insight.SentimentNegative {
		t.Errorf("sentiment = %q, want %q", updated.Sentiment, insight.SentimentNegative)
	}
}

func TestJournalToggleFavorite(t *testing.T) {
	h, userID := setupJournalTest(t)

	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest(t, userID, "POST", "/api/journal", map[string]any{
		"title":   "Entry",
		"content": "some words here",
	}))
	var entry model.JournalEntry
	json.NewDecoder(rec.Body).Decode(&entry)

	idStr := strconv.FormatInt(entry.ID, 10)
	req := authedRequest(t, userID, "POST", "/api/journal/"+idStr+"/favorite", nil)
	req.SetPathValue("id", idStr)
	rec = httptest.NewRecorder()
	h.ToggleFavorite(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var updated model.JournalEntry
	json.NewDecoder(rec.Body).Decode(&updated)
	if !updated.IsFavorite {
		t.Error("entry should be a favorite after toggle")
	}
}

func TestJournalToggleFavoriteNotFound(t *testing.T) {
	h, userID := setupJournalTest(t)

	req := authedRequest(t, userID, "POST", "/api/journal/999/favorite", nil)
	req.SetPathValue("id", "999")
	rec := httptest.NewRecorder()
	h.ToggleFavorite(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestJournalCreateValidation(t *testing.T) {
	h, userID := setupJournalTest(t)

	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest(t, userID, "POST", "/api/journal", map[string]any{
		"title":   "",
		"content": "body",
	}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
