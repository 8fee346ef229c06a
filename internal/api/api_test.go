package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/wavescan/internal/journal"
	"github.com/starford/wavescan/internal/testutil"
)

type fakeRecorder struct {
	entries   []journal.Entry
	lastLimit int
	err       error
}

func (f *fakeRecorder) Record(e journal.Entry) error { f.entries = append(f.entries, e); return nil }
func (f *fakeRecorder) Recent(limit int) ([]journal.Entry, error) {
	f.lastLimit = limit
	return f.entries, f.err
}
func (f *fakeRecorder) Close() error { return nil }

func TestOutcomes_ListsJournalRows(t *testing.T) {
	rec := &fakeRecorder{entries: []journal.Entry{
		{Path: "/waves/a.png", Outcome: "classified", Token: "PO904821", Destination: "/done/PO904821_ab12cd.png", ProcessedAt: time.Now()},
		{Path: "/waves/b.png", Outcome: "unclassified", Destination: "/errors/b.png", ProcessedAt: time.Now()},
	}}

	srv := httptest.NewServer(NewRouter(rec, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/outcomes?limit=5")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if rec.lastLimit != 5 {
		t.Errorf("limit = %d, want 5", rec.lastLimit)
	}

	var body OutcomeListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(body.Outcomes))
	}
	if body.Outcomes[0].Token != "PO904821" {
		t.Errorf("token = %q", body.Outcomes[0].Token)
	}
	if body.Outcomes[1].Token != "" {
		t.Errorf("unclassified entry has token %q", body.Outcomes[1].Token)
	}
}

func TestOutcomes_SqliteBackedJournal(t *testing.T) {
	db := testutil.TestJournal(t)
	if err := db.Record(journal.Entry{Path: "/waves/real.png", Outcome: "classified", Token: "PO11", Destination: "/done/PO11_0a1b2c.png"}); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(NewRouter(db, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/outcomes")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body OutcomeListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Outcomes) != 1 || body.Outcomes[0].Token != "PO11" {
		t.Errorf("outcomes = %+v", body.Outcomes)
	}
}

func TestOutcomes_JournalErrorIs500(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("db gone")}

	srv := httptest.NewServer(NewRouter(rec, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/outcomes")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	var body errResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error == "" {
		t.Error("empty error body")
	}
}
