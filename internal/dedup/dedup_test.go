package dedup

import (
	"context"
	"testing"

	"newsbrief/internal/model"
)

type fakeStore struct {
	existing []*model.Article
	recent   []model.RecentText
}

func (f *fakeStore) FindExisting(ctx context.Context, url, dedupKey string) (*model.Article, error) {
	for _, a := range f.existing {
		if a.URL == url || (dedupKey != "" && a.DedupKey == dedupKey) {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Recent(ctx context.Context, limit int) ([]model.RecentText, error) {
	if limit < len(f.recent) {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func TestMakeDedupKey(t *testing.T) {
	k1 := MakeDedupKey("title", "https://a.com/x")
	k2 := MakeDedupKey("title", "https://a.com/x")
	k3 := MakeDedupKey("other", "https://a.com/x")

	if len(k1) != 32 {
		t.Errorf("key length = %d, want 32", len(k1))
	}
	if k1 != k2 {
		t.Errorf("same input produced different keys: %q vs %q", k1, k2)
	}
	if k1 == k3 {
		t.Errorf("different titles produced the same key")
	}
}

func TestIsDuplicateExactURL(t *testing.T) {
	store := &fakeStore{existing: []*model.Article{{URL: "https://a.com/x", DedupKey: "abc"}}}
	e := NewEngine(store, 0, 0)

	dup, err := e.IsDuplicate(context.Background(), &model.Candidate{
		Title: "Anything", URL: "https://a.com/x", DedupKey: "zzz",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dup {
		t.Errorf("expected exact URL match to be a duplicate")
	}
}

func TestIsDuplicateExactDedupKey(t *testing.T) {
	store := &fakeStore{existing: []*model.Article{{URL: "https://a.com/other", DedupKey: "abc"}}}
	e := NewEngine(store, 0, 0)

	dup, err := e.IsDuplicate(context.Background(), &model.Candidate{
		Title: "Anything", URL: "https://a.com/x", DedupKey: "abc",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dup {
		t.Errorf("expected dedup key match to be a duplicate")
	}
}

func TestIsDuplicateNearMatch(t *testing.T) {
	store := &fakeStore{recent: []model.RecentText{
		{Title: "Apple releases new iPhone this week"},
	}}
	e := NewEngine(store, 0, 0)

	dup, err := e.IsDuplicate(context.Background(), &model.Candidate{
		Title: "Apple releases new iPhone today", URL: "https://b.com/y", DedupKey: "k1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dup {
		t.Errorf("expected high token overlap to be flagged as near-duplicate")
	}
}

func TestIsDuplicateUnrelatedTopics(t *testing.T) {
	store := &fakeStore{recent: []model.RecentText{
		{Title: "Stock market falls amid banking worries", Snippet: "Indexes dropped sharply on Monday"},
	}}
	e := NewEngine(store, 0, 0)

	dup, err := e.IsDuplicate(context.Background(), &model.Candidate{
		Title: "Apple releases new iPhone today", URL: "https://b.com/y", DedupKey: "k1",
		Snippet: "The new device ships next month",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dup {
		t.Errorf("unrelated articles must not be flagged as duplicates")
	}
}

func TestIsDuplicateEmptyBaseText(t *testing.T) {
	store := &fakeStore{recent: []model.RecentText{
		{Title: "", Snippet: ""},
	}}
	e := NewEngine(store, 0, 0)

	dup, err := e.IsDuplicate(context.Background(), &model.Candidate{
		Title: "  ", URL: "https://b.com/y", DedupKey: "k1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dup {
		t.Errorf("empty base text must never match")
	}
}
