package hn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

func fakeHN(t *testing.T, ids []int, items map[int]Item) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "stories.json"):
			json.NewEncoder(w).Encode(ids)
		case strings.HasPrefix(r.URL.Path, "/item/"):
			idStr := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/item/"), ".json")
			id, err := strconv.Atoi(idStr)
			if err != nil {
				http.NotFound(w, r)
				return
			}
			item, ok := items[id]
			if !ok {
				// The real API returns "null" for unknown items.
				fmt.Fprint(w, "null")
				return
			}
			json.NewEncoder(w).Encode(item)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestClient_StoryIDs(t *testing.T) {
	srv := fakeHN(t, []int{3, 1, 2}, nil)
	defer srv.Close()

	c := NewClient()
	c.BaseURL = srv.URL

	ids, err := c.StoryIDs(context.Background(), FeedTop)
	if err != nil {
		t.Fatalf("StoryIDs: %v", err)
	}
	if len(ids) != 3 || ids[0] != 3 || ids[1] != 1 || ids[2] != 2 {
		t.Errorf("unexpected ids: %v", ids)
	}
}

func TestClient_Stories(t *testing.T) {
	items := map[int]Item{
		1: {ID: 1, Title: "First", By: "alice", Score: 100, Time: 1700000000, Type: "story"},
		2: {ID: 2, Title: "Second", By: "bob", Score: 50, Time: 1700000100, Type: "story"},
		3: {ID: 3, Title: "Third", By: "carol", Score: 10, Time: 1700000200, Type: "story"},
	}
	srv := fakeHN(t, []int{1, 2, 3}, items)
	defer srv.Close()

	c := NewClient()
	c.BaseURL = srv.URL

	stories, err := c.Stories(context.Background(), FeedTop, 2)
	if err != nil {
		t.Fatalf("Stories: %v", err)
	}
	if len(stories) != 2 {
		t.Fatalf("expected 2 stories, got %d", len(stories))
	}
	// Feed order is preserved.
	if stories[0].ID != 1 || stories[1].ID != 2 {
		t.Errorf("unexpected order: %+v", stories)
	}
}

func TestClient_Stories_SkipsFailedItems(t *testing.T) {
	items := map[int]Item{
		1: {ID: 1, Title: "Only survivor", By: "alice", Score: 100, Time: 1700000000, Type: "story"},
		// 2 is missing: the API returns null and the item is dropped.
	}
	srv := fakeHN(t, []int{1, 2}, items)
	defer srv.Close()

	c := NewClient()
	c.BaseURL = srv.URL

	stories, err := c.Stories(context.Background(), FeedTop, 0)
	if err != nil {
		t.Fatalf("Stories: %v", err)
	}
	if len(stories) != 1 || stories[0].ID != 1 {
		t.Errorf("unexpected stories: %+v", stories)
	}
}

func TestClient_Item_NotOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient()
	c.BaseURL = srv.URL

	if _, err := c.Item(context.Background(), 1); err == nil {
		t.Error("expected error for 500 response")
	}
}
