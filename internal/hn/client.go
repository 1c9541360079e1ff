package hn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// DefaultBaseURL is the public Hacker News Firebase API.
const DefaultBaseURL = "https://hacker-news.firebaseio.com/v0"

// Feed selects which story list to fetch.
type Feed string

const (
	FeedTop  Feed = "topstories"
	FeedNew  Feed = "newstories"
	FeedBest Feed = "beststories"
)

// Item is a Hacker News item as returned by the public API. Only the fields
// the app displays and snapshots are decoded.
type Item struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
	By    string `json:"by"`
	Score int    `json:"score"`
	Time  int64  `json:"time"`
	Type  string `json:"type"`
}

// Client fetches stories from the Hacker News API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient() *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// StoryIDs returns the item IDs for a feed.
func (c *Client) StoryIDs(ctx context.Context, feed Feed) ([]int, error) {
	var ids []int
	if err := c.getJSON(ctx, fmt.Sprintf("%s/%s.json", c.BaseURL, feed), &ids); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", feed, err)
	}
	return ids, nil
}

// Item returns one item by ID.
func (c *Client) Item(ctx context.Context, id int) (*Item, error) {
	item := &Item{}
	if err := c.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", c.BaseURL, id), item); err != nil {
		return nil, fmt.Errorf("fetch item %d: %w", id, err)
	}
	return item, nil
}

// Stories fetches the first limit items of a feed, hydrating them with bounded
// concurrency. Items that fail to load are skipped rather than failing the page.
func (c *Client) Stories(ctx context.Context, feed Feed, limit int) ([]Item, error) {
	ids, err := c.StoryIDs(ctx, feed)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	items := make([]*Item, len(ids))
	sem := make(chan struct{}, 8)
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			item, err := c.Item(ctx, id)
			if err == nil {
				items[i] = item
			}
		}(i, id)
	}
	wg.Wait()

	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item != nil && item.Title != "" {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
