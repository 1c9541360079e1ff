package models

import "time"

// Favorite is a user's saved story, snapshotted at save time. It is never kept
// in sync with Hacker News afterward.
type Favorite struct {
	ID        int       `json:"id"`
	UserID    int       `json:"userId"`
	StoryID   int       `json:"storyId"`
	Title     string    `json:"title"`
	URL       *string   `json:"url"`
	By        string    `json:"by"`
	Score     int       `json:"score"`
	Time      int64     `json:"time"`
	CreatedAt time.Time `json:"createdAt"`
}
