package favorites

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/modernhn/modernhn/cmd/cli/config"
	"github.com/modernhn/modernhn/cmd/cli/output"
	"github.com/modernhn/modernhn/cmd/cli/root"
	"github.com/modernhn/modernhn/internal/hn"
)

func init() {
	favoritesCmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage your saved stories",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List your favorites",
		RunE:  runList,
	}

	addCmd := &cobra.Command{
		Use:   "add <storyId>",
		Short: "Save a Hacker News story by its item ID",
		Args:  cobra.ExactArgs(1),
		RunE:  runAdd,
	}

	removeCmd := &cobra.Command{
		Use:   "remove <storyId>",
		Short: "Remove a story from your favorites",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemove,
	}

	favoritesCmd.AddCommand(listCmd, addCmd, removeCmd)
	root.GetRoot().AddCommand(favoritesCmd)
}

func authToken() (string, error) {
	token := config.LoadToken()
	if token == "" {
		return "", fmt.Errorf("not logged in; run 'modernhn auth login' first")
	}
	return token, nil
}

func runList(cmd *cobra.Command, args []string) error {
	token, err := authToken()
	if err != nil {
		return err
	}

	req, _ := http.NewRequest(http.MethodGet, config.APIURL()+"/api/favorites", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error: %s", string(data))
	}

	var out struct {
		Favorites []struct {
			StoryID int     `json:"storyId"`
			Title   string  `json:"title"`
			URL     *string `json:"url"`
			By      string  `json:"by"`
			Score   int     `json:"score"`
		} `json:"favorites"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("invalid favorites response: %w", err)
	}

	rows := make([][]interface{}, 0, len(out.Favorites))
	for _, f := range out.Favorites {
		url := ""
		if f.URL != nil {
			url = *f.URL
		}
		rows = append(rows, []interface{}{f.StoryID, f.Title, f.By, f.Score, url})
	}
	output.RenderTable([]string{"Story", "Title", "By", "Score", "URL"}, rows)
	return nil
}

// runAdd fetches the story from Hacker News so the snapshot fields match what
// the site shows, then saves it through the API.
func runAdd(cmd *cobra.Command, args []string) error {
	token, err := authToken()
	if err != nil {
		return err
	}
	storyID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("storyId must be an integer")
	}

	item, err := hn.NewClient().Item(context.Background(), storyID)
	if err != nil {
		return fmt.Errorf("fetch story: %w", err)
	}
	if item.Title == "" {
		return fmt.Errorf("story %d not found on Hacker News", storyID)
	}

	payload := map[string]interface{}{
		"storyId": item.ID,
		"title":   item.Title,
		"by":      item.By,
		"score":   item.Score,
		"time":    item.Time,
	}
	if item.URL != "" {
		payload["url"] = item.URL
	}
	body, _ := json.Marshal(payload)

	req, _ := http.NewRequest(http.MethodPost, config.APIURL()+"/api/favorites", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("API error: %s", string(data))
	}

	fmt.Printf("Saved %q\n", item.Title)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	token, err := authToken()
	if err != nil {
		return err
	}
	if _, err := strconv.Atoi(args[0]); err != nil {
		return fmt.Errorf("storyId must be an integer")
	}

	req, _ := http.NewRequest(http.MethodDelete, config.APIURL()+"/api/favorites/"+args[0], nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error: %s", string(data))
	}

	fmt.Println("Removed.")
	return nil
}
