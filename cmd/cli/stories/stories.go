package stories

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/modernhn/modernhn/cmd/cli/output"
	"github.com/modernhn/modernhn/cmd/cli/root"
	"github.com/modernhn/modernhn/internal/hn"
)

func init() {
	storiesCmd := &cobra.Command{
		Use:   "stories",
		Short: "Browse Hacker News stories",
	}

	var limit int
	storiesCmd.PersistentFlags().IntVar(&limit, "limit", 30, "number of stories to show")

	feeds := []struct {
		use   string
		short string
		feed  hn.Feed
	}{
		{"top", "Show top stories", hn.FeedTop},
		{"new", "Show newest stories", hn.FeedNew},
		{"best", "Show best stories", hn.FeedBest},
	}
	for _, f := range feeds {
		feed := f.feed
		storiesCmd.AddCommand(&cobra.Command{
			Use:   f.use,
			Short: f.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				return renderFeed(feed, limit)
			},
		})
	}

	root.GetRoot().AddCommand(storiesCmd)
}

func renderFeed(feed hn.Feed, limit int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	items, err := hn.NewClient().Stories(ctx, feed, limit)
	if err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(items))
	for _, item := range items {
		rows = append(rows, []interface{}{
			item.ID,
			item.Title,
			item.By,
			item.Score,
			time.Unix(item.Time, 0).Format("2006-01-02 15:04"),
		})
	}
	output.RenderTable([]string{"ID", "Title", "By", "Score", "Posted"}, rows)
	return nil
}
