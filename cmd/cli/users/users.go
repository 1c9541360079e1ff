package users

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/modernhn/modernhn/cmd/cli/config"
	"github.com/modernhn/modernhn/cmd/cli/output"
	"github.com/modernhn/modernhn/cmd/cli/root"
)

func init() {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Browse public users",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List users with a public profile",
		RunE:  runList,
	}

	profileCmd := &cobra.Command{
		Use:   "me",
		Short: "Show the logged-in user's profile",
		RunE:  runMe,
	}

	usersCmd.AddCommand(listCmd, profileCmd)
	root.GetRoot().AddCommand(usersCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	resp, err := http.Get(config.APIURL() + "/api/users/public")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error: %s", string(data))
	}

	var out struct {
		Users []struct {
			ID          int    `json:"id"`
			Username    string `json:"username"`
			Age         int    `json:"age"`
			Description string `json:"description"`
		} `json:"users"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("invalid users response: %w", err)
	}

	rows := make([][]interface{}, 0, len(out.Users))
	for _, u := range out.Users {
		rows = append(rows, []interface{}{u.ID, u.Username, u.Age, u.Description})
	}
	output.RenderTable([]string{"ID", "Username", "Age", "Description"}, rows)
	return nil
}

func runMe(cmd *cobra.Command, args []string) error {
	token := config.LoadToken()
	if token == "" {
		return fmt.Errorf("not logged in; run 'modernhn auth login' first")
	}

	req, _ := http.NewRequest(http.MethodGet, config.APIURL()+"/api/users/profile", nil)
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

	var user struct {
		ID                int    `json:"id"`
		Username          string `json:"username"`
		Email             string `json:"email"`
		Age               int    `json:"age"`
		Description       string `json:"description"`
		ProfileVisibility bool   `json:"profileVisibility"`
	}
	if err := json.Unmarshal(data, &user); err != nil {
		return fmt.Errorf("invalid profile response: %w", err)
	}

	output.RenderTable(
		[]string{"ID", "Username", "Email", "Age", "Public"},
		[][]interface{}{{user.ID, user.Username, user.Email, user.Age, user.ProfileVisibility}},
	)
	return nil
}
