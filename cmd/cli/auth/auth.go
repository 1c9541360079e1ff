package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/modernhn/modernhn/cmd/cli/config"
	"github.com/modernhn/modernhn/cmd/cli/root"
)

func init() {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Register, login, and logout",
		Long: `Register or login a user against the ModernHN API.
Stores the JWT token locally for future commands.`,
	}

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		RunE:  runRegister,
	}

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Login with email and password",
		RunE:  runLogin,
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Logout current user",
		Long:  "Remove the locally saved JWT token. The token itself stays valid until it expires.",
		RunE:  runLogout,
	}

	authCmd.AddCommand(registerCmd, loginCmd, logoutCmd)
	root.GetRoot().AddCommand(authCmd)
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	var username, email, ageStr string
	fmt.Print("Username: ")
	fmt.Scanln(&username)
	fmt.Print("Email: ")
	fmt.Scanln(&email)
	fmt.Print("Age: ")
	fmt.Scanln(&ageStr)
	age, err := strconv.Atoi(ageStr)
	if err != nil {
		return fmt.Errorf("age must be a number")
	}
	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"username": username,
		"email":    email,
		"password": password,
		"age":      age,
	}
	body, _ := json.Marshal(payload)

	resp, err := http.Post(config.APIURL()+"/api/auth/register", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("API error: %s", string(data))
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &out); err != nil || out.Token == "" {
		return fmt.Errorf("invalid register response")
	}
	if err := config.SaveToken(out.Token); err != nil {
		return err
	}

	fmt.Println("Registered and logged in.")
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	var email string
	fmt.Print("Email: ")
	fmt.Scanln(&email)
	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	body, _ := json.Marshal(map[string]string{"email": email, "password": password})

	resp, err := http.Post(config.APIURL()+"/api/auth/login", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error: %s", string(data))
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &out); err != nil || out.Token == "" {
		return fmt.Errorf("invalid login response")
	}
	if err := config.SaveToken(out.Token); err != nil {
		return err
	}

	fmt.Println("Logged in.")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := config.ClearToken(); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}
