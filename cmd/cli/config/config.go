package config

import (
	"os"
	"path/filepath"
	"strings"
)

const defaultAPIURL = "http://localhost:4001"

const tokenFileName = ".modernhn_token"

// APIURL returns the base URL for the ModernHN API.
// It can be overridden with the MODERNHN_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("MODERNHN_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

func tokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return tokenFileName
	}
	return filepath.Join(home, tokenFileName)
}

// SaveToken stores the JWT for later commands.
func SaveToken(token string) error {
	return os.WriteFile(tokenPath(), []byte(token), 0o600)
}

// LoadToken returns the stored JWT, or "" when not logged in.
func LoadToken() string {
	data, err := os.ReadFile(tokenPath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ClearToken removes the stored JWT.
func ClearToken() error {
	err := os.Remove(tokenPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
