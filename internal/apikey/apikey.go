// Package apikey manages the server's shared bearer token.
package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load resolves the API key: an explicit key wins, otherwise the key
// file at path is read, generated on first start with 0600
// permissions.
func Load(path, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		key := strings.TrimSpace(string(raw))
		if key != "" {
			return key, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("read api key file: %w", err)
	}

	key, err := Generate()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create key dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(key+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write api key file: %w", err)
	}
	return key, nil
}

// Generate returns 32 random bytes as 64 hex characters.
func Generate() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Mask renders a key safe for logs: first and last four characters.
func Mask(key string) string {
	if len(key) < 12 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
