package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Alia5/matrixkb/internal/configpaths"
	"github.com/Alia5/matrixkb/internal/server/api/auth"
)

const keyFileName = "matrixkb.key.txt"

func keyFilePath() (string, error) {
	dir, err := configpaths.DefaultConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve key file path: %w", err)
	}
	return filepath.Join(dir, keyFileName), nil
}

// readKeyFile returns the stored API password, or "" if there is none.
func readKeyFile() string {
	p, err := keyFilePath()
	if err != nil {
		return ""
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// loadOrCreateKey returns the stored API password, generating and persisting
// a new one on first use.
func loadOrCreateKey(logger *slog.Logger) (string, error) {
	if pwd := readKeyFile(); pwd != "" {
		return pwd, nil
	}
	p, err := keyFilePath()
	if err != nil {
		return "", err
	}
	pwd, err := auth.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate new API password: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return "", fmt.Errorf("failed to create config dir for key file: %w", err)
	}
	if err := os.WriteFile(p, []byte(pwd), 0o600); err != nil {
		return "", fmt.Errorf("failed to write new API password to file: %w", err)
	}
	logger.Info("Generated API server password", "path", p)
	logger.Info("-------------------------------------")
	logger.Info("Your matrixkb API password is:")
	logger.Info("-------------------------------------")
	logger.Info(pwd)
	logger.Info("-------------------------------------")
	logger.Info("You can change this password at any time by editing the file")
	return pwd, nil
}
