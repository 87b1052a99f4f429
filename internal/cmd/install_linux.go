//go:build linux

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const servicePath = "/etc/systemd/system/" + serviceName

func (i *Install) Run(logger *slog.Logger) error {
	if err := i.validate(); err != nil {
		return err
	}
	exePath, err := currentExecutable()
	if err != nil {
		return err
	}
	if i.Device != "" {
		if _, err := os.Stat(i.Device); err != nil {
			logger.Warn("link device not present yet, the service starts once it appears", "device", i.Device)
		}
	}

	if err := os.WriteFile(servicePath, []byte(i.unit(exePath)), 0o644); err != nil {
		return err
	}
	for _, args := range [][]string{
		{"daemon-reload"},
		{"enable", serviceName},
		{"restart", serviceName},
	} {
		if err := runSystemctl(args...); err != nil {
			return err
		}
	}

	logger.Info("matrixkb service installed", "path", servicePath, "exe", exePath, "device", i.Device)
	return nil
}

func (u *Uninstall) Run(logger *slog.Logger) error {
	var errs []error
	for _, args := range [][]string{
		{"stop", serviceName},
		{"disable", serviceName},
	} {
		if err := runSystemctl(args...); err != nil {
			errs = append(errs, err)
		}
	}
	if err := os.Remove(servicePath); err != nil && !os.IsNotExist(err) {
		errs = append(errs, err)
	}
	if err := runSystemctl("daemon-reload"); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	logger.Info("matrixkb service removed", "path", servicePath)
	return nil
}

func runSystemctl(args ...string) error {
	out, err := exec.Command("systemctl", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

func currentExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}
