// Package dotdir resolves the .medrag/ directory that holds config.toml and,
// for the local blob providers, the corpus snapshot.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the medrag directory.
	dirName = ".medrag"

	// snapshotDirName holds fs provider snapshots inside the medrag directory.
	snapshotDirName = "snapshots"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .medrag/ directory.
// Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.medrag/ dir
//  3. Home ~/.medrag/ dir, created if missing
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating medrag directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// SnapshotDir returns the snapshots/ directory under the resolved target,
// creating it if needed.
func (m *Manager) SnapshotDir(overrideDir string) (string, error) {
	target, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(target, snapshotDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating snapshot directory %s: %w", dir, err)
	}

	return dir, nil
}

// localDirExists checks whether a .medrag/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
