package main

import (
	"context"
	"fmt"

	"dagger/medrag/internal/dagger"
)

const golangciLintVersion = "v2.8.0"

// lintOpts layers golangci-lint on top of goContainer so the sqlite headers
// and Go caches are already in place.
func (m *Medrag) lintOpts() dagger.GolangcilintOpts {
	base := m.goContainer("").
		WithExec([]string{
			"go",
			"install",
			fmt.Sprintf("github.com/golangci/golangci-lint/v2/cmd/golangci-lint@%s", golangciLintVersion),
		})

	return dagger.GolangcilintOpts{
		BaseCtr: base,
		Config:  m.Source.File(".golangci.yml"),
	}
}

// CheckLint runs golangci-lint without applying fixes.
func (m *Medrag) CheckLint(ctx context.Context) (string, error) {
	return dag.Golangcilint(m.Source, m.lintOpts()).Check(ctx)
}

// FixLint runs golangci-lint with --fix and returns the modified source directory.
func (m *Medrag) FixLint(ctx context.Context) *dagger.Directory {
	return dag.Golangcilint(m.Source, m.lintOpts()).Lint()
}
