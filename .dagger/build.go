package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/medrag/internal/dagger"
)

// Build and return directory of go binaries
func (m *Medrag) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	// CGO rules out cross compiling from one container, so each platform
	// builds in its own (emulated) container.
	platforms := []dagger.Platform{"linux/amd64", "linux/arm64"}

	outputs := dag.Directory()

	for _, platform := range platforms {
		path := string(platform) + "/"

		build := m.goContainer(platform).
			WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/medrag"}).
			WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/medragd"})

		outputs = outputs.WithDirectory(path, build.Directory(path))
	}

	return outputs
}

// BuildRelease compiles versioned release binaries with embedded version info
func (m *Medrag) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	buildtime := time.Now()

	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X 'github.com/papercomputeco/medrag/pkg/utils.Version=%s'", version),
		fmt.Sprintf("-X 'github.com/papercomputeco/medrag/pkg/utils.Sha=%s'", commit),
		fmt.Sprintf("-X 'github.com/papercomputeco/medrag/pkg/utils.Buildtime=%s'", buildtime),
	}

	return m.Build(ctx, strings.Join(ldflags, " "))
}
