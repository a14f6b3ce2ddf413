// Medrag CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/medrag/internal/dagger"
)

const goImage = "golang:1.25-bookworm"

// Medrag is the main module for the medrag CI/CD pipeline
type Medrag struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Medrag CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".medrag", "build", "tmp", "_examples"]
	source *dagger.Directory,
) *Medrag {
	return &Medrag{
		Source: source,
	}
}

// goContainer returns a Debian Bookworm-based Go container with gcc,
// libsqlite3-dev, CGO enabled, and the project source mounted.
//
// The sqlite blob store links against libsqlite3, so every build and test
// runs with CGO.
func (m *Medrag) goContainer(platform dagger.Platform) *dagger.Container {
	return dag.Container(dagger.ContainerOpts{Platform: platform}).
		From(goImage).
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "gcc", "libsqlite3-dev"}).
		WithEnvVariable("CGO_ENABLED", "1").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build-"+string(platform))).
		WithWorkdir("/src").
		WithDirectory("/src", m.Source)
}

// Test runs the medrag unit tests via "go test"
func (m *Medrag) Test(ctx context.Context) (string, error) {
	return m.goContainer("").
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}
