// Package blobutils builds the configured blob.Store
package blobutils

import (
	"context"
	"fmt"

	"github.com/papercomputeco/medrag/pkg/blob"
	"github.com/papercomputeco/medrag/pkg/blob/fs"
	"github.com/papercomputeco/medrag/pkg/blob/s3"
	"github.com/papercomputeco/medrag/pkg/blob/sqlite"
)

type NewStoreOpts struct {
	ProviderType string

	// Root is the base directory for the fs provider.
	Root string

	// SQLitePath is the database file for the sqlite provider.
	SQLitePath string

	// S3 holds settings for the s3 provider.
	S3 s3.Config
}

func NewStore(ctx context.Context, o *NewStoreOpts) (blob.Store, error) {
	switch o.ProviderType {
	case "", "fs":
		return fs.NewStore(o.Root), nil
	case "sqlite":
		if o.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite snapshot provider requires a database path")
		}
		return sqlite.NewStore(ctx, o.SQLitePath)
	case "s3":
		return s3.NewStore(ctx, o.S3)
	default:
		return nil, fmt.Errorf("unsupported snapshot provider: %s", o.ProviderType)
	}
}
