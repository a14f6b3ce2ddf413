package blobutils_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/medrag/pkg/blob/fs"
	"github.com/papercomputeco/medrag/pkg/blob/s3"
	"github.com/papercomputeco/medrag/pkg/blob/sqlite"
	blobutils "github.com/papercomputeco/medrag/pkg/blob/utils"
)

var _ = Describe("NewStore", func() {
	ctx := context.Background()

	It("defaults to the filesystem provider", func() {
		store, err := blobutils.NewStore(ctx, &blobutils.NewStoreOpts{Root: GinkgoT().TempDir()})
		Expect(err).NotTo(HaveOccurred())
		Expect(store).To(BeAssignableToTypeOf(&fs.Store{}))
	})

	It("opens a sqlite database at the given path", func() {
		path := filepath.Join(GinkgoT().TempDir(), "medrag.db")
		store, err := blobutils.NewStore(ctx, &blobutils.NewStoreOpts{
			ProviderType: "sqlite",
			SQLitePath:   path,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(store).To(BeAssignableToTypeOf(&sqlite.Store{}))
		Expect(store.Close()).To(Succeed())
		Expect(path).To(BeAnExistingFile())
	})

	It("requires a path for sqlite", func() {
		_, err := blobutils.NewStore(ctx, &blobutils.NewStoreOpts{ProviderType: "sqlite"})
		Expect(err).To(MatchError(ContainSubstring("requires a database path")))
	})

	It("validates s3 settings before connecting", func() {
		_, err := blobutils.NewStore(ctx, &blobutils.NewStoreOpts{
			ProviderType: "s3",
			S3:           s3.Config{Endpoint: "localhost:9000"},
		})
		Expect(err).To(MatchError(ContainSubstring("bucket is required")))
	})

	It("rejects unknown providers", func() {
		_, err := blobutils.NewStore(ctx, &blobutils.NewStoreOpts{ProviderType: "gcs"})
		Expect(err).To(MatchError(ContainSubstring("unsupported snapshot provider")))
	})
})
