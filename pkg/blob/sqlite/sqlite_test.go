package sqlite_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/medrag/pkg/blob"
	"github.com/papercomputeco/medrag/pkg/blob/sqlite"
)

var _ = Describe("Store", func() {
	var (
		store  *sqlite.Store
		dbPath string
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		dbPath = filepath.Join(GinkgoT().TempDir(), "snapshots.db")

		var err error
		store, err = sqlite.NewStore(ctx, dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	It("round-trips bytes", func() {
		Expect(store.Write(ctx, "medrag/index.hnsw", []byte{0, 1, 2, 255})).To(Succeed())

		data, err := store.Read(ctx, "medrag/index.hnsw")
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal([]byte{0, 1, 2, 255}))
	})

	It("returns ErrNotFound for missing keys", func() {
		_, err := store.Read(ctx, "nope")
		Expect(err).To(MatchError(blob.ErrNotFound))
	})

	It("replaces existing blobs", func() {
		Expect(store.Write(ctx, "k", []byte("old"))).To(Succeed())
		Expect(store.Write(ctx, "k", []byte("new"))).To(Succeed())

		data, err := store.Read(ctx, "k")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("new"))
	})

	It("persists across reopen", func() {
		Expect(store.Write(ctx, "k", []byte("kept"))).To(Succeed())
		Expect(store.Close()).To(Succeed())

		var err error
		store, err = sqlite.NewStore(ctx, dbPath)
		Expect(err).NotTo(HaveOccurred())

		data, err := store.Read(ctx, "k")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("kept"))
	})

	It("deletes blobs", func() {
		Expect(store.Write(ctx, "k", []byte("x"))).To(Succeed())
		Expect(store.Delete(ctx, "k")).To(Succeed())

		_, err := store.Read(ctx, "k")
		Expect(err).To(MatchError(blob.ErrNotFound))
	})
})
