package fs_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/medrag/pkg/blob"
	"github.com/papercomputeco/medrag/pkg/blob/fs"
)

var _ = Describe("Store", func() {
	var (
		root  string
		store *fs.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		store = fs.NewStore(root)
		ctx = context.Background()
	})

	It("round-trips bytes", func() {
		Expect(store.Write(ctx, "snap/index.gob", []byte("payload"))).To(Succeed())

		data, err := store.Read(ctx, "snap/index.gob")
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal([]byte("payload")))
	})

	It("returns ErrNotFound for missing keys", func() {
		_, err := store.Read(ctx, "missing.gob")
		Expect(err).To(MatchError(blob.ErrNotFound))
	})

	It("overwrites in place without leaving temp files", func() {
		Expect(store.Write(ctx, "index.hnsw", []byte("one"))).To(Succeed())
		Expect(store.Write(ctx, "index.hnsw", []byte("two"))).To(Succeed())

		entries, err := os.ReadDir(root)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Name()).To(Equal("index.hnsw"))

		data, err := store.Read(ctx, "index.hnsw")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("two"))
	})

	It("resolves absolute keys outside the root", func() {
		other := filepath.Join(GinkgoT().TempDir(), "abs.gob")
		Expect(store.Write(ctx, other, []byte("x"))).To(Succeed())
		Expect(store.Path(other)).To(Equal(other))
		Expect(other).To(BeAnExistingFile())
	})

	It("deletes blobs and tolerates missing ones", func() {
		Expect(store.Write(ctx, "gone.gob", []byte("x"))).To(Succeed())
		Expect(store.Delete(ctx, "gone.gob")).To(Succeed())
		Expect(store.Delete(ctx, "gone.gob")).To(Succeed())

		_, err := store.Read(ctx, "gone.gob")
		Expect(err).To(MatchError(blob.ErrNotFound))
	})
})
