package medragcmder_test

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	medragcmder "github.com/papercomputeco/medrag/cmd/medrag"
	"github.com/papercomputeco/medrag/pkg/answer"
	"github.com/papercomputeco/medrag/pkg/index"
	"github.com/papercomputeco/medrag/pkg/utils"
	testutils "github.com/papercomputeco/medrag/pkg/utils/test"
)

const cliCorpus = `Chapter 1 Cardiology

Hypertension is a chronic condition in which the BP in the arteries is persistently elevated above normal levels.

Pneumonia is an infection that inflames the air sacs in one or both lungs, which may fill with fluid or pus.

Anemia is a condition in which you lack enough healthy RBC to carry adequate oxygen to your body tissues.`

var _ = Describe("medrag", func() {
	var (
		configDir string
		ollama    *httptest.Server
	)

	execute := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := medragcmder.NewMedragCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(append(args, "--config-dir", configDir))
		err := cmd.Execute()
		return out.String(), err
	}

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()

		embedder := testutils.NewMockEmbedder()
		embedder.Dimension = 384
		ollama = testutils.NewOllamaServer(embedder)
		DeferCleanup(ollama.Close)

		GinkgoT().Setenv("MEDRAG_EMBEDDING_TARGET", ollama.URL)
		GinkgoT().Setenv("MEDRAG_CORPUS_CHUNK_SIZE", "200")
		GinkgoT().Setenv("MEDRAG_CORPUS_CHUNK_OVERLAP", "20")
	})

	It("registers every subcommand", func() {
		cmd := medragcmder.NewMedragCmd()
		names := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("ingest", "ask", "search", "stats", "serve", "config", "version"))
	})

	It("prints the version", func() {
		out, err := execute("version")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring(utils.Version))
	})

	It("redirects off-domain questions without a knowledge base", func() {
		out, err := execute("ask", "--raw", "who", "won", "the", "game?")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring(answer.OffDomainReply))
	})

	It("reports a missing snapshot", func() {
		out, err := execute("stats")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("No snapshot found"))
	})

	Describe("with an ingested corpus", func() {
		BeforeEach(func() {
			source := filepath.Join(configDir, "corpus.txt")
			Expect(os.WriteFile(source, []byte(cliCorpus), 0o600)).To(Succeed())

			_, err := execute("ingest", "--source", source)
			Expect(err).NotTo(HaveOccurred())
		})

		It("writes the snapshot under the config dir", func() {
			base := filepath.Join(configDir, "snapshots", "medical_index")
			Expect(base + index.GraphSuffix).To(BeAnExistingFile())
			Expect(base + index.SideSuffix).To(BeAnExistingFile())
		})

		It("reports stats", func() {
			out, err := execute("stats")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Passages"))
			Expect(out).To(ContainSubstring("384"))
		})

		It("searches the local snapshot", func() {
			query := "Pneumonia is an infection that inflames the air sacs in one or both lungs, which may fill with fluid or pus."
			out, err := execute("search", "--local", "--quiet", "-k", "1", query)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.TrimSpace(out)).To(Equal("1"))
		})
	})

	It("fails ingest for a missing source", func() {
		_, err := execute("ingest", "--source", filepath.Join(configDir, "missing.txt"))
		Expect(err).To(HaveOccurred())
	})
})
