package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/papercomputeco/medrag/cmd/medrag/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var tmpDir string

	execute := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := configcmder.NewConfigCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(args)
		err := cmd.Execute()
		return out.String(), err
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()

		origDir, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			Expect(os.Chdir(origDir)).To(Succeed())
		})

		// Create a local .medrag dir so the manager picks it up
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".medrag"), 0o755)).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())
	})

	Describe("set subcommand", func() {
		It("sets a config value successfully", func() {
			_, err := execute("set", "completion.model", "llama-3.1-8b-instant")
			Expect(err).NotTo(HaveOccurred())

			data, err := os.ReadFile(filepath.Join(tmpDir, ".medrag", "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("llama-3.1-8b-instant"))
		})

		It("rejects unknown keys", func() {
			_, err := execute("set", "invalid_key", "value")
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
		})

		It("requires exactly two arguments", func() {
			_, err := execute("set", "completion.model")
			Expect(err).To(HaveOccurred())
		})

		It("rejects invalid uint values", func() {
			_, err := execute("set", "embedding.dimensions", "not-a-number")
			Expect(err).To(HaveOccurred())
		})

		It("rejects a threshold outside [0, 1)", func() {
			_, err := execute("set", "retrieval.threshold", "1.5")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			_, err := execute("set", "snapshot.provider", "sqlite")
			Expect(err).NotTo(HaveOccurred())

			out, err := execute("get", "snapshot.provider")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("sqlite"))
		})

		It("falls back to the default", func() {
			out, err := execute("get", "completion.model")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("llama-3.3-70b-versatile"))
		})

		It("rejects unknown keys", func() {
			_, err := execute("get", "invalid_key")
			Expect(err).To(HaveOccurred())
		})

		It("requires exactly one argument", func() {
			_, err := execute("get")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("list subcommand", func() {
		It("lists every key", func() {
			out, err := execute("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("corpus.source_path"))
			Expect(out).To(ContainSubstring("eventstream.queue_size"))
		})

		It("shows values that were set", func() {
			_, err := execute("set", "api.listen", ":9090")
			Expect(err).NotTo(HaveOccurred())

			out, err := execute("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(MatchRegexp(`api\.listen\s+= ":9090"`))
		})

		It("rejects any arguments", func() {
			_, err := execute("list", "extra")
			Expect(err).To(HaveOccurred())
		})
	})
})
