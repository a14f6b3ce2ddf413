package cliui_test

import (
	"bytes"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/medrag/pkg/cliui"
)

var _ = Describe("Step", func() {
	It("prints a success mark and returns nil", func() {
		var buf bytes.Buffer
		Expect(cliui.Step(&buf, "Loading index", func() error { return nil })).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("Loading index"))
		Expect(buf.String()).To(HaveSuffix("\n"))
	})

	It("returns the step error", func() {
		var buf bytes.Buffer
		err := cliui.Step(&buf, "Embedding passages", func() error { return errors.New("boom") })
		Expect(err).To(MatchError("boom"))
	})
})

var _ = Describe("FormatDuration", func() {
	It("uses milliseconds under a second", func() {
		Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
	})

	It("uses seconds with one decimal above", func() {
		Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
	})
})

var _ = Describe("KeyValues", func() {
	It("prints one row per pair in order", func() {
		var buf bytes.Buffer
		cliui.KeyValues(&buf, [][2]string{{"total_chunks", "42"}, {"model", "all-minilm"}})

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(lines).To(HaveLen(2))
		Expect(lines[0]).To(ContainSubstring("total_chunks:"))
		Expect(lines[0]).To(ContainSubstring("42"))
		Expect(lines[1]).To(ContainSubstring("all-minilm"))
	})
})

var _ = Describe("RenderMarkdown", func() {
	It("renders content containing the source text", func() {
		out, err := cliui.RenderMarkdown("# Fever\n\nRest and fluids.")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Rest and fluids."))
	})
})
