package textnorm_test

import (
	"regexp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/medrag/pkg/corpus/textnorm"
)

var _ = Describe("Normalize", func() {
	It("returns empty input unchanged", func() {
		Expect(textnorm.Normalize("")).To(Equal(""))
	})

	It("expands abbreviations as whole words", func() {
		out := textnorm.Normalize("BP was 140 mg/dl at ICU")
		Expect(out).To(Equal("blood pressure was 140 milligrams per deciliter at intensive care unit"))

		for _, abbr := range []string{"BP", "mg/dl", "ICU"} {
			re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(abbr) + `\b`)
			Expect(re.MatchString(out)).To(BeFalse(), abbr)
		}
	})

	It("matches abbreviations case-insensitively", func() {
		Expect(textnorm.Normalize("Check the bp daily.")).To(Equal("Check the blood pressure daily."))
	})

	It("leaves abbreviation letters inside longer words alone", func() {
		Expect(textnorm.Normalize("The BPM monitor and the hero")).To(Equal("The BPM monitor and the hero"))
	})

	It("strips page and chapter headers", func() {
		raw := "Page 12 Gale Encyclopedia\nFever is a rise in body temperature.\nChapter 3 Infections\nIt is common."
		Expect(textnorm.Normalize(raw)).To(Equal("Fever is a rise in body temperature. It is common."))
	})

	It("strips lone page-number lines", func() {
		raw := "Asthma narrows the airways.\n42\nTreatment includes inhalers."
		Expect(textnorm.Normalize(raw)).To(Equal("Asthma narrows the airways. Treatment includes inhalers."))
	})

	It("preserves paragraph breaks while collapsing other whitespace", func() {
		raw := "First   paragraph\nstill first.\n\n\n   Second\tparagraph."
		Expect(textnorm.Normalize(raw)).To(Equal("First paragraph still first.\n\nSecond paragraph."))
	})

	It("removes characters outside the allow-list", func() {
		Expect(textnorm.Normalize("Dose • 5% © daily (oral) ±2°")).To(Equal("Dose 5% daily (oral) 2°"))
	})

	It("fixes punctuation spacing", func() {
		Expect(textnorm.Normalize("Rest well , drink fluids .Then recover.Call a doctor")).
			To(Equal("Rest well, drink fluids. Then recover. Call a doctor"))
	})

	It("keeps accented letters", func() {
		Expect(textnorm.Normalize("Ménière disease")).To(Equal("Ménière disease"))
	})

	DescribeTable("is idempotent",
		func(raw string) {
			once := textnorm.Normalize(raw)
			Expect(textnorm.Normalize(once)).To(Equal(once))
		},
		Entry("abbreviations", "BP was 140 mg/dl at ICU, HR 90 bid."),
		Entry("headers and numbers", "Page 1 Title\nChapter 2 Heart\nThe heart pumps blood.\n7\nIt has four chambers."),
		Entry("paragraphs", "A fever.\n\n\nB cough .\n  \nC rash!And itch"),
		Entry("symbols", "Take 5 mg • PO prn © 2004 Gale ⟶ done"),
		Entry("page number trailed by a symbol", "foo\n\n12 #\n\nbar"),
	)

	It("strips a page number left bare by symbol removal", func() {
		Expect(textnorm.Normalize("foo\n\n12 #\n\nbar")).To(Equal("foo\n\nbar"))
	})
})
