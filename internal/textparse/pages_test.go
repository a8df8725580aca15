package textparse

import (
	"regexp"
	"testing"
)

const caseStudySnippet = `--- Page 4 ---
BLOCK B – 6F:
1-6F: Commercial
and community
01 AVA CENTER
1
No. of Units
845
Launching
/Handover
2025-Q4 / 2027-Q1
Primary Price (USD)
Access control
-
Open type
-
Checking at lobby,
parking
Nam Tu Liem, Ha Noi
1
BLOCK A – 40F:
1F: Shophouse
2F: Shophouse + Officetel
3F: Offictel + Facilities
4-40F: Officetel + Apt

--- Page 5 ---
02 VISTA VERDE
Total No. of Units
1,152
Launching /
Handover
Q3-2014 / Q4-2017
Primary Price (USD)
1,502
Access control
- Site gated
- 3 check-point: Main gate,
sub-gate, lobby
`

func TestSplitPages(t *testing.T) {
	text := "before\n--- Page 1 ---\nPage one content\n--- Page 2 ---\nPage two content"
	pages := SplitPages(text)

	if len(pages) != 2 {
		t.Fatalf("SplitPages() returned %d pages, want 2", len(pages))
	}
	if pages[1] != "Page one content" {
		t.Errorf("SplitPages() page 1 = %q, want %q", pages[1], "Page one content")
	}
	if pages[2] != "Page two content" {
		t.Errorf("SplitPages() page 2 = %q, want %q", pages[2], "Page two content")
	}
}

func TestSplitPagesCaseStudy(t *testing.T) {
	pages := SplitPages(caseStudySnippet)

	if len(pages) != 2 {
		t.Fatalf("SplitPages() returned %d pages, want 2", len(pages))
	}
	if _, ok := pages[4]; !ok {
		t.Error("SplitPages() missing page 4")
	}
	if _, ok := pages[5]; !ok {
		t.Error("SplitPages() missing page 5")
	}
}

func TestSplitPagesNoMarkers(t *testing.T) {
	pages := SplitPages("just some text without any page markers")
	if len(pages) != 0 {
		t.Errorf("SplitPages() returned %d pages, want 0", len(pages))
	}
}

func TestSplitSections(t *testing.T) {
	header := regexp.MustCompile(`(?m)^(?P<number>\d{2})\s+(?P<name>[A-Z ]+)$`)
	text := "01 FIRST PROJECT\nsome content\nmore content\n02 SECOND PROJECT\nother content\n"

	sections := SplitSections(text, header)
	if len(sections) != 2 {
		t.Fatalf("SplitSections() returned %d sections, want 2", len(sections))
	}

	if sections[0].Number != "01" || sections[0].Name != "FIRST PROJECT" {
		t.Errorf("SplitSections() first header = %q %q", sections[0].Number, sections[0].Name)
	}
	if sections[1].Name != "SECOND PROJECT" {
		t.Errorf("SplitSections() second name = %q, want %q", sections[1].Name, "SECOND PROJECT")
	}

	if !regexp.MustCompile(`some content`).MatchString(sections[0].Content) {
		t.Errorf("SplitSections() first content = %q, missing body", sections[0].Content)
	}
	if regexp.MustCompile(`other content`).MatchString(sections[0].Content) {
		t.Error("SplitSections() first section ran past the second header")
	}
}

func TestSplitSectionsNoMatches(t *testing.T) {
	header := regexp.MustCompile(`(?m)^(?P<number>\d{2})\s+(?P<name>[A-Z ]+)$`)
	sections := SplitSections("no headers anywhere in this text", header)
	if len(sections) != 0 {
		t.Errorf("SplitSections() returned %d sections, want 0", len(sections))
	}
}
