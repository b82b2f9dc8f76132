package segmenting

import (
	"strings"
	"testing"
)

const sampleCorpus = `=== UNIT arc-01: The Founding
--- SUB ch-01
Maren: The gate held through the night. || Врата выстояли до утра.
The council gathered at dawn.
--- SUB ch-02
Herald: The pass is closed.

=== UNIT arc-02: The Long Winter
--- SUB ch-01
Snow buried the outer wall.
`

func TestSegmentAssignsAddresses(t *testing.T) {
	segmenter := New(0)
	records := segmenter.Segment("src-1", sampleCorpus)

	if len(records) != 4 {
		t.Fatalf("len(records) = %d, want 4", len(records))
	}

	first := records[0]
	if first.UnitID != "arc-01" || first.SubUnitID != "ch-01" || first.SequenceID != "0001" {
		t.Fatalf("first address = %s/%s/%s", first.UnitID, first.SubUnitID, first.SequenceID)
	}
	if first.ID != "src-1/arc-01/ch-01/0001" {
		t.Fatalf("first id = %q", first.ID)
	}
	if first.Speaker != "Maren" {
		t.Fatalf("speaker = %q", first.Speaker)
	}
	if first.TextPrimary != "The gate held through the night." {
		t.Fatalf("primary = %q", first.TextPrimary)
	}
	if first.TextSecondary != "Врата выстояли до утра." {
		t.Fatalf("secondary = %q", first.TextSecondary)
	}
	if first.Tags["unit_name"] != "The Founding" {
		t.Fatalf("unit name tag = %q", first.Tags["unit_name"])
	}
}

func TestSegmentResetsSequencePerSubUnit(t *testing.T) {
	records := New(0).Segment("src-1", sampleCorpus)

	// Second sub-unit of arc-01 starts over at 0001.
	herald := records[2]
	if herald.SubUnitID != "ch-02" || herald.SequenceID != "0001" {
		t.Fatalf("herald address = %s/%s", herald.SubUnitID, herald.SequenceID)
	}
	// New unit resets both sub-unit and sequence.
	winter := records[3]
	if winter.UnitID != "arc-02" || winter.SubUnitID != "ch-01" || winter.SequenceID != "0001" {
		t.Fatalf("winter address = %s/%s/%s", winter.UnitID, winter.SubUnitID, winter.SequenceID)
	}
}

func TestSegmentNarrationHasNoSpeaker(t *testing.T) {
	records := New(0).Segment("src-1", sampleCorpus)

	council := records[1]
	if council.Speaker != "" {
		t.Fatalf("narration got a speaker: %q", council.Speaker)
	}
	if council.TextSecondary != "" {
		t.Fatalf("narration got a secondary text: %q", council.TextSecondary)
	}
}

func TestSegmentRejectsLongOrPunctuatedSpeakerNames(t *testing.T) {
	text := "=== UNIT arc-01: X\n--- SUB ch-01\n" +
		"It was late, too late: the council knew.\n" +
		strings.Repeat("x", 40) + ": not dialogue either.\n"

	records := New(0).Segment("src-1", text)
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	for _, r := range records {
		if r.Speaker != "" {
			t.Fatalf("line misread as dialogue: %+v", r)
		}
	}
}

func TestSegmentSplitsLongLinesIntoWindows(t *testing.T) {
	long := strings.Repeat("a", 25)
	records := New(10).Segment("src-1", "=== UNIT arc-01: X\n--- SUB ch-01\n"+long+"\n")

	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3 windows", len(records))
	}
	if records[0].SequenceID != "0001" || records[2].SequenceID != "0003" {
		t.Fatalf("window sequence ids = %q..%q", records[0].SequenceID, records[2].SequenceID)
	}
	total := 0
	for _, r := range records {
		total += len(r.TextPrimary)
	}
	if total != 25 {
		t.Fatalf("window text lost characters: %d", total)
	}
}

func TestSegmentWithoutMarkersUsesDefaults(t *testing.T) {
	records := New(0).Segment("src-1", "a lone line\n")

	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].UnitID != "u0" || records[0].SubUnitID != "s0" {
		t.Fatalf("default address = %s/%s", records[0].UnitID, records[0].SubUnitID)
	}
	if records[0].Tags != nil {
		t.Fatalf("unexpected tags without a unit header: %v", records[0].Tags)
	}
}
