package segmenting

import (
	"fmt"
	"strings"

	"github.com/kseverin/lore-assistant/internal/core/domain"
)

const (
	unitMarker    = "=== UNIT "
	subUnitMarker = "--- SUB "
	secondarySep  = "||"

	maxSpeakerLen = 32
)

// Segmenter turns marked-up corpus text into addressed passages. Markup:
//
//	=== UNIT <unitId>: <unit name>
//	--- SUB <subUnitId>
//	Speaker: primary text || secondary text
//	plain narration line
//
// Each non-empty line becomes one passage; lines longer than MaxPassageLen
// runes are split into windows. Sequence ids are zero-padded counters per
// sub-unit, so store order encodes narrative order.
type Segmenter struct {
	MaxPassageLen int
}

func New(maxPassageLen int) *Segmenter {
	if maxPassageLen <= 0 {
		maxPassageLen = 900
	}
	return &Segmenter{MaxPassageLen: maxPassageLen}
}

func (s *Segmenter) Segment(sourceID, text string) []domain.PassageRecord {
	unitID := "u0"
	unitName := ""
	subUnitID := "s0"
	seq := 0

	var out []domain.PassageRecord
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if rest, ok := strings.CutPrefix(line, unitMarker); ok {
			unitID, unitName = parseUnitHeader(rest)
			subUnitID = "s0"
			seq = 0
			continue
		}
		if rest, ok := strings.CutPrefix(line, subUnitMarker); ok {
			subUnitID = strings.TrimSpace(rest)
			seq = 0
			continue
		}

		speaker, body := splitSpeaker(line)
		primary, secondary := splitSecondary(body)
		if primary == "" {
			continue
		}

		for _, window := range splitWindows(primary, s.MaxPassageLen) {
			seq++
			record := domain.PassageRecord{
				ID:          fmt.Sprintf("%s/%s/%s/%04d", sourceID, unitID, subUnitID, seq),
				UnitID:      unitID,
				SubUnitID:   subUnitID,
				SequenceID:  fmt.Sprintf("%04d", seq),
				Speaker:     speaker,
				TextPrimary: window,
			}
			if secondary != "" {
				record.TextSecondary = secondary
			}
			if unitName != "" {
				record.Tags = map[string]string{"unit_name": unitName}
			}
			out = append(out, record)
		}
	}
	return out
}

func parseUnitHeader(rest string) (id, name string) {
	id, name, found := strings.Cut(rest, ":")
	id = strings.TrimSpace(id)
	if id == "" {
		id = "u0"
	}
	if !found {
		return id, ""
	}
	return id, strings.TrimSpace(name)
}

// splitSpeaker recognizes a "Name: text" dialogue prefix. The name part
// must be short and free of sentence punctuation, otherwise the whole line
// is narration.
func splitSpeaker(line string) (speaker, body string) {
	name, rest, found := strings.Cut(line, ":")
	if !found {
		return "", line
	}
	name = strings.TrimSpace(name)
	rest = strings.TrimSpace(rest)
	if name == "" || rest == "" || len(name) > maxSpeakerLen {
		return "", line
	}
	if strings.ContainsAny(name, ".!?,;\"") {
		return "", line
	}
	return name, rest
}

func splitSecondary(body string) (primary, secondary string) {
	primary, secondary, found := strings.Cut(body, secondarySep)
	primary = strings.TrimSpace(primary)
	if !found {
		return primary, ""
	}
	return primary, strings.TrimSpace(secondary)
}

func splitWindows(text string, maxLen int) []string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return []string{text}
	}

	out := make([]string, 0, len(runes)/maxLen+1)
	for start := 0; start < len(runes); start += maxLen {
		end := min(start+maxLen, len(runes))
		window := strings.TrimSpace(string(runes[start:end]))
		if window != "" {
			out = append(out, window)
		}
	}
	return out
}
