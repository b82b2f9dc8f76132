package domain

// PassageRecord is one immutable unit of corpus text together with its
// embedding. Records are created during ingestion and never mutated by the
// retrieval engine.
type PassageRecord struct {
	ID            string            `json:"id"`
	UnitID        string            `json:"unit_id"`
	SubUnitID     string            `json:"sub_unit_id"`
	SequenceID    string            `json:"sequence_id"`
	Speaker       string            `json:"speaker,omitempty"`
	TextPrimary   string            `json:"text_primary"`
	TextSecondary string            `json:"text_secondary,omitempty"`
	Vector        []float32         `json:"vector"`
	Tags          map[string]string `json:"tags,omitempty"`
}

// HasSecondary reports whether the passage carries an alternate-language
// rendering alongside the primary text.
func (p PassageRecord) HasSecondary() bool {
	return p.TextPrimary != "" && p.TextSecondary != ""
}

type ScoredResult struct {
	Record PassageRecord `json:"record"`
	Score  float64       `json:"score"`
}

// UnitGroup holds ranked results from a single narrative unit. Groups are
// never merged unless the request explicitly asks for a cross-unit
// comparison.
type UnitGroup struct {
	UnitID  string         `json:"unit_id"`
	Results []ScoredResult `json:"results"`
}
