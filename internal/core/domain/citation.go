package domain

import "fmt"

// Citation is a fully-addressed reference to one passage. Every citation
// surfaced to a caller must carry UnitID, SubUnitID, SequenceID and
// TextPrimary; anything less is a contract violation.
type Citation struct {
	UnitID        string `json:"unit_id"`
	UnitName      string `json:"unit_name"`
	SubUnitID     string `json:"sub_unit_id"`
	SequenceID    string `json:"sequence_id"`
	Speaker       string `json:"speaker,omitempty"`
	TextPrimary   string `json:"text_primary"`
	TextSecondary string `json:"text_secondary,omitempty"`
}

func (c Citation) Complete() bool {
	return c.UnitID != "" && c.SubUnitID != "" && c.SequenceID != "" && c.TextPrimary != ""
}

// Ref is the stable passage address, used for exact-duplicate removal.
func (c Citation) Ref() string {
	return fmt.Sprintf("%s/%s/%s", c.UnitID, c.SubUnitID, c.SequenceID)
}

type CitationGroup struct {
	UnitID    string     `json:"unit_id"`
	UnitName  string     `json:"unit_name"`
	Citations []Citation `json:"citations"`
}

// Evidence is the citation formatter output. An empty result set is
// represented by the explicit NoEvidence marker so downstream consumers can
// distinguish "nothing found" from a citation list.
type Evidence struct {
	Groups     []CitationGroup `json:"groups,omitempty"`
	NoEvidence bool            `json:"no_evidence"`
}

func (e Evidence) Empty() bool {
	return e.NoEvidence || len(e.Groups) == 0
}

func (e Evidence) Citations() []Citation {
	var out []Citation
	for _, g := range e.Groups {
		out = append(out, g.Citations...)
	}
	return out
}

// NuanceNote records a meaningful divergence between the primary and
// secondary renderings of one passage.
type NuanceNote struct {
	UnitID     string `json:"unit_id"`
	SubUnitID  string `json:"sub_unit_id"`
	SequenceID string `json:"sequence_id"`
	Note       string `json:"note"`
}
