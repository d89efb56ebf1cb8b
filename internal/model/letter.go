package model

// Letter styles accepted by the generation collaborator.
const (
	StyleNeutral  = "neutral"
	StyleCreative = "creative"
	StyleStartup  = "startup"
	StyleFormal   = "formal"
)

// Customization carries the user's generation preferences. The bounds are
// enforced at binding time: at most 2 experience entries, 2 education
// entries and 4 skills may be highlighted.
type Customization struct {
	Style                 string   `json:"style" binding:"omitempty,oneof=neutral creative startup formal"`
	HighlightedExperience []int    `json:"highlighted_experience" binding:"omitempty,max=2"`
	HighlightedEducation  []int    `json:"highlighted_education" binding:"omitempty,max=2"`
	HighlightedSkills     []string `json:"highlighted_skills" binding:"omitempty,max=4"`
}

// CoverLetter is the artifact produced by the generate step. Text stays
// mutable after generation: the user may edit it, which sets the dirty flag
// until the edit is saved back into the session.
type CoverLetter struct {
	Text          string        `json:"text"`
	Customization Customization `json:"customization"`
}
