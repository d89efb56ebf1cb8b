package model

// Breakdown category names used by the scoring collaborator. The order
// matters for error reporting: the first absent category is the one named
// in the validation error.
var BreakdownCategories = []string{"hard_skills", "soft_skills", "experience_match", "position_match"}

// CategoryScore is one named category of the scoring breakdown.
type CategoryScore struct {
	Score       int    `json:"score"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
}

// ScoreBreakdown holds the four scored categories.
type ScoreBreakdown struct {
	HardSkills      CategoryScore `json:"hard_skills"`
	SoftSkills      CategoryScore `json:"soft_skills"`
	ExperienceMatch CategoryScore `json:"experience_match"`
	PositionMatch   CategoryScore `json:"position_match"`
}

// ScoringResult is the artifact produced by the scoring step. All five
// numeric scores are expected in [0,100]; out-of-range values are logged
// and kept rather than rejected.
type ScoringResult struct {
	TotalScore              int            `json:"total_score"`
	Breakdown               ScoreBreakdown `json:"breakdown"`
	Recommendation          string         `json:"recommendation"`
	RecruiterRecommendation string         `json:"recruiter_recommendation"`
	CandidateRecommendation string         `json:"candidate_recommendation"`
}

// Scores returns every numeric score paired with its reporting name,
// total first.
func (s *ScoringResult) Scores() map[string]int {
	return map[string]int{
		"total_score":                s.TotalScore,
		"breakdown.hard_skills":      s.Breakdown.HardSkills.Score,
		"breakdown.soft_skills":      s.Breakdown.SoftSkills.Score,
		"breakdown.experience_match": s.Breakdown.ExperienceMatch.Score,
		"breakdown.position_match":   s.Breakdown.PositionMatch.Score,
	}
}
