package model

// PersonalInfo is the contact block of a parsed resume.
// Location and Website are frequently absent from parser output.
type PersonalInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Location  string `json:"location,omitempty"`
	Website   string `json:"website,omitempty"`
}

// SkillSet groups skills the way both the parser and the extractor report them.
type SkillSet struct {
	HardSkills []string `json:"hard_skills"`
	SoftSkills []string `json:"soft_skills"`
	Languages  []string `json:"languages"`
}

// Education is one education entry of a parsed resume.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartYear   string `json:"start_year"`
	EndYear     string `json:"end_year"`
}

// WorkExperience is one employment entry of a parsed resume.
type WorkExperience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description"`
}

// ResumeData is the artifact produced by the upload step. It is owned by the
// workflow session for the duration of one run and snapshotted into a
// Generation on save.
type ResumeData struct {
	PersonalInfo     PersonalInfo     `json:"personal_info"`
	Skills           SkillSet         `json:"skills"`
	Education        []Education      `json:"education"`
	Experience       []WorkExperience `json:"experience"`
	Summary          string           `json:"summary"`
	DesiredPosition  string           `json:"desired_position"`
	SimilarPositions []string         `json:"similar_positions"`
}

// HasIdentity reports whether the resume carries at least one name field.
// Scoring refuses to run against a nameless resume.
func (r *ResumeData) HasIdentity() bool {
	return r.PersonalInfo.FirstName != "" || r.PersonalInfo.LastName != ""
}

// HasSkills reports whether any skill category is populated.
func (r *ResumeData) HasSkills() bool {
	return len(r.Skills.HardSkills) > 0 || len(r.Skills.SoftSkills) > 0 || len(r.Skills.Languages) > 0
}
