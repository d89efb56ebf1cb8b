package model

// JobData is the artifact produced by the analyze step. The extractor may
// return empty title/company; the workflow tolerates that and lets the user
// edit the fields manually before scoring.
type JobData struct {
	JobTitle        string   `json:"job_title"`
	CompanyName     string   `json:"company_name"`
	Location        string   `json:"location,omitempty"`
	EmploymentType  string   `json:"employment_type,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	Industry        string   `json:"industry,omitempty"`
	Description     string   `json:"description,omitempty"`
	Skills          SkillSet `json:"skills"`
	SourceURL       string   `json:"source_url,omitempty"`
}

// IsEmpty reports whether extraction produced nothing useful. An empty
// JobData still enters the session so the user can fill it in by hand.
func (j *JobData) IsEmpty() bool {
	return j.JobTitle == "" && j.CompanyName == "" && j.Description == ""
}
