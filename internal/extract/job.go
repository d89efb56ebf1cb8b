package extract

import "github.com/DeUskov/rezumy09/internal/model"

var (
	jobTitle      = []Path{"job_title", "jobTitle", "title", "vacancy_title"}
	jobCompany    = []Path{"company_name", "companyName", "company", "employer"}
	jobLocation   = []Path{"location", "city"}
	jobEmployment = []Path{"employment_type", "employmentType", "job_type", "jobType"}
	jobExperience = []Path{"experience_level", "experienceLevel", "seniority"}
	jobIndustry   = []Path{"industry"}
	jobDesc       = []Path{"description", "job_description", "jobDescription", "text"}

	jobHardSkills = []Path{"skills.hard_skills", "skills.hardSkills", "hard_skills", "hardSkills", "skills.required", "requirements"}
	jobSoftSkills = []Path{"skills.soft_skills", "skills.softSkills", "soft_skills", "softSkills"}
	jobLanguages  = []Path{"skills.languages", "languages"}
)

// Job maps a raw extractor response onto JobData. Extractor versions differ
// on wrapping: some return the object directly, others nest it under job,
// vacancy or data. All fields default to empty, matching the policy of
// degrading to manual entry instead of failing the analyze step.
func Job(raw map[string]any) model.JobData {
	m := Unwrap(raw, "job", "job_data", "vacancy", "data", "result")

	return model.JobData{
		JobTitle:        String(m, jobTitle...),
		CompanyName:     String(m, jobCompany...),
		Location:        String(m, jobLocation...),
		EmploymentType:  String(m, jobEmployment...),
		ExperienceLevel: String(m, jobExperience...),
		Industry:        String(m, jobIndustry...),
		Description:     String(m, jobDesc...),
		Skills: model.SkillSet{
			HardSkills: StringSlice(m, jobHardSkills...),
			SoftSkills: StringSlice(m, jobSoftSkills...),
			Languages:  StringSlice(m, jobLanguages...),
		},
	}
}
