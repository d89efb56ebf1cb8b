package extract

import "github.com/DeUskov/rezumy09/internal/model"

// Candidate paths per logical resume field, in priority order. The first
// entry is the documented shape; the rest are shapes older parser versions
// have actually produced.
var (
	resumeFirstName = []Path{"personal_info.first_name", "personal_info.firstName", "personalInfo.firstName", "first_name", "firstName"}
	resumeLastName  = []Path{"personal_info.last_name", "personal_info.lastName", "personalInfo.lastName", "last_name", "lastName"}
	resumeEmail     = []Path{"personal_info.email", "personalInfo.email", "email"}
	resumePhone     = []Path{"personal_info.phone", "personalInfo.phone", "phone"}
	resumeLocation  = []Path{"personal_info.location", "personalInfo.location", "location"}
	resumeWebsite   = []Path{"personal_info.website", "personalInfo.website", "website"}

	resumeHardSkills = []Path{"skills.hard_skills", "skills.hardSkills", "hard_skills", "hardSkills"}
	resumeSoftSkills = []Path{"skills.soft_skills", "skills.softSkills", "soft_skills", "softSkills"}
	resumeLanguages  = []Path{"skills.languages", "languages"}

	resumeSummary   = []Path{"summary", "profile_summary", "profileSummary"}
	resumePosition  = []Path{"desired_position", "desiredPosition", "position"}
	resumeSimilar   = []Path{"similar_positions", "similarPositions"}
	resumeEducation = []Path{"education", "educations"}
	resumeJobs      = []Path{"experience", "work_experience", "workExperience"}
)

// Resume maps a raw parser response onto ResumeData. The response may be
// wrapped in a data/resume/result envelope. Fields the parser did not
// return come back empty; the caller decides whether that is acceptable.
func Resume(raw map[string]any) model.ResumeData {
	m := Unwrap(raw, "data", "resume", "resume_data", "result")

	out := model.ResumeData{
		PersonalInfo: model.PersonalInfo{
			FirstName: String(m, resumeFirstName...),
			LastName:  String(m, resumeLastName...),
			Email:     String(m, resumeEmail...),
			Phone:     String(m, resumePhone...),
			Location:  String(m, resumeLocation...),
			Website:   String(m, resumeWebsite...),
		},
		Skills: model.SkillSet{
			HardSkills: StringSlice(m, resumeHardSkills...),
			SoftSkills: StringSlice(m, resumeSoftSkills...),
			Languages:  StringSlice(m, resumeLanguages...),
		},
		Summary:          String(m, resumeSummary...),
		DesiredPosition:  String(m, resumePosition...),
		SimilarPositions: StringSlice(m, resumeSimilar...),
		Education:        []model.Education{},
		Experience:       []model.WorkExperience{},
	}

	for _, entry := range MapSlice(m, resumeEducation...) {
		out.Education = append(out.Education, model.Education{
			Institution: String(entry, "institution", "school", "university"),
			Degree:      String(entry, "degree"),
			Field:       String(entry, "field", "field_of_study", "fieldOfStudy"),
			StartYear:   String(entry, "start_year", "startYear", "start"),
			EndYear:     String(entry, "end_year", "endYear", "end"),
		})
	}

	for _, entry := range MapSlice(m, resumeJobs...) {
		out.Experience = append(out.Experience, model.WorkExperience{
			Company:     String(entry, "company", "company_name", "companyName", "employer"),
			Position:    String(entry, "position", "title", "job_title", "jobTitle"),
			StartDate:   String(entry, "start_date", "startDate", "start"),
			EndDate:     String(entry, "end_date", "endDate", "end"),
			Description: String(entry, "description", "summary"),
		})
	}

	return out
}
