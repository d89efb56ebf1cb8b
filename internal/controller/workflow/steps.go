package workflow

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DeUskov/rezumy09/internal/metrics"
	"github.com/DeUskov/rezumy09/internal/model"
	"github.com/DeUskov/rezumy09/internal/utilities"
	"github.com/DeUskov/rezumy09/internal/validate"
	"github.com/DeUskov/rezumy09/internal/workflow"
)

// advance moves the step pointer forward as far as the completion flags
// allow. It stops in front of the first incomplete step.
func advance(s *workflow.Session) {
	for s.CanAdvance() {
		if err := s.Advance(); err != nil {
			return
		}
	}
}

// UploadResume accepts the resume file, retains the raw bytes and runs the
// parsing collaborator. A new resume invalidates every downstream artifact.
// @Summary Upload and parse a resume
// @Description Only files smaller than 10 MiB with .pdf or .docx extension are permitted
// @Tags Workflow
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param resume formData file true "Resume file"
// @Success 200 {object} stateResponse "State with the parsed resume"
// @Failure 400 {object} utilities.ErrorResponse "Validation failure"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 413 {object} utilities.ErrorResponse "File size is larger than 10 MiB"
// @Failure 502 {object} utilities.ErrorResponse "Parser failure"
// @Failure 504 {object} utilities.ErrorResponse "Parser timeout"
// @Router /workflow/upload [post]
func (wc *Controller) UploadResume(c *gin.Context) {
	session, user, ok := wc.loadSession(c)
	if !ok {
		return
	}

	rawFile, err := c.FormFile("resume")
	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		c.JSON(http.StatusRequestEntityTooLarge, utilities.ErrorResponse{
			Error: err.Error(),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve file: %s", err.Error()),
		})
		return
	}

	if err := validate.ResumeFile(rawFile.Filename, rawFile.Header.Get("Content-Type"), rawFile.Size); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	f, err := rawFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Cannot open file"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			wc.Log.Warn("failed to close uploaded file", zap.Error(err))
		}
	}()

	fileBytes, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Cannot read file"})
		return
	}

	if wc.Files != nil {
		if _, err := wc.Files.PersistResume(user.ID, rawFile.Filename, fileBytes); err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to store resume: %s", err.Error()),
			})
			return
		}
	}

	resume, err := wc.AI.ParseResume(c.Request.Context(), fileBytes, rawFile.Filename, user.ID)
	if err != nil {
		wc.collaboratorError(c, "resume parser", err)
		return
	}

	session.SetResume(&resume)
	advance(session)
	metrics.StepCompletions.WithLabelValues(string(workflow.StepUpload)).Inc()
	wc.saveAndRespond(c, session, http.StatusOK)
}

type analyzeRequest struct {
	VacancyURL string `json:"vacancy_url" binding:"required"`
}

// AnalyzeJob validates the posting URL and runs the extraction collaborator.
// When extraction fails the step degrades to manual entry: an empty JobData
// enters the session in editing state instead of surfacing the failure.
// @Summary Analyze a job posting URL
// @Tags Workflow
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param url body analyzeRequest true "Job posting URL"
// @Success 200 {object} stateResponse "State with the extracted job"
// @Failure 400 {object} utilities.ErrorResponse "URL rejected"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 409 {object} utilities.ErrorResponse "No resume uploaded yet"
// @Router /workflow/analyze [post]
func (wc *Controller) AnalyzeJob(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	session, user, ok := wc.loadSession(c)
	if !ok {
		return
	}

	if session.Resume == nil {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: "Upload a resume before analyzing a job"})
		return
	}

	site, err := validate.JobURL(req.VacancyURL)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	job, err := wc.AI.ExtractJob(c.Request.Context(), req.VacancyURL, user.ID)
	if err != nil {
		wc.Log.Warn("job extraction failed, degrading to manual entry",
			zap.String("site", site), zap.Error(err))
		session.SetJob(&model.JobData{SourceURL: req.VacancyURL}, true)
		wc.saveAndRespond(c, session, http.StatusOK)
		return
	}

	session.SetJob(&job, false)
	advance(session)
	metrics.StepCompletions.WithLabelValues(string(workflow.StepAnalyze)).Inc()
	wc.saveAndRespond(c, session, http.StatusOK)
}

// UpdateJob replaces the job artifact with manually edited fields and marks
// the analyze step complete. Like any replacement it cascades downstream.
// @Summary Edit the job data manually
// @Tags Workflow
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param job body model.JobData true "Edited job data"
// @Success 200 {object} stateResponse "State with the edited job"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body or empty job"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 409 {object} utilities.ErrorResponse "No resume uploaded yet"
// @Router /workflow/analyze [put]
func (wc *Controller) UpdateJob(c *gin.Context) {
	var job model.JobData
	if err := c.ShouldBindJSON(&job); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	session, _, ok := wc.loadSession(c)
	if !ok {
		return
	}

	if session.Resume == nil {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: "Upload a resume before entering job data"})
		return
	}

	if job.IsEmpty() {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Job data needs at least a title, company or description",
		})
		return
	}

	session.SetJob(&job, true)
	if err := session.ConfirmJob(); err != nil {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: err.Error()})
		return
	}
	advance(session)
	metrics.StepCompletions.WithLabelValues(string(workflow.StepAnalyze)).Inc()
	wc.saveAndRespond(c, session, http.StatusOK)
}

// GenerateLetter runs the letter collaborator over the cached resume and job
// artifacts.
// @Summary Generate a cover letter
// @Tags Workflow
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param customization body model.Customization true "Generation preferences"
// @Success 200 {object} stateResponse "State with the generated letter"
// @Failure 400 {object} utilities.ErrorResponse "Invalid customization"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 409 {object} utilities.ErrorResponse "Missing inputs or open edit"
// @Failure 502 {object} utilities.ErrorResponse "Generator failure"
// @Failure 504 {object} utilities.ErrorResponse "Generator timeout"
// @Router /workflow/generate [post]
func (wc *Controller) GenerateLetter(c *gin.Context) {
	var custom model.Customization
	if err := c.ShouldBindJSON(&custom); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid customization: %s", err.Error()),
		})
		return
	}

	session, user, ok := wc.loadSession(c)
	if !ok {
		return
	}

	if session.Resume == nil || session.Job == nil || !session.Completed[workflow.StepAnalyze] {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{
			Error: "Resume and confirmed job data are required before generating",
		})
		return
	}
	if session.IsEditing || session.HasUnsavedChanges {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{
			Error: "Save or discard the current letter edits before regenerating",
		})
		return
	}

	text, err := wc.AI.GenerateLetter(c.Request.Context(), *session.Resume, *session.Job, custom, user.ID)
	if err != nil {
		wc.collaboratorError(c, "letter generator", err)
		return
	}

	session.SetLetter(&model.CoverLetter{Text: text, Customization: custom})
	metrics.StepCompletions.WithLabelValues(string(workflow.StepGenerate)).Inc()
	wc.saveAndRespond(c, session, http.StatusOK)
}

// Letter edit actions.
const (
	letterActionBegin   = "begin"
	letterActionDirty   = "dirty"
	letterActionSave    = "save"
	letterActionDiscard = "discard"
)

type letterRequest struct {
	Action string `json:"action" binding:"required,oneof=begin dirty save discard"`
	Text   string `json:"text"`
}

// EditLetter drives the letter edit cycle. While an edit is open or unsaved
// the run cannot move past the generate step.
// @Summary Edit the generated letter
// @Tags Workflow
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param action body letterRequest true "Edit action"
// @Success 200 {object} stateResponse "State after the edit action"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 409 {object} utilities.ErrorResponse "No letter or no open edit"
// @Router /workflow/letter [put]
func (wc *Controller) EditLetter(c *gin.Context) {
	var req letterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	session, _, ok := wc.loadSession(c)
	if !ok {
		return
	}

	var err error
	switch req.Action {
	case letterActionBegin:
		err = session.BeginEdit()
	case letterActionDirty:
		err = session.MarkDirty()
	case letterActionSave:
		err = session.SaveEdit(req.Text)
	case letterActionDiscard:
		session.DiscardEdit()
	}
	if err != nil {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: err.Error()})
		return
	}
	wc.saveAndRespond(c, session, http.StatusOK)
}

// ScoreMatch runs the scoring collaborator once the letter is settled. A
// successful score completes the run and moves it to the final step.
// @Summary Score the resume against the job
// @Tags Workflow
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} stateResponse "State with scoring results"
// @Failure 400 {object} utilities.ErrorResponse "Resume lacks required fields"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 409 {object} utilities.ErrorResponse "Missing inputs or open edit"
// @Failure 502 {object} utilities.ErrorResponse "Scorer failure or malformed response"
// @Failure 504 {object} utilities.ErrorResponse "Scorer timeout"
// @Router /workflow/score [post]
func (wc *Controller) ScoreMatch(c *gin.Context) {
	session, user, ok := wc.loadSession(c)
	if !ok {
		return
	}

	if session.Resume == nil || session.Job == nil || !session.Completed[workflow.StepAnalyze] {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{
			Error: "Resume and confirmed job data are required before scoring",
		})
		return
	}
	if !session.Completed[workflow.StepGenerate] {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{
			Error: "Generate a cover letter before scoring",
		})
		return
	}
	if session.IsEditing || session.HasUnsavedChanges {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{
			Error: "Save or discard the current letter edits before scoring",
		})
		return
	}

	if !session.Resume.HasIdentity() {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Resume is missing a first or last name, edit it before scoring",
		})
		return
	}
	if !session.Resume.HasSkills() {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Resume has no skills listed, edit it before scoring",
		})
		return
	}

	if missing := missingOptionalFields(session.Resume, session.Job); len(missing) > 0 {
		wc.Log.Warn("scoring with missing optional fields",
			zap.Strings("fields", missing))
	}

	result, err := wc.AI.ScoreMatch(c.Request.Context(), *session.Resume, *session.Job, user.ID)
	if err != nil {
		wc.collaboratorError(c, "scorer", err)
		return
	}

	session.SetScoring(result)
	advance(session)
	metrics.StepCompletions.WithLabelValues(string(workflow.StepScoring)).Inc()
	wc.saveAndRespond(c, session, http.StatusOK)
}

// missingOptionalFields lists the optional resume and job sub-fields absent
// from the artifacts about to be scored. Their absence is logged, never
// blocking; scoring runs with whatever the user provided.
func missingOptionalFields(resume *model.ResumeData, job *model.JobData) []string {
	var missing []string
	if resume.PersonalInfo.Email == "" {
		missing = append(missing, "resume.personal_info.email")
	}
	if resume.PersonalInfo.Phone == "" {
		missing = append(missing, "resume.personal_info.phone")
	}
	if len(resume.Education) == 0 {
		missing = append(missing, "resume.education")
	}
	if len(resume.Experience) == 0 {
		missing = append(missing, "resume.experience")
	}
	if resume.Summary == "" {
		missing = append(missing, "resume.summary")
	}
	if job.Location == "" {
		missing = append(missing, "job.location")
	}
	if job.Description == "" {
		missing = append(missing, "job.description")
	}
	return missing
}
