// Package workflow provides the HTTP surface of the generation pipeline.
// Every handler loads the caller's session, applies one transition and
// writes the session back, so the response always reflects the stored state.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DeUskov/rezumy09/internal/aiclient"
	"github.com/DeUskov/rezumy09/internal/controller/file"
	"github.com/DeUskov/rezumy09/internal/database"
	"github.com/DeUskov/rezumy09/internal/model"
	"github.com/DeUskov/rezumy09/internal/utilities"
	"github.com/DeUskov/rezumy09/internal/workflow"
)

// AIService is the slice of the collaborator client the handlers need.
type AIService interface {
	ParseResume(ctx context.Context, content []byte, filename string, userID uuid.UUID) (model.ResumeData, error)
	ExtractJob(ctx context.Context, vacancyURL string, userID uuid.UUID) (model.JobData, error)
	GenerateLetter(ctx context.Context, resume model.ResumeData, job model.JobData, custom model.Customization, userID uuid.UUID) (string, error)
	ScoreMatch(ctx context.Context, resume model.ResumeData, job model.JobData, userID uuid.UUID) (*model.ScoringResult, error)
}

// Controller handles workflow related endpoints
type Controller struct {
	DB       *database.DBinstanceStruct
	Sessions workflow.SessionStore
	AI       AIService
	Files    *file.FileController
	Log      *zap.Logger
}

// NewController creates a new instance of Controller. Files may be nil, in
// which case raw uploads are not retained.
func NewController(db *database.DBinstanceStruct, sessions workflow.SessionStore, ai AIService, files *file.FileController, log *zap.Logger) *Controller {
	return &Controller{
		DB:       db,
		Sessions: sessions,
		AI:       ai,
		Files:    files,
		Log:      log,
	}
}

// stateResponse is the session as the client sees it after any transition.
type stateResponse struct {
	CurrentStep       workflow.Step           `json:"current_step"`
	Completed         map[workflow.Step]bool  `json:"completed"`
	CanAdvance        bool                    `json:"can_advance"`
	SaveReady         bool                    `json:"save_ready"`
	IsEditing         bool                    `json:"is_editing"`
	HasUnsavedChanges bool                    `json:"has_unsaved_changes"`
	JobManualEntry    bool                    `json:"job_manual_entry"`
	Resume            *model.ResumeData       `json:"resume,omitempty"`
	Job               *model.JobData          `json:"job,omitempty"`
	Letter            *model.CoverLetter      `json:"letter,omitempty"`
	Scoring           *model.ScoringResult    `json:"scoring,omitempty"`
}

func newStateResponse(s *workflow.Session) stateResponse {
	return stateResponse{
		CurrentStep:       s.Current,
		Completed:         s.Completed,
		CanAdvance:        s.CanAdvance(),
		SaveReady:         s.SaveReady(),
		IsEditing:         s.IsEditing,
		HasUnsavedChanges: s.HasUnsavedChanges,
		JobManualEntry:    s.JobManualEntry,
		Resume:            s.Resume,
		Job:               s.Job,
		Letter:            s.Letter,
		Scoring:           s.Scoring,
	}
}

// loadSession fetches the caller's session, creating a fresh one when none
// exists. On failure it writes the error response and returns ok=false.
func (wc *Controller) loadSession(c *gin.Context) (*workflow.Session, model.User, bool) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return nil, model.User{}, false
	}

	session, err := wc.Sessions.Get(c.Request.Context(), user.ID)
	if errors.Is(err, workflow.ErrSessionNotFound) {
		return workflow.NewSession(user.ID), user, true
	}
	if err != nil {
		wc.Log.Error("failed to load workflow session", zap.String("user_id", user.ID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to load workflow session: %s", err.Error()),
		})
		return nil, model.User{}, false
	}
	return session, user, true
}

// saveAndRespond persists the session and returns its state with the given
// HTTP status.
func (wc *Controller) saveAndRespond(c *gin.Context, session *workflow.Session, status int) {
	if err := wc.Sessions.Save(c.Request.Context(), session); err != nil {
		wc.Log.Error("failed to store workflow session", zap.String("user_id", session.UserID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to store workflow session: %s", err.Error()),
		})
		return
	}
	c.JSON(status, newStateResponse(session))
}

// collaboratorError maps a failed collaborator call onto an HTTP response.
func (wc *Controller) collaboratorError(c *gin.Context, collaborator string, err error) {
	wc.Log.Warn("collaborator call failed", zap.String("collaborator", collaborator), zap.Error(err))

	if errors.Is(err, aiclient.ErrTimeout) {
		c.JSON(http.StatusGatewayTimeout, utilities.ErrorResponse{
			Error: fmt.Sprintf("The %s service did not respond in time", collaborator),
		})
		return
	}

	var apiErr *aiclient.APIError
	if errors.As(err, &apiErr) {
		c.JSON(http.StatusBadGateway, utilities.ErrorResponse{Error: apiErr.Error()})
		return
	}

	c.JSON(http.StatusBadGateway, utilities.ErrorResponse{Error: err.Error()})
}

// State returns the caller's current workflow state, starting a fresh run
// when none is stored.
// @Summary Current workflow state
// @Tags Workflow
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} stateResponse "Current state"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Session store error"
// @Router /workflow/state [get]
func (wc *Controller) State(c *gin.Context) {
	session, _, ok := wc.loadSession(c)
	if !ok {
		return
	}
	wc.saveAndRespond(c, session, http.StatusOK)
}

type navigateRequest struct {
	Step workflow.Step `json:"step" binding:"required"`
}

// Navigate moves the current step pointer to an unlocked step. No artifact
// is touched.
// @Summary Navigate to an unlocked step
// @Tags Workflow
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param step body navigateRequest true "Target step"
// @Success 200 {object} stateResponse "State after navigation"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 409 {object} utilities.ErrorResponse "Step is locked"
// @Router /workflow/navigate [post]
func (wc *Controller) Navigate(c *gin.Context) {
	var req navigateRequest
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

	if err := session.Navigate(req.Step); err != nil {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: err.Error()})
		return
	}
	wc.saveAndRespond(c, session, http.StatusOK)
}

// Reset clears one step's artifact and cascades to everything derived from
// it.
// @Summary Reset a step and its dependents
// @Tags Workflow
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param step path string true "Step to reset"
// @Success 200 {object} stateResponse "State after reset"
// @Failure 400 {object} utilities.ErrorResponse "Unknown step"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Router /workflow/reset/{step} [post]
func (wc *Controller) Reset(c *gin.Context) {
	session, _, ok := wc.loadSession(c)
	if !ok {
		return
	}

	if err := session.Reset(workflow.Step(c.Param("step"))); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}
	wc.saveAndRespond(c, session, http.StatusOK)
}

// Restart clears every artifact and returns the run to the upload step.
// @Summary Restart the workflow
// @Tags Workflow
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} stateResponse "Fresh state"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Router /workflow/restart [post]
func (wc *Controller) Restart(c *gin.Context) {
	session, _, ok := wc.loadSession(c)
	if !ok {
		return
	}

	session.Restart()
	wc.saveAndRespond(c, session, http.StatusOK)
}
