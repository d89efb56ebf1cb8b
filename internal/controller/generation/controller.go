// Package generation provides HTTP handlers for saved generations: the
// persisted snapshots of completed workflow runs shown on the dashboard.
package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DeUskov/rezumy09/internal/database"
	"github.com/DeUskov/rezumy09/internal/metrics"
	"github.com/DeUskov/rezumy09/internal/model"
	"github.com/DeUskov/rezumy09/internal/utilities"
	"github.com/DeUskov/rezumy09/internal/workflow"
)

// Controller handles generation related endpoints
type Controller struct {
	DB       *database.DBinstanceStruct
	Sessions workflow.SessionStore
	Log      *zap.Logger
}

// NewController creates a new instance of Controller
func NewController(db *database.DBinstanceStruct, sessions workflow.SessionStore, log *zap.Logger) *Controller {
	return &Controller{
		DB:       db,
		Sessions: sessions,
		Log:      log,
	}
}

type saveRequest struct {
	Title  *string `json:"title"`
	Status string  `json:"status" binding:"omitempty,oneof=completed draft"`
}

// Save persists the caller's completed workflow run as a new Generation row.
// Every save creates a distinct row; the session is left untouched so a
// failed save can simply be retried.
// @Summary Save the completed workflow run
// @Tags Generation
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param options body saveRequest false "Optional title and status"
// @Success 201 {object} model.Generation "Saved generation"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 409 {object} utilities.ErrorResponse "Workflow run is incomplete"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /generations [post]
func (gc *Controller) Save(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	session, err := gc.Sessions.Get(c.Request.Context(), user.ID)
	if errors.Is(err, workflow.ErrSessionNotFound) {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: "No active workflow run to save"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to load workflow session: %s", err.Error()),
		})
		return
	}

	if !session.SaveReady() {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{
			Error: "Complete all workflow steps before saving",
		})
		return
	}

	gen, err := snapshotSession(user.ID, session)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: err.Error()})
		return
	}
	gen.Title = req.Title
	if req.Status != "" {
		gen.Status = req.Status
	}

	if err := gc.DB.Create(gen).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save generation: %s", err.Error()),
		})
		return
	}

	metrics.GenerationsSaved.Inc()
	gc.Log.Info("generation saved",
		zap.String("user_id", user.ID.String()),
		zap.String("generation_id", gen.ID.String()))

	c.JSON(http.StatusCreated, gen)
}

// snapshotSession freezes the session artifacts into a Generation row.
func snapshotSession(userID uuid.UUID, session *workflow.Session) (*model.Generation, error) {
	resumeJSON, err := json.Marshal(session.Resume)
	if err != nil {
		return nil, fmt.Errorf("failed to encode resume data: %w", err)
	}
	jobJSON, err := json.Marshal(session.Job)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job data: %w", err)
	}
	scoringJSON, err := json.Marshal(session.Scoring)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scoring results: %w", err)
	}

	score := session.Scoring.TotalScore
	return &model.Generation{
		UserID:           userID,
		JobTitle:         session.Job.JobTitle,
		CompanyName:      session.Job.CompanyName,
		OverallScore:     &score,
		CoverLetterText:  session.Letter.Text,
		ScoringResults:   scoringJSON,
		ResumeData:       resumeJSON,
		JobData:          jobJSON,
		Status:           model.GenerationCompleted,
		SimilarPositions: pq.StringArray(session.Resume.SimilarPositions),
	}, nil
}

// List returns the caller's saved generations, newest first, without the
// jsonb blobs. Archived rows are hidden.
// @Summary List saved generations
// @Tags Generation
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} model.GenerationSummary "Saved generations"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /generations [get]
func (gc *Controller) List(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var gens []model.Generation
	if err := gc.DB.
		Where("user_id = ? AND status <> ?", user.ID, model.GenerationArchived).
		Order("created_at desc").
		Find(&gens).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve generations: %s", err.Error()),
		})
		return
	}

	summaries := make([]model.GenerationSummary, 0, len(gens))
	for i := range gens {
		summaries = append(summaries, gens[i].Summary())
	}
	c.JSON(http.StatusOK, summaries)
}

// findOwned loads one non-archived generation scoped to the caller. An
// ownership miss is indistinguishable from a missing row.
func (gc *Controller) findOwned(c *gin.Context, user model.User) (*model.Generation, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid generation id"})
		return nil, false
	}

	var gen model.Generation
	err = gc.DB.
		Where("id = ? AND user_id = ? AND status <> ?", id, user.ID, model.GenerationArchived).
		First(&gen).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Generation not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve generation: %s", err.Error()),
		})
		return nil, false
	}
	return &gen, true
}

// Get returns one saved generation with all stored artifacts.
// @Summary Retrieve a saved generation
// @Tags Generation
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "Generation id"
// @Success 200 {object} model.Generation "Saved generation"
// @Failure 400 {object} utilities.ErrorResponse "Invalid id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Generation not found"
// @Router /generations/{id} [get]
func (gc *Controller) Get(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	gen, ok := gc.findOwned(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gen)
}

// Delete archives a saved generation. The row survives until cleanup prunes
// it, but disappears from the dashboard immediately.
// @Summary Delete a saved generation
// @Tags Generation
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "Generation id"
// @Success 200 {object} utilities.MessageResponse "Generation deleted"
// @Failure 400 {object} utilities.ErrorResponse "Invalid id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Generation not found"
// @Router /generations/{id} [delete]
func (gc *Controller) Delete(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid generation id"})
		return
	}

	res := gc.DB.Model(&model.Generation{}).
		Where("id = ? AND user_id = ? AND status <> ?", id, user.ID, model.GenerationArchived).
		Update("status", model.GenerationArchived)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to delete generation: %s", res.Error.Error()),
		})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Generation not found"})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Generation deleted"})
}

// Open hydrates the caller's workflow session from a saved generation and
// jumps it to the final step. No collaborator is called on this path.
// @Summary Open a saved generation in the workflow
// @Tags Generation
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "Generation id"
// @Success 200 {object} model.Generation "Opened generation"
// @Failure 400 {object} utilities.ErrorResponse "Invalid id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Generation not found"
// @Failure 500 {object} utilities.ErrorResponse "Stored data is corrupt"
// @Router /generations/{id}/open [post]
func (gc *Controller) Open(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	gen, ok := gc.findOwned(c, user)
	if !ok {
		return
	}

	session := workflow.NewSession(user.ID)
	if err := session.LoadGeneration(gen); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	if err := gc.Sessions.Save(c.Request.Context(), session); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to store workflow session: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"current_step": workflow.StepFinal,
		"generation":   gen,
	})
}
