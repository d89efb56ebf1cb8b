package workflow

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/DeUskov/rezumy09/internal/model"
)

// Session is the per-user state of one workflow run: the current step, the
// cached artifact of every completed step and the letter editing flags.
// A nil artifact means the step has not produced one (or was reset). The
// invariant maintained by every mutator: no artifact survives whose inputs
// were cleared or replaced.
type Session struct {
	UserID  uuid.UUID `json:"user_id"`
	Current Step      `json:"current"`

	Resume  *model.ResumeData    `json:"resume,omitempty"`
	Job     *model.JobData       `json:"job,omitempty"`
	Letter  *model.CoverLetter   `json:"letter,omitempty"`
	Scoring *model.ScoringResult `json:"scoring,omitempty"`

	Completed map[Step]bool `json:"completed"`

	// Letter edit cycle. While either flag is set the generate step cannot
	// be left behind, even though its completion flag is already true.
	IsEditing         bool `json:"is_editing"`
	HasUnsavedChanges bool `json:"has_unsaved_changes"`

	// JobManualEntry is set when extraction failed and the job artifact was
	// created empty for the user to fill in by hand.
	JobManualEntry bool `json:"job_manual_entry"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession starts a fresh run at the upload step.
func NewSession(userID uuid.UUID) *Session {
	return &Session{
		UserID:    userID,
		Current:   StepUpload,
		Completed: map[Step]bool{},
		UpdatedAt: time.Now().UTC(),
	}
}

// clearArtifact drops the artifact of a step together with the flags that
// only make sense while it exists. Steps without an artifact (final,
// dashboard) are a no-op.
func (s *Session) clearArtifact(step Step) {
	switch step {
	case StepUpload:
		s.Resume = nil
	case StepAnalyze:
		s.Job = nil
		s.JobManualEntry = false
	case StepGenerate:
		s.Letter = nil
		s.IsEditing = false
		s.HasUnsavedChanges = false
	case StepScoring:
		s.Scoring = nil
	}
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}

// Reset clears the artifact of step and cascades to every downstream
// artifact, since their inputs just became stale. The current step pointer
// is pulled back when it sat past the reset point.
func (s *Session) Reset(step Step) error {
	if step.Index() < 0 {
		return fmt.Errorf("step %q cannot be reset", step)
	}

	s.clearArtifact(step)
	s.Completed[step] = false
	for _, dep := range Downstream(step) {
		s.clearArtifact(dep)
		s.Completed[dep] = false
	}

	if s.Current.Index() > step.Index() {
		s.Current = step
	}
	s.touch()
	return nil
}

// SetResume installs the upload artifact. Replacing a resume invalidates
// everything derived from the previous one.
func (s *Session) SetResume(r *model.ResumeData) {
	if s.Resume != nil {
		_ = s.Reset(StepUpload)
	}
	s.Resume = r
	s.Completed[StepUpload] = true
	s.touch()
}

// SetJob installs the analyze artifact. manual marks the degraded path
// where extraction failed and the object starts empty but editable.
func (s *Session) SetJob(j *model.JobData, manual bool) {
	if s.Job != nil {
		_ = s.Reset(StepAnalyze)
	}
	s.Job = j
	s.JobManualEntry = manual
	s.Completed[StepAnalyze] = !manual
	s.touch()
}

// ConfirmJob marks a manually edited job artifact as complete.
func (s *Session) ConfirmJob() error {
	if s.Job == nil {
		return fmt.Errorf("no job data to confirm")
	}
	s.JobManualEntry = false
	s.Completed[StepAnalyze] = true
	s.touch()
	return nil
}

// SetLetter installs the generate artifact and ends any edit cycle.
func (s *Session) SetLetter(l *model.CoverLetter) {
	if s.Letter != nil {
		_ = s.Reset(StepGenerate)
	}
	s.Letter = l
	s.IsEditing = false
	s.HasUnsavedChanges = false
	s.Completed[StepGenerate] = true
	s.touch()
}

// BeginEdit opens the letter for editing; advancement is blocked until the
// edit is saved or discarded.
func (s *Session) BeginEdit() error {
	if s.Letter == nil {
		return fmt.Errorf("no letter to edit")
	}
	s.IsEditing = true
	s.touch()
	return nil
}

// MarkDirty records that the letter has unsaved edits.
func (s *Session) MarkDirty() error {
	if !s.IsEditing {
		return fmt.Errorf("letter is not being edited")
	}
	s.HasUnsavedChanges = true
	s.touch()
	return nil
}

// SaveEdit stores the edited text and closes the edit cycle. Editing the
// letter does not invalidate the scoring artifact: scoring depends on the
// resume and job data, not on the letter text.
func (s *Session) SaveEdit(text string) error {
	if s.Letter == nil {
		return fmt.Errorf("no letter to edit")
	}
	s.Letter.Text = text
	s.IsEditing = false
	s.HasUnsavedChanges = false
	s.touch()
	return nil
}

// DiscardEdit closes the edit cycle without touching the letter text.
func (s *Session) DiscardEdit() {
	s.IsEditing = false
	s.HasUnsavedChanges = false
	s.touch()
}

// SetScoring installs the scoring artifact.
func (s *Session) SetScoring(r *model.ScoringResult) {
	s.Scoring = r
	s.Completed[StepScoring] = true
	s.touch()
}

// Unlocked reports whether a step may be navigated to: its index is at or
// before the current step, or it was already completed.
func (s *Session) Unlocked(step Step) bool {
	if step == StepDashboard {
		return true
	}
	idx := step.Index()
	if idx < 0 {
		return false
	}
	return idx <= s.Current.Index() || s.Completed[step]
}

// CanAdvance is the guard for moving past the current step. It is false
// while the current step is incomplete, and false on the generate step
// during an open or dirty edit cycle regardless of the completion flag.
func (s *Session) CanAdvance() bool {
	if s.Current == StepFinal {
		return false
	}
	if !s.Completed[s.Current] {
		return false
	}
	if s.Current == StepGenerate && (s.IsEditing || s.HasUnsavedChanges) {
		return false
	}
	return true
}

// Advance moves to the next step when the guard allows it. Reaching the
// final step completes it, so it stays unlocked after backward navigation.
func (s *Session) Advance() error {
	if !s.CanAdvance() {
		if s.Current == StepGenerate && (s.IsEditing || s.HasUnsavedChanges) {
			return fmt.Errorf("cover letter has unsaved edits")
		}
		return fmt.Errorf("step %q is not complete", s.Current)
	}
	s.Current = s.Current.Next()
	if s.Current == StepFinal {
		s.Completed[StepFinal] = true
	}
	s.touch()
	return nil
}

// Navigate jumps to an unlocked step without touching any artifact.
func (s *Session) Navigate(step Step) error {
	if !Valid(step) || step == StepDashboard {
		return fmt.Errorf("cannot navigate to step %q", step)
	}
	if !s.Unlocked(step) {
		return fmt.Errorf("step %q is locked", step)
	}
	s.Current = step
	s.touch()
	return nil
}

// Restart clears every artifact and returns to the upload step.
func (s *Session) Restart() {
	s.Resume = nil
	s.Job = nil
	s.Letter = nil
	s.Scoring = nil
	s.Completed = map[Step]bool{}
	s.IsEditing = false
	s.HasUnsavedChanges = false
	s.JobManualEntry = false
	s.Current = StepUpload
	s.touch()
}

// SaveReady reports whether all four artifacts exist, the precondition for
// persisting a Generation.
func (s *Session) SaveReady() bool {
	return s.Resume != nil && s.Job != nil && s.Letter != nil && s.Scoring != nil
}

// LoadGeneration rebuilds a session from a persisted Generation and jumps
// straight to the final step. No collaborator is called on this path.
func (s *Session) LoadGeneration(gen *model.Generation) error {
	var resume model.ResumeData
	if err := json.Unmarshal(gen.ResumeData, &resume); err != nil {
		return fmt.Errorf("stored resume data is corrupt: %w", err)
	}
	var job model.JobData
	if err := json.Unmarshal(gen.JobData, &job); err != nil {
		return fmt.Errorf("stored job data is corrupt: %w", err)
	}
	var scoring model.ScoringResult
	if err := json.Unmarshal(gen.ScoringResults, &scoring); err != nil {
		return fmt.Errorf("stored scoring results are corrupt: %w", err)
	}

	s.Resume = &resume
	s.Job = &job
	s.Letter = &model.CoverLetter{Text: gen.CoverLetterText}
	s.Scoring = &scoring
	s.Completed = map[Step]bool{
		StepUpload:   true,
		StepAnalyze:  true,
		StepGenerate: true,
		StepScoring:  true,
		StepFinal:    true,
	}
	s.IsEditing = false
	s.HasUnsavedChanges = false
	s.JobManualEntry = false
	s.Current = StepFinal
	s.touch()
	return nil
}
