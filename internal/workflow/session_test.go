package workflow

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeUskov/rezumy09/internal/model"
)

func fullSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(uuid.New())
	s.SetResume(&model.ResumeData{
		PersonalInfo: model.PersonalInfo{FirstName: "Anna", LastName: "K"},
		Skills:       model.SkillSet{HardSkills: []string{"Go"}},
	})
	require.NoError(t, s.Advance())
	s.SetJob(&model.JobData{JobTitle: "Go Developer", CompanyName: "Acme"}, false)
	require.NoError(t, s.Advance())
	s.SetLetter(&model.CoverLetter{Text: "Dear team,"})
	require.NoError(t, s.Advance())
	s.SetScoring(&model.ScoringResult{TotalScore: 80})
	require.NoError(t, s.Advance())
	require.Equal(t, StepFinal, s.Current)
	return s
}

func TestResetAnalyze_CascadesToLetterAndScoring(t *testing.T) {
	s := fullSession(t)

	require.NoError(t, s.Reset(StepAnalyze))

	assert.Nil(t, s.Job)
	assert.Nil(t, s.Letter)
	assert.Nil(t, s.Scoring)
	assert.NotNil(t, s.Resume, "resume artifact must be untouched")
	assert.False(t, s.Completed[StepAnalyze])
	assert.False(t, s.Completed[StepGenerate])
	assert.False(t, s.Completed[StepScoring])
	assert.True(t, s.Completed[StepUpload])
	assert.Equal(t, StepAnalyze, s.Current)
}

func TestResetUpload_ClearsEverything(t *testing.T) {
	s := fullSession(t)

	require.NoError(t, s.Reset(StepUpload))

	assert.Nil(t, s.Resume)
	assert.Nil(t, s.Job)
	assert.Nil(t, s.Letter)
	assert.Nil(t, s.Scoring)
	assert.Equal(t, StepUpload, s.Current)
}

func TestReplacingResume_InvalidatesDownstream(t *testing.T) {
	s := fullSession(t)

	s.SetResume(&model.ResumeData{PersonalInfo: model.PersonalInfo{FirstName: "Boris"}})

	assert.Nil(t, s.Job)
	assert.Nil(t, s.Letter)
	assert.Nil(t, s.Scoring)
	assert.True(t, s.Completed[StepUpload])
	assert.Equal(t, "Boris", s.Resume.PersonalInfo.FirstName)
}

func TestAdvance_BlockedOnIncompleteStep(t *testing.T) {
	s := NewSession(uuid.New())

	assert.False(t, s.CanAdvance())
	assert.Error(t, s.Advance())
	assert.Equal(t, StepUpload, s.Current)
}

func TestAdvance_BlockedDuringLetterEdit(t *testing.T) {
	s := NewSession(uuid.New())
	s.SetResume(&model.ResumeData{PersonalInfo: model.PersonalInfo{FirstName: "A"}})
	require.NoError(t, s.Advance())
	s.SetJob(&model.JobData{JobTitle: "X"}, false)
	require.NoError(t, s.Advance())
	s.SetLetter(&model.CoverLetter{Text: "v1"})

	require.NoError(t, s.BeginEdit())
	assert.False(t, s.CanAdvance(), "open edit cycle must block advancement")
	assert.True(t, s.Completed[StepGenerate], "completion flag alone is not enough")

	require.NoError(t, s.MarkDirty())
	assert.False(t, s.CanAdvance())

	require.NoError(t, s.SaveEdit("v2"))
	assert.True(t, s.CanAdvance())
	assert.Equal(t, "v2", s.Letter.Text)
}

func TestDiscardEdit_KeepsOriginalText(t *testing.T) {
	s := NewSession(uuid.New())
	s.SetResume(&model.ResumeData{})
	_ = s.Advance()
	s.SetJob(&model.JobData{}, false)
	_ = s.Advance()
	s.SetLetter(&model.CoverLetter{Text: "original"})

	require.NoError(t, s.BeginEdit())
	require.NoError(t, s.MarkDirty())
	s.DiscardEdit()

	assert.Equal(t, "original", s.Letter.Text)
	assert.True(t, s.CanAdvance())
}

func TestManualJobEntry_RequiresConfirmation(t *testing.T) {
	s := NewSession(uuid.New())
	s.SetResume(&model.ResumeData{})
	require.NoError(t, s.Advance())

	// Extraction failed: empty but editable job data.
	s.SetJob(&model.JobData{}, true)

	assert.False(t, s.Completed[StepAnalyze])
	assert.False(t, s.CanAdvance())

	s.Job.JobTitle = "Filled in by hand"
	require.NoError(t, s.ConfirmJob())
	assert.True(t, s.CanAdvance())
}

func TestUnlocked_ForwardStepsLocked(t *testing.T) {
	s := NewSession(uuid.New())

	assert.True(t, s.Unlocked(StepUpload))
	assert.False(t, s.Unlocked(StepAnalyze))
	assert.False(t, s.Unlocked(StepFinal))

	s.SetResume(&model.ResumeData{})
	require.NoError(t, s.Advance())

	assert.True(t, s.Unlocked(StepUpload), "completed steps stay unlocked")
	assert.True(t, s.Unlocked(StepAnalyze))
	assert.False(t, s.Unlocked(StepGenerate))
}

func TestNavigate_BackwardsKeepsArtifacts(t *testing.T) {
	s := fullSession(t)

	require.NoError(t, s.Navigate(StepAnalyze))

	assert.Equal(t, StepAnalyze, s.Current)
	assert.NotNil(t, s.Job)
	assert.NotNil(t, s.Letter)
	assert.NotNil(t, s.Scoring)
	// Completed steps past the pointer remain unlocked.
	assert.True(t, s.Unlocked(StepFinal))
}

func TestFinalStep_CompletedOnArrivalAndNavigable(t *testing.T) {
	s := fullSession(t)

	assert.True(t, s.Completed[StepFinal])

	require.NoError(t, s.Navigate(StepUpload))
	require.NoError(t, s.Navigate(StepFinal))
	assert.Equal(t, StepFinal, s.Current)
}

func TestReset_LocksFinalStepAgain(t *testing.T) {
	s := fullSession(t)
	require.NoError(t, s.Navigate(StepAnalyze))

	require.NoError(t, s.Reset(StepAnalyze))

	assert.False(t, s.Completed[StepFinal])
	assert.False(t, s.Unlocked(StepFinal))
	assert.Error(t, s.Navigate(StepFinal))
}

func TestNavigate_LockedStepRejected(t *testing.T) {
	s := NewSession(uuid.New())

	assert.Error(t, s.Navigate(StepScoring))
	assert.Error(t, s.Navigate(StepDashboard))
	assert.Error(t, s.Navigate(Step("bogus")))
}

func TestRestart_ClearsAllCaches(t *testing.T) {
	s := fullSession(t)

	s.Restart()

	assert.Equal(t, StepUpload, s.Current)
	assert.False(t, s.SaveReady())
	assert.Nil(t, s.Resume)
	assert.Empty(t, s.Completed)
}

func TestLoadGeneration_JumpsToFinal(t *testing.T) {
	resume, _ := json.Marshal(model.ResumeData{PersonalInfo: model.PersonalInfo{FirstName: "Anna"}})
	job, _ := json.Marshal(model.JobData{JobTitle: "Go Developer"})
	scoring, _ := json.Marshal(model.ScoringResult{TotalScore: 77})
	gen := &model.Generation{
		CoverLetterText: "Dear team,",
		ResumeData:      resume,
		JobData:         job,
		ScoringResults:  scoring,
	}

	s := NewSession(uuid.New())
	require.NoError(t, s.LoadGeneration(gen))

	assert.Equal(t, StepFinal, s.Current)
	assert.True(t, s.Completed[StepFinal])
	assert.True(t, s.SaveReady())
	assert.Equal(t, "Anna", s.Resume.PersonalInfo.FirstName)
	assert.Equal(t, 77, s.Scoring.TotalScore)
	assert.Equal(t, "Dear team,", s.Letter.Text)
}

func TestLoadGeneration_CorruptBlobRejected(t *testing.T) {
	gen := &model.Generation{
		ResumeData:     json.RawMessage(`{not json`),
		JobData:        json.RawMessage(`{}`),
		ScoringResults: json.RawMessage(`{}`),
	}

	s := NewSession(uuid.New())
	assert.Error(t, s.LoadGeneration(gen))
}

func TestSaveReady_RequiresAllFourArtifacts(t *testing.T) {
	s := NewSession(uuid.New())
	assert.False(t, s.SaveReady())

	s.SetResume(&model.ResumeData{})
	_ = s.Advance()
	s.SetJob(&model.JobData{}, false)
	_ = s.Advance()
	s.SetLetter(&model.CoverLetter{Text: "x"})
	assert.False(t, s.SaveReady())

	_ = s.Advance()
	s.SetScoring(&model.ScoringResult{})
	assert.True(t, s.SaveReady())
}
