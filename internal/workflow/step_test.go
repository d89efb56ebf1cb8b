package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepIndex(t *testing.T) {
	assert.Equal(t, 0, StepUpload.Index())
	assert.Equal(t, 4, StepFinal.Index())
	assert.Equal(t, -1, StepDashboard.Index())
	assert.Equal(t, -1, Step("nope").Index())
}

func TestStepNext(t *testing.T) {
	assert.Equal(t, StepAnalyze, StepUpload.Next())
	assert.Equal(t, StepFinal, StepScoring.Next())
	assert.Equal(t, StepFinal, StepFinal.Next(), "final has no successor")
}

func TestDownstream(t *testing.T) {
	assert.Equal(t, []Step{StepAnalyze, StepGenerate, StepScoring, StepFinal}, Downstream(StepUpload))
	assert.Equal(t, []Step{StepGenerate, StepScoring, StepFinal}, Downstream(StepAnalyze))
	assert.Equal(t, []Step{StepScoring, StepFinal}, Downstream(StepGenerate))
	assert.Equal(t, []Step{StepFinal}, Downstream(StepScoring))
	assert.Empty(t, Downstream(StepFinal))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(StepDashboard))
	assert.True(t, Valid(StepGenerate))
	assert.False(t, Valid(Step("elsewhere")))
}
