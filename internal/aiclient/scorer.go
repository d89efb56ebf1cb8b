package aiclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/DeUskov/rezumy09/internal/model"
)

// Structural requirements on a scoring response. Score ranges are
// deliberately absent: out-of-range values are logged and kept.
const scoringSchemaJSON = `{
	"type": "object",
	"required": ["scoring_result"],
	"properties": {
		"scoring_result": {
			"type": "object",
			"required": ["total_score", "breakdown"],
			"properties": {
				"total_score": {"type": "number"},
				"breakdown": {
					"type": "object",
					"required": ["hard_skills", "soft_skills", "experience_match", "position_match"],
					"properties": {
						"hard_skills": {"$ref": "#/definitions/category"},
						"soft_skills": {"$ref": "#/definitions/category"},
						"experience_match": {"$ref": "#/definitions/category"},
						"position_match": {"$ref": "#/definitions/category"}
					}
				}
			}
		}
	},
	"definitions": {
		"category": {
			"type": "object",
			"required": ["score"],
			"properties": {"score": {"type": "number"}}
		}
	}
}`

var scoringSchema *gojsonschema.Schema

func init() {
	var err error
	scoringSchema, err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(scoringSchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("invalid scoring schema: %v", err))
	}
}

// ScoreMatch asks the scorer to rate the resume against the job. Unlike the
// parser and extractor, a structurally incomplete 200 response is a hard
// failure: a score card with missing categories is worse than no score card.
// The returned *FieldError names the first offending field.
func (c *Client) ScoreMatch(ctx context.Context, resume model.ResumeData, job model.JobData, userID uuid.UUID) (*model.ScoringResult, error) {
	payload := map[string]any{
		"resume_data": resume,
		"job_data":    job,
		"user_id":     userID.String(),
	}

	raw, err := c.postJSON(ctx, "scorer", c.cfg.ScorerURL, payload, c.cfg.DefaultTimeout)
	if err != nil {
		return nil, err
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("scorer returned malformed JSON: %w", err)
	}

	check, err := scoringSchema.Validate(gojsonschema.NewGoLoader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to validate scoring response: %w", err)
	}
	if !check.Valid() {
		return nil, &FieldError{Field: offendingField(body, check)}
	}

	var envelope struct {
		ScoringResult model.ScoringResult `json:"scoring_result"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("scorer returned malformed JSON: %w", err)
	}
	result := envelope.ScoringResult

	for name, score := range result.Scores() {
		if score < 0 || score > 100 {
			c.log.Warn("scorer returned a score outside the expected range",
				zap.String("field", name),
				zap.Int("score", score))
		}
	}

	return &result, nil
}

// offendingField walks the response in documented field order so the error
// always names the first problem, independent of schema validator ordering.
func offendingField(m map[string]any, check *gojsonschema.Result) string {
	sr, ok := m["scoring_result"].(map[string]any)
	if !ok {
		return "scoring_result"
	}
	if _, ok := sr["total_score"].(float64); !ok {
		return "scoring_result.total_score"
	}
	bd, ok := sr["breakdown"].(map[string]any)
	if !ok {
		return "scoring_result.breakdown"
	}
	for _, cat := range model.BreakdownCategories {
		entry, ok := bd[cat].(map[string]any)
		if !ok {
			return "scoring_result.breakdown." + cat
		}
		if _, ok := entry["score"].(float64); !ok {
			return "scoring_result.breakdown." + cat + ".score"
		}
	}
	// The walk covers every schema rule, but fall back to the validator's
	// own report in case they ever drift apart.
	if errs := check.Errors(); len(errs) > 0 {
		re := errs[0]
		if prop, ok := re.Details()["property"].(string); ok && re.Field() != "" {
			if re.Field() == "(root)" {
				return prop
			}
			return re.Field() + "." + prop
		}
		return re.Field()
	}
	return "scoring_result"
}
