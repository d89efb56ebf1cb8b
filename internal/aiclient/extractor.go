package aiclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/DeUskov/rezumy09/internal/extract"
	"github.com/DeUskov/rezumy09/internal/model"
)

// ExtractJob asks the job extractor to pull structured data from a vacancy
// page. When it fails the caller drops the workflow into manual entry mode
// instead of blocking the user, so any error returned here is recoverable.
func (c *Client) ExtractJob(ctx context.Context, vacancyURL string, userID uuid.UUID) (model.JobData, error) {
	payload := map[string]string{
		"vacancy_url": vacancyURL,
		"user_id":     userID.String(),
	}

	raw, err := c.postJSON(ctx, "job extractor", c.cfg.ExtractorURL, payload, c.cfg.DefaultTimeout)
	if err != nil {
		return model.JobData{}, err
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return model.JobData{}, fmt.Errorf("job extractor returned malformed JSON: %w", err)
	}

	job := extract.Job(body)
	job.SourceURL = vacancyURL
	return job, nil
}
