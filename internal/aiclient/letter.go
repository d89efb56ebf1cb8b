package aiclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/DeUskov/rezumy09/internal/extract"
	"github.com/DeUskov/rezumy09/internal/model"
)

// GenerateLetter asks the letter generator for a cover letter tailored to
// the resume/job pair. Older generator versions named the text field
// differently, so all known names are tried in order.
func (c *Client) GenerateLetter(ctx context.Context, resume model.ResumeData, job model.JobData, custom model.Customization, userID uuid.UUID) (string, error) {
	payload := map[string]any{
		"resume_data":   resume,
		"job_data":      job,
		"customization": custom,
		"user_id":       userID.String(),
	}

	raw, err := c.postJSON(ctx, "letter generator", c.cfg.LetterURL, payload, c.cfg.DefaultTimeout)
	if err != nil {
		return "", err
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("letter generator returned malformed JSON: %w", err)
	}

	m := extract.Unwrap(body, "data", "result")
	text := extract.String(m, "letter_text", "cover_letter", "letter")
	if text == "" {
		return "", fmt.Errorf("letter generator returned no letter text")
	}
	return text, nil
}
