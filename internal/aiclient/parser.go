package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"

	"github.com/DeUskov/rezumy09/internal/extract"
	"github.com/DeUskov/rezumy09/internal/model"
)

// ParseResume sends the uploaded document to the resume parser and maps the
// response onto ResumeData. Parsing is the slowest collaborator call, so it
// runs under the dedicated parse timeout. A partially filled or even empty
// result is not an error here: the workflow layer decides whether the fields
// it needs are present.
func (c *Client) ParseResume(ctx context.Context, content []byte, filename string, userID uuid.UUID) (model.ResumeData, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return model.ResumeData{}, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return model.ResumeData{}, fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := writer.WriteField("user_id", userID.String()); err != nil {
		return model.ResumeData{}, fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := writer.WriteField("path", filename); err != nil {
		return model.ResumeData{}, fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return model.ResumeData{}, fmt.Errorf("failed to build upload form: %w", err)
	}

	raw, err := c.post(ctx, "resume parser", c.cfg.ParserURL, writer.FormDataContentType(), &buf, c.cfg.ParseTimeout)
	if err != nil {
		return model.ResumeData{}, err
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return model.ResumeData{}, fmt.Errorf("resume parser returned malformed JSON: %w", err)
	}
	return extract.Resume(body), nil
}
