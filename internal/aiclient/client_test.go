package aiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/DeUskov/rezumy09/internal/config"
	"github.com/DeUskov/rezumy09/internal/model"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(testConfig(srv.URL), zap.NewNop())
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func testConfig(url string) config.Collaborators {
	return config.Collaborators{
		ParserURL:      url,
		ExtractorURL:   url,
		LetterURL:      url,
		ScorerURL:      url,
		ServiceKey:     "test-service-key",
		ParseTimeout:   5 * time.Second,
		DefaultTimeout: 5 * time.Second,
	}
}

func TestParseResume_MultipartRequest(t *testing.T) {
	userID := uuid.New()

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-service-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, userID.String(), r.FormValue("user_id"))
		assert.Equal(t, "resume.pdf", r.FormValue("path"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "resume.pdf", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"personalInfo":{"firstName":"Anna"},"skills":{"hardSkills":["Go"]}}`))
	})

	resume, err := client.ParseResume(context.Background(), []byte("%PDF-1.4"), "resume.pdf", userID)
	require.NoError(t, err)
	assert.Equal(t, "Anna", resume.PersonalInfo.FirstName)
	assert.Equal(t, []string{"Go"}, resume.Skills.HardSkills)
	assert.Empty(t, resume.PersonalInfo.LastName)
}

func TestParseResume_EmptyBodyIsNotAnError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	resume, err := client.ParseResume(context.Background(), []byte("x"), "resume.pdf", uuid.New())
	require.NoError(t, err)
	assert.False(t, resume.HasIdentity())
	assert.NotNil(t, resume.Skills.HardSkills)
}

func TestAPIError_JSONErrorField(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"upstream model unavailable"}`))
	})

	_, err := client.ExtractJob(context.Background(), "https://hh.ru/vacancy/123", uuid.New())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream model unavailable", apiErr.Message)
	assert.Equal(t, "job extractor", apiErr.Collaborator)
}

func TestAPIError_MessageFieldFallback(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"vacancy page is behind a login wall"}`))
	})

	_, err := client.ExtractJob(context.Background(), "https://hh.ru/vacancy/123", uuid.New())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "vacancy page is behind a login wall", apiErr.Message)
}

func TestAPIError_RawBodyFallback(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("stack trace goes here"))
	})

	_, err := client.ExtractJob(context.Background(), "https://hh.ru/vacancy/123", uuid.New())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "stack trace goes here", apiErr.Message)
}

func TestTimeoutIsDistinguishedFromNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.DefaultTimeout = 20 * time.Millisecond
	client := New(cfg, zap.NewNop())

	_, err := client.ExtractJob(context.Background(), "https://hh.ru/vacancy/123", uuid.New())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestNetworkErrorIsNotATimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := New(testConfig(srv.URL), zap.NewNop())

	_, err := client.ExtractJob(context.Background(), "https://hh.ru/vacancy/123", uuid.New())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestExtractJob_WrappedResponse(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, decodeJSON(r, &payload))
		assert.Equal(t, "https://hh.ru/vacancy/105", payload["vacancy_url"])
		assert.NotEmpty(t, payload["user_id"])

		w.Write([]byte(`{"job":{"job_title":"Go Developer","company_name":"Acme"}}`))
	})

	job, err := client.ExtractJob(context.Background(), "https://hh.ru/vacancy/105", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "Go Developer", job.JobTitle)
	assert.Equal(t, "Acme", job.CompanyName)
	assert.Equal(t, "https://hh.ru/vacancy/105", job.SourceURL)
}

func TestGenerateLetter_FieldNamePriority(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"letter_text", `{"letter_text":"Dear team"}`, "Dear team"},
		{"cover_letter fallback", `{"cover_letter":"Hello"}`, "Hello"},
		{"letter fallback", `{"result":{"letter":"Hi"}}`, "Hi"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			})

			text, err := client.GenerateLetter(context.Background(), model.ResumeData{}, model.JobData{}, model.Customization{}, uuid.New())
			require.NoError(t, err)
			assert.Equal(t, tc.want, text)
		})
	}
}

func TestGenerateLetter_MissingTextIsAnError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	_, err := client.GenerateLetter(context.Background(), model.ResumeData{}, model.JobData{}, model.Customization{}, uuid.New())
	assert.Error(t, err)
}

const validScoringBody = `{
	"scoring_result": {
		"total_score": 78,
		"breakdown": {
			"hard_skills": {"score": 80, "summary": "solid"},
			"soft_skills": {"score": 70, "summary": "fine"},
			"experience_match": {"score": 75, "summary": "close"},
			"position_match": {"score": 85, "summary": "good"}
		},
		"recommendation": "apply"
	}
}`

func TestScoreMatch_Valid(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(validScoringBody))
	})

	result, err := client.ScoreMatch(context.Background(), model.ResumeData{}, model.JobData{}, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 78, result.TotalScore)
	assert.Equal(t, 70, result.Breakdown.SoftSkills.Score)
	assert.Equal(t, "apply", result.Recommendation)
}

func TestScoreMatch_MissingCategoryNamesTheField(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"scoring_result": {
				"total_score": 78,
				"breakdown": {
					"hard_skills": {"score": 80},
					"experience_match": {"score": 75},
					"position_match": {"score": 85}
				}
			}
		}`))
	})

	_, err := client.ScoreMatch(context.Background(), model.ResumeData{}, model.JobData{}, uuid.New())
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "scoring_result.breakdown.soft_skills", fieldErr.Field)
	assert.Contains(t, err.Error(), "scoring_result.breakdown.soft_skills")
}

func TestScoreMatch_MissingEnvelope(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"score": 78}`))
	})

	_, err := client.ScoreMatch(context.Background(), model.ResumeData{}, model.JobData{}, uuid.New())
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "scoring_result", fieldErr.Field)
}

func TestScoreMatch_MissingCategoryScore(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"scoring_result": {
				"total_score": 78,
				"breakdown": {
					"hard_skills": {"summary": "solid"},
					"soft_skills": {"score": 70},
					"experience_match": {"score": 75},
					"position_match": {"score": 85}
				}
			}
		}`))
	})

	_, err := client.ScoreMatch(context.Background(), model.ResumeData{}, model.JobData{}, uuid.New())
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "scoring_result.breakdown.hard_skills.score", fieldErr.Field)
}

func TestScoreMatch_OutOfRangeScoreIsKeptButLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"scoring_result": {
				"total_score": 105,
				"breakdown": {
					"hard_skills": {"score": 80},
					"soft_skills": {"score": 70},
					"experience_match": {"score": 75},
					"position_match": {"score": 85}
				}
			}
		}`))
	}))
	t.Cleanup(srv.Close)

	core, logs := observer.New(zapcore.WarnLevel)
	client := New(testConfig(srv.URL), zap.New(core))

	result, err := client.ScoreMatch(context.Background(), model.ResumeData{}, model.JobData{}, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 105, result.TotalScore)

	entries := logs.FilterMessage("scorer returned a score outside the expected range").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "total_score", entries[0].ContextMap()["field"])
	assert.Equal(t, int64(105), entries[0].ContextMap()["score"])
}
