package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/SAP-F-2025/activity-service/internal/activity"
	"github.com/SAP-F-2025/activity-service/internal/cache"
	"github.com/SAP-F-2025/activity-service/internal/events"
	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/repositories/fs"
	"github.com/SAP-F-2025/activity-service/internal/services"
	"github.com/SAP-F-2025/activity-service/internal/utils"
	"github.com/SAP-F-2025/activity-service/internal/validator"
)

const swipeSource = `__Type__

Swipe Left or Right

__Content__

Sort the animals.

__Left Label Items__

- Cat
- Dog

__Right Label Items__

- Oak

__Labels__

- left: Animal
- right: Plant
`

const brokenSource = "__Type__\n\nText Input\n\n__Content__\n\nNothing to answer.\n"

type fakeParser struct{}

func (fakeParser) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	if token != "good" {
		return nil, errors.New("token is malformed")
	}
	claims := &casdoorsdk.Claims{}
	claims.Owner = "school"
	claims.Name = "author"
	return claims, nil
}

type testServer struct {
	router    *gin.Engine
	hub       *events.Hub
	publisher *events.MockEventPublisher
}

func newTestServer(t *testing.T, parser TokenParser) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	logger := utils.NewSlogLogger(slogger)

	sources, err := fs.NewSourceStore(t.TempDir())
	require.NoError(t, err)
	results, err := fs.NewResultStore(t.TempDir())
	require.NoError(t, err)

	publisher := events.NewMockEventPublisher(slogger)
	v := validator.New()
	manager := services.NewServiceManager(services.Dependencies{
		Compiler:  activity.NewCompiler(),
		Sources:   sources,
		Results:   results,
		Cache:     cache.NewActivityCache(cache.NewMemoryCache(), time.Minute),
		Publisher: publisher,
		Validator: v,
		Logger:    slogger,
	})
	hub := events.NewHub(slogger)

	router := gin.New()
	router.Use(utils.ContextLogger(logger))
	NewHandlerManager(manager, hub, parser, v, logger).SetupRoutes(router)

	return &testServer{router: router, hub: hub, publisher: publisher}
}

func (s *testServer) do(method, path string, body interface{}, header ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "activity-service")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestActivityLifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPut, "/api/v1/activities/animals", models.SaveActivityRequest{Markdown: swipeSource})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/activities/animals", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var act models.Activity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &act))
	assert.Equal(t, models.ActivitySwipeLeftRight, act.Type)
	assert.Len(t, act.Items, 3)
	assert.Equal(t, "Animal", act.Labels[models.SideLeft])

	w = s.do(http.MethodGet, "/api/v1/activities/animals?format=yaml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/yaml")
	var fromYAML map[string]interface{}
	require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &fromYAML))
	assert.Equal(t, "swipe-left-right", fromYAML["type"])

	w = s.do(http.MethodGet, "/api/v1/activities?type=swipe-left-right", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"animals"`)

	published := s.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventActivityUpdated, published[0].Type)
}

func TestActivityErrors(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"missing activity", http.MethodGet, "/api/v1/activities/nothing", nil, http.StatusNotFound},
		{"invalid name", http.MethodGet, "/api/v1/activities/.hidden", nil, http.StatusBadRequest},
		{"empty markdown", http.MethodPost, "/api/v1/activities/compile", models.CompileRequest{}, http.StatusBadRequest},
		{"uncompilable document", http.MethodPut, "/api/v1/activities/broken", models.SaveActivityRequest{Markdown: brokenSource}, http.StatusUnprocessableEntity},
		{"unknown list type", http.MethodGet, "/api/v1/activities?type=crossword", nil, http.StatusBadRequest},
		{"no saved results", http.MethodGet, "/api/v1/activities/nothing/results", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestCheckAndResults(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/v1/activities/animals", models.SaveActivityRequest{Markdown: swipeSource}).Code)

	w := s.do(http.MethodGet, "/api/v1/activities/animals", nil)
	var act models.Activity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &act))

	side := act.Items[0].Correct
	w = s.do(http.MethodPost, "/api/v1/activities/animals/check", models.CheckAnswerRequest{Index: 0, Answer: &side})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"index":0,"result":"correct","isCorrect":true}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/activities/animals/check", models.CheckAnswerRequest{Index: 9, Answer: &side})
	assert.Equal(t, http.StatusNotFound, w.Code)

	submitted := make([]models.GradedResult, len(act.Items))
	for i, it := range act.Items {
		submitted[i] = models.GradedResult{Selected: it.Correct}
	}
	submitted[2].Selected = "sideways"
	w = s.do(http.MethodPost, "/api/v1/activities/animals/results", models.Submission{Results: submitted})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var summary models.ResultSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Correct)
	assert.Equal(t, 3, summary.Total)
	assert.Contains(t, summary.Markdown, "__Responses__")

	w = s.do(http.MethodGet, "/api/v1/activities/animals/results", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resume models.ResumeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resume))
	assert.Equal(t, 2, resume.Correct)
	assert.Equal(t, "sideways", resume.Answers[2].Value())

	w = s.do(http.MethodGet, "/api/v1/activities/animals/results/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "animals-results.csv")
	assert.Equal(t, 4, strings.Count(strings.TrimSpace(w.Body.String()), "\n")+1)

	w = s.do(http.MethodGet, "/api/v1/activities/animals/results/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))

	w = s.do(http.MethodGet, "/api/v1/activities/animals/results/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/activities/animals/results/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestValidationCheck(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPost, "/api/v1/validation/check", models.ValidationCheckRequest{
		Answer:  "$12.50",
		Correct: "12.5 [kind: numeric-with-currency]",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"result":"correct"`)

	w = s.do(http.MethodPost, "/api/v1/validation/check", models.ValidationCheckRequest{Answer: "1", Correct: "1", Kind: "regex"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchCompile(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/v1/activities/animals", models.SaveActivityRequest{Markdown: swipeSource}).Code)

	w := s.do(http.MethodPost, "/api/v1/activities/batch/compile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"failed":0`)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t, fakeParser{})
	body := models.SaveActivityRequest{Markdown: swipeSource}

	w := s.do(http.MethodPut, "/api/v1/activities/animals", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPut, "/api/v1/activities/animals", body, "Authorization", "Bearer forged")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "malformed")

	w = s.do(http.MethodPut, "/api/v1/activities/animals", body, "Authorization", "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)

	// learner endpoints stay open
	w = s.do(http.MethodGet, "/api/v1/activities/animals", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTriggerValidation(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPost, "/api/v1/validate", models.ValidateTriggerRequest{Activity: "animals"})
	require.Equal(t, http.StatusAccepted, w.Code)

	w = s.do(http.MethodPost, "/api/v1/validate", nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	w = s.do(http.MethodPost, "/api/v1/validate", models.ValidateTriggerRequest{Activity: "../x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	published := s.publisher.GetPublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, events.EventValidate, published[0].Type)
	assert.Equal(t, "animals", published[0].Activity)
	assert.Equal(t, "", published[1].Activity)
}

func TestStreamEvents(t *testing.T) {
	s := newTestServer(t, nil)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events?activity=animals", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return s.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	s.hub.Broadcast(*events.NewValidateEvent("other"))
	s.hub.Broadcast(*events.NewValidateEvent("animals"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: validate\n", line)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"activity":"animals"`)

	cancel()
	require.Eventually(t, func() bool { return s.hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}
