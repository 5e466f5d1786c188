package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	slotRepo "medichat/database/repository/slot"
	"medichat/models"
	"medichat/services/assistant"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(repo *slotRepo.MemorySlotRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := &assistant.DefaultAssistantService{
		Slots:    repo,
		Contexts: assistant.NewMemoryContextStore(),
		Logger:   zap.NewNop(),
		Now: func() time.Time {
			return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
		},
	}
	ah := NewAssistantHandler(svc)

	r := gin.New()
	api := r.Group("/api/assistant")
	api.POST("/execute", ah.ExecuteTurn)
	api.POST("/simulate", ah.RunSimulation)
	r.GET("/health", ah.HealthHandler)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestExecuteTurnValidation(t *testing.T) {
	r := newTestRouter(slotRepo.NewMemorySlotRepo())

	// Malformed JSON.
	req := httptest.NewRequest(http.MethodPost, "/api/assistant/execute", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing user id.
	w = postJSON(t, r, "/api/assistant/execute", gin.H{"message": "hello"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "user_id is required")

	// Blank message.
	w = postJSON(t, r, "/api/assistant/execute", gin.H{"user_id": 42, "message": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "message is required")
}

func TestExecuteTurnGeneratesSessionID(t *testing.T) {
	r := newTestRouter(slotRepo.NewMemorySlotRepo())

	w := postJSON(t, r, "/api/assistant/execute", gin.H{"user_id": 42, "message": "hello"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.TurnResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, models.ActionGeneral, resp.Action)
	assert.False(t, resp.RequiresConfirmation)
}

func TestExecuteTurnBookingRoundTrip(t *testing.T) {
	repo := slotRepo.NewMemorySlotRepo()
	repo.AddRow(models.SlotRow{
		DoctorName:     "john doe",
		DateSlot:       "15-09-2025 09:00",
		Specialization: "general_dentist",
		IsAvailable:    true,
	})
	r := newTestRouter(repo)

	w := postJSON(t, r, "/api/assistant/execute", gin.H{
		"user_id": 42,
		"message": "Book slot 1 with Dr. John Doe on 15-09-2025",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.TurnResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, models.ActionBookingConfirmation, resp.Action)
	assert.True(t, resp.RequiresConfirmation)

	w = postJSON(t, r, "/api/assistant/execute", gin.H{
		"session_id": resp.SessionID,
		"user_id":    42,
		"message":    "yes",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.ActionBookingCompleted, resp.Action)

	row := repo.Row(0)
	assert.False(t, row.IsAvailable)
	require.NotNil(t, row.PatientToAttend)
	assert.Equal(t, 42, *row.PatientToAttend)
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(slotRepo.NewMemorySlotRepo())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.Contains(t, w.Body.String(), `"service":"appointment-assistant"`)
}

func TestSimulationSuitePasses(t *testing.T) {
	r := newTestRouter(slotRepo.NewMemorySlotRepo())

	w := postJSON(t, r, "/api/assistant/simulate", gin.H{})
	require.Equal(t, http.StatusOK, w.Code)

	var report struct {
		Status  string             `json:"status"`
		Total   int                `json:"total"`
		Passed  int                `json:"passed"`
		Failed  int                `json:"failed"`
		Results []simulationResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "success", report.Status)
	assert.Equal(t, report.Total, report.Passed)
	assert.Zero(t, report.Failed)
	for _, res := range report.Results {
		assert.True(t, res.Passed, res.Name)
	}
}
