package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/formpulse/formpulse-backend/internal/middleware"
	"github.com/formpulse/formpulse-backend/internal/response"
	"github.com/formpulse/formpulse-backend/internal/service"
)

// scoringConfigRequest builds a Gin test context for a scoring-config PUT
// with admin claims already attached, as RequireAdminJWT would do.
func scoringConfigRequest(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut,
		"/api/v1/admin/surveys/6f1f88aa-6f36-4b2d-9c70-000000000001/scoring",
		strings.NewReader(body))
	c.Params = gin.Params{{Key: "id", Value: "6f1f88aa-6f36-4b2d-9c70-000000000001"}}
	c.Set(middleware.ContextKeyClaims, &service.Claims{TokenType: service.TokenTypeAdmin, UserID: 1})
	return c, rec
}

func decodeErrCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Error.Code
}

func TestUpdateScoringConfigRejectsUnknownFields(t *testing.T) {
	// Fields outside the schema must 400 before any service call, so a
	// nil service is safe here and proves the rejection happens first.
	h := NewSurveyAdminHandler(nil)

	body := `{"enabled": true, "scoringEngineId": "totally-legit-engine"}`
	c, rec := scoringConfigRequest(t, body)

	h.UpdateScoringConfig(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := decodeErrCode(t, rec); code != string(response.ErrScoreConfigRejected) {
		t.Errorf("error code = %q, want %q", code, response.ErrScoreConfigRejected)
	}
}

func TestUpdateScoringConfigRejectsNestedUnknownFields(t *testing.T) {
	h := NewSurveyAdminHandler(nil)

	body := `{"enabled": true, "resultsScreen": {"scoreRanges": [], "webhookUrl": "http://evil.test"}}`
	c, rec := scoringConfigRequest(t, body)

	h.UpdateScoringConfig(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateScoringConfigRejectsMalformedJSON(t *testing.T) {
	h := NewSurveyAdminHandler(nil)

	c, rec := scoringConfigRequest(t, `{"enabled": tru`)

	h.UpdateScoringConfig(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := decodeErrCode(t, rec); code != string(response.ErrInvalidPayload) {
		t.Errorf("error code = %q, want %q", code, response.ErrInvalidPayload)
	}
}

func TestValidateScoringConfigReportsAllProblems(t *testing.T) {
	h := NewSurveyAdminHandler(nil)

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	body := `{
		"enabled": true,
		"scoreRanges": [
			{"id": "a", "min": 0, "max": 60, "label": "A"},
			{"id": "b", "min": 40, "max": 100, "label": "B"}
		],
		"resultsScreen": {"categories": [{"categoryId": "ghost"}]}
	}`
	c.Request = httptest.NewRequest(http.MethodPost,
		"/api/v1/admin/surveys/6f1f88aa-6f36-4b2d-9c70-000000000001/scoring/validate",
		strings.NewReader(body))

	h.ValidateScoringConfig(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (dry run never fails the request)", rec.Code)
	}

	var envelope struct {
		Data struct {
			Valid  bool     `json:"valid"`
			Errors []string `json:"errors"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Valid {
		t.Fatal("broken config reported valid")
	}
	if len(envelope.Data.Errors) < 2 {
		t.Errorf("errors = %v, want both the overlap and the undeclared category", envelope.Data.Errors)
	}
}
