package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/updrill-api/internal/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func render(err error) (*httptest.ResponseRecorder, Envelope) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/attempts/x", nil)
	Error(c, err)

	var env Envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestError_StatusByKind(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", apperrors.Validation(apperrors.FieldError{Field: "answers", Message: "required"}), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", apperrors.NotFound("Attempt not found"), http.StatusNotFound, "NOT_FOUND"},
		{"forbidden", apperrors.Forbidden("Access denied"), http.StatusForbidden, "FORBIDDEN"},
		{"unauthorized", apperrors.Unauthorized(), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"internal", apperrors.Internal("failed to save attempt", errors.New("db down")), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := render(tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestError_ValidationDetails(t *testing.T) {
	_, env := render(apperrors.Validation(
		apperrors.FieldError{Field: "drillId", Message: "Drill ID is required"},
		apperrors.FieldError{Field: "answers[0].text", Message: "Answer text is required"},
	))

	require.Len(t, env.Error.Details, 2)
	assert.Equal(t, "answers[0].text", env.Error.Details[1].Field)
}

func TestError_InternalHidesCause(t *testing.T) {
	w, env := render(apperrors.Internal("failed", errors.New("password=hunter2")))

	assert.Equal(t, "Internal server error", env.Error.Message)
	assert.NotContains(t, w.Body.String(), "hunter2")
}
