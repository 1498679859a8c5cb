package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationDetails(t *testing.T) {
	type payload struct {
		Title    string `validate:"required"`
		Priority string `validate:"oneof=Low Medium High"`
		Email    string `validate:"omitempty,email"`
	}

	err := validator.New().Struct(payload{Priority: "Urgent", Email: "nope"})
	require.Error(t, err)

	details := ValidationDetails(err)
	assert.Equal(t, "This field is required.", details["Title"])
	assert.Equal(t, "Must be one of: Low, Medium, High.", details["Priority"])
	assert.Equal(t, "Enter a valid email address.", details["Email"])
}

func TestValidationDetails_NonValidationError(t *testing.T) {
	var target struct{}
	err := json.Unmarshal([]byte("{"), &target)

	details := ValidationDetails(err)
	assert.Equal(t, map[string]string{"body": "Malformed JSON body."}, details)
}

func TestValidationDetails_TypeError(t *testing.T) {
	var target struct {
		Title string `json:"title"`
	}
	err := json.Unmarshal([]byte(`{"title": 5}`), &target)

	details := ValidationDetails(err)
	assert.Equal(t, "Incorrect type. Expected string.", details["title"])
}

func TestResponders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		call   func(c *gin.Context)
		status int
		code   string
	}{
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, "") }, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"credentials", InvalidCredentials, http.StatusUnauthorized, ErrCodeInvalidCredentials},
		{"forbidden", func(c *gin.Context) { Forbidden(c, "") }, http.StatusForbidden, ErrCodeForbidden},
		{"not found", func(c *gin.Context) { NotFound(c, "") }, http.StatusNotFound, ErrCodeNotFound},
		{"throttled", func(c *gin.Context) { TooManyRequests(c, "") }, http.StatusTooManyRequests, ErrCodeTooManyRequests},
		{"internal", func(c *gin.Context) { InternalError(c, "") }, http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			tt.call(c)

			assert.Equal(t, tt.status, w.Code)
			var body APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}
