package util

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAppErrorIs(t *testing.T) {
	wrapped := fmt.Errorf("loading unit: %w", ErrUnitNotFound)

	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.ErrorIs(t, wrapped, ErrUnitNotFound)
	assert.False(t, errors.Is(wrapped, ErrCourseNotFound), "messages must match for named errors")
	assert.False(t, errors.Is(wrapped, ErrConflict))

	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindNotFound, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestHandleErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err  error
		code int
	}{
		{NewValidationError("bad input"), http.StatusBadRequest},
		{ErrCourseNotFound, http.StatusNotFound},
		{ErrCourseAccessDenied, http.StatusForbidden},
		{ErrEmailRegistered, http.StatusConflict},
		{ErrUnauthorized, http.StatusUnauthorized},
		{errors.New("db exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleError(c, tt.err)
			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestInternalErrorsHideDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleError(c, errors.New("dial tcp 10.0.0.1:3306: refused"))
	assert.NotContains(t, w.Body.String(), "10.0.0.1")
}
