package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratpoint-engineering/enterprise-api/internal/logger"
)

func TestLogging_Handle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		handler    echo.HandlerFunc
		wantStatus int
		wantMsg    string
	}{
		{
			name: "success path",
			handler: func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			},
			wantStatus: http.StatusOK,
			wantMsg:    "HTTP request completed",
		},
		{
			name: "client error",
			handler: func(echo.Context) error {
				return echo.NewHTTPError(http.StatusNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantMsg:    "HTTP request rejected",
		},
		{
			name: "unknown error becomes 500",
			handler: func(echo.Context) error {
				return errors.New("boom")
			},
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "HTTP request failed",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			lg := NewLogging(logger.NewWithWriter(&buf, -4, "test"))

			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/ping", nil), rec)

			err := lg.Handle(tt.handler)(c)

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, buf.String(), tt.wantMsg)
			assert.Contains(t, buf.String(), "path=/ping")
		})
	}
}
