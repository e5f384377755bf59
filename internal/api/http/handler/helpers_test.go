package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	httpctx "github.com/stratpoint-engineering/enterprise-api/internal/api/http/context"
	"github.com/stratpoint-engineering/enterprise-api/internal/api/http/validate"
	"github.com/stratpoint-engineering/enterprise-api/internal/testutil"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validate.New()
	e.HTTPErrorHandler = NewErrorHandler(testutil.MakeNoopLogger()).Handle
	return e
}

func jsonRequest(ctx context.Context, method, target, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r).WithContext(ctx)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return req
}

func serve(t *testing.T, e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

var testContextManager = httpctx.NewManager()
