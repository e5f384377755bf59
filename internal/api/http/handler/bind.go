package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/stratpoint-engineering/enterprise-api/internal/apierror"
)

// bind decodes the request into v and validates it with the echo validator.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) && httpErr.Code == http.StatusUnsupportedMediaType {
			return err
		}
		return apierror.NewErrValidation("request body must be a JSON object")
	}
	return c.Validate(v)
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apierror.NewErrValidation("id must be a UUID")
	}
	return id, nil
}
