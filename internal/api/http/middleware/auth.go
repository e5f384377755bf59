package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stratpoint-engineering/enterprise-api/internal/apierror"
	"github.com/stratpoint-engineering/enterprise-api/internal/logger"
	"github.com/stratpoint-engineering/enterprise-api/internal/model"
)

// maxBodyBytes bounds the request body a guard buffers.
const maxBodyBytes = 1 << 20

// Authenticator resolves a bearer access token to an identity.
type Authenticator interface {
	Authenticate(accessToken string) (model.Identity, error)
}

// CredentialsValidator verifies an email and password pair.
type CredentialsValidator interface {
	ValidateCredentials(ctx context.Context, email, password string) (model.User, error)
}

// RefreshValidator resolves a refresh token to its owner, checking that it
// is the owner's current one.
type RefreshValidator interface {
	ValidateRefreshToken(ctx context.Context, refreshToken string) (model.User, error)
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Auth builds the authentication and authorization guards.
type Auth struct {
	authenticator  Authenticator
	credentials    CredentialsValidator
	refresh        RefreshValidator
	contextManager model.ContextManager
	validator      echo.Validator
	logger         *logger.Logger
}

// NewAuth creates a new Auth guard set.
func NewAuth(
	authenticator Authenticator,
	credentials CredentialsValidator,
	refresh RefreshValidator,
	contextManager model.ContextManager,
	validator echo.Validator,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		authenticator:  authenticator,
		credentials:    credentials,
		refresh:        refresh,
		contextManager: contextManager,
		validator:      validator,
		logger:         logger,
	}
}

// Access requires a valid bearer access token and attaches its identity.
func (m *Auth) Access(ctx context.Context, req *http.Request) (context.Context, error) {
	token := bearerToken(req.Header.Get(echo.HeaderAuthorization))
	if token == "" {
		return nil, apierror.NewErrMissingAuthorizationToken()
	}

	identity, err := m.authenticator.Authenticate(token)
	if err != nil {
		m.logger.Debug("Auth middleware: access token rejected",
			"path", req.URL.Path,
			"error", err.Error())
		return nil, apierror.NewErrInvalidAuthorizationToken()
	}

	return m.contextManager.SetIdentityToContext(ctx, identity), nil
}

// Credentials verifies the email and password in the request body and
// attaches the verified user.
func (m *Auth) Credentials(ctx context.Context, req *http.Request) (context.Context, error) {
	var body credentialsRequest
	if err := decodeBody(req, &body); err != nil {
		return nil, apierror.NewErrValidation("request body must be a JSON object")
	}
	if err := m.validator.Validate(body); err != nil {
		return nil, err
	}

	user, err := m.credentials.ValidateCredentials(ctx, body.Email, body.Password)
	if err != nil {
		return nil, err
	}

	return m.contextManager.SetUserToContext(ctx, user), nil
}

// Refresh verifies the refresh token in the request body and attaches its
// owner.
func (m *Auth) Refresh(ctx context.Context, req *http.Request) (context.Context, error) {
	var body refreshRequest
	if err := decodeBody(req, &body); err != nil || body.RefreshToken == "" {
		return nil, apierror.NewErrInvalidRefreshToken()
	}

	user, err := m.refresh.ValidateRefreshToken(ctx, body.RefreshToken)
	if err != nil {
		return nil, err
	}

	return m.contextManager.SetUserToContext(ctx, user), nil
}

// RequireRole admits identities whose role is one of roles. It must run
// after Access. No roles admits everyone.
func (m *Auth) RequireRole(roles ...model.Role) Guard {
	return func(ctx context.Context, _ *http.Request) (context.Context, error) {
		if len(roles) == 0 {
			return ctx, nil
		}

		identity, ok := m.contextManager.GetIdentityFromContext(ctx)
		if !ok {
			return nil, apierror.NewErrMissingAuthorizationToken()
		}
		if !slices.Contains(roles, identity.Role) {
			m.logger.Info("Auth middleware: role not allowed",
				"user_id", identity.ID.String(),
				"role", string(identity.Role))
			return nil, apierror.NewErrForbidden()
		}

		return ctx, nil
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// decodeBody reads the JSON body into v and puts the bytes back so later
// readers see the same body. An empty body decodes to the zero value.
func decodeBody(req *http.Request, v any) error {
	if req.Body == nil {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	req.Body = io.NopCloser(bytes.NewReader(body))

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode body: %w", err)
	}
	return nil
}
