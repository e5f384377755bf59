package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Name() string { return s.name }
func (s stubChecker) Check(ctx context.Context) error { return s.err }

type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) *redis.StatusCmd {
	if s.err != nil {
		return redis.NewStatusResult("", s.err)
	}
	return redis.NewStatusResult("PONG", nil)
}

func TestService_Check(t *testing.T) {
	tests := []struct {
		name       string
		checkers   []Checker
		wantStatus string
		wantDown   []string
	}{
		{
			name:       "no checkers",
			wantStatus: StatusOK,
		},
		{
			name:       "all up",
			checkers:   []Checker{stubChecker{name: "database"}, stubChecker{name: "redis"}},
			wantStatus: StatusOK,
		},
		{
			name: "one down",
			checkers: []Checker{
				stubChecker{name: "database", err: errors.New("connection refused")},
				stubChecker{name: "redis"},
			},
			wantStatus: StatusError,
			wantDown:   []string{"database"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			report := NewService(time.Second, tt.checkers...).Check(context.Background())

			assert.Equal(t, tt.wantStatus, report.Status)
			assert.Equal(t, tt.wantStatus == StatusOK, report.Healthy())
			assert.Len(t, report.Details, len(tt.checkers))
			assert.Len(t, report.Error, len(tt.wantDown))
			for _, name := range tt.wantDown {
				assert.Equal(t, "down", report.Error[name].Status)
				assert.NotEmpty(t, report.Error[name].Message)
			}
		})
	}
}

func TestService_CheckTimeout(t *testing.T) {
	slow := checkerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	report := NewService(10*time.Millisecond, slow).Check(context.Background())

	assert.False(t, report.Healthy())
	assert.Contains(t, report.Error["slow"].Message, "deadline")
}

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) Name() string { return "slow" }
func (f checkerFunc) Check(ctx context.Context) error { return f(ctx) }

func TestSQLChecker(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	checker := NewSQLChecker("database", db)
	assert.Equal(t, "database", checker.Name())

	mock.ExpectPing()
	assert.NoError(t, checker.Check(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("db down"))
	assert.EqualError(t, checker.Check(context.Background()), "db down")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisChecker(t *testing.T) {
	assert.Equal(t, "redis", NewRedisChecker(stubPinger{}).Name())
	assert.NoError(t, NewRedisChecker(stubPinger{}).Check(context.Background()))
	assert.Error(t, NewRedisChecker(stubPinger{err: errors.New("nope")}).Check(context.Background()))
}
