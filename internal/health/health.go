// Package health reports the status of the service's dependencies.
package health

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
	statusUp    = "up"
	statusDown  = "down"
)

// Checker probes one dependency.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// ComponentStatus is the outcome of a single check.
type ComponentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Report aggregates all checks. Info holds passing components, Error failing
// ones and Details both.
type Report struct {
	Status  string                     `json:"status"`
	Info    map[string]ComponentStatus `json:"info"`
	Error   map[string]ComponentStatus `json:"error"`
	Details map[string]ComponentStatus `json:"details"`
}

// Healthy reports whether every check passed.
func (r Report) Healthy() bool {
	return r.Status == StatusOK
}

// Service runs checkers concurrently, each bounded by timeout.
type Service struct {
	checkers []Checker
	timeout  time.Duration
}

func NewService(timeout time.Duration, checkers ...Checker) *Service {
	return &Service{checkers: checkers, timeout: timeout}
}

func (s *Service) Check(ctx context.Context) Report {
	report := Report{
		Status:  StatusOK,
		Info:    make(map[string]ComponentStatus),
		Error:   make(map[string]ComponentStatus),
		Details: make(map[string]ComponentStatus),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, c := range s.checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			err := c.Check(checkCtx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				st := ComponentStatus{Status: statusDown, Message: err.Error()}
				report.Status = StatusError
				report.Error[c.Name()] = st
				report.Details[c.Name()] = st
				return
			}
			st := ComponentStatus{Status: statusUp}
			report.Info[c.Name()] = st
			report.Details[c.Name()] = st
		}(c)
	}
	wg.Wait()

	return report
}

// SQLChecker pings a database/sql handle.
type SQLChecker struct {
	name string
	db   *sql.DB
}

func NewSQLChecker(name string, db *sql.DB) *SQLChecker {
	return &SQLChecker{name: name, db: db}
}

func (c *SQLChecker) Name() string { return c.name }

func (c *SQLChecker) Check(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

type redisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisChecker pings a Redis client.
type RedisChecker struct {
	client redisPinger
}

func NewRedisChecker(client redisPinger) *RedisChecker {
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Name() string { return "redis" }

func (c *RedisChecker) Check(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
