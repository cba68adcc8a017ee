// Package health runs readiness checks on the files and services the daily workflow needs.
package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	StatusOK       = "ok"
	StatusNotReady = "not_ready"

	defaultCheckTimeout = 5 * time.Second
)

// CheckFunc reports a problem with one dependency
type CheckFunc func(ctx context.Context) error

// ReadyResponse is the outcome of a readiness run
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Version  string            `json:"version,omitempty"`
	Checks   map[string]string `json:"checks"`
	Duration string            `json:"duration"`
}

// Healthy reports whether every check passed
func (r *ReadyResponse) Healthy() bool {
	return r.Status == StatusOK
}

type namedCheck struct {
	name string
	fn   CheckFunc
}

// Checker runs a fixed set of named checks concurrently
type Checker struct {
	serviceName string
	version     string
	timeout     time.Duration
	logger      *logrus.Logger
	checks      []namedCheck
}

// NewChecker creates a new checker
func NewChecker(serviceName, version string, logger *logrus.Logger) *Checker {
	return &Checker{
		serviceName: serviceName,
		version:     version,
		timeout:     defaultCheckTimeout,
		logger:      logger,
	}
}

// Add registers a check under name
func (c *Checker) Add(name string, fn CheckFunc) {
	c.checks = append(c.checks, namedCheck{name: name, fn: fn})
}

// Run executes every check with its own timeout
func (c *Checker) Run(ctx context.Context) *ReadyResponse {
	start := time.Now()
	results := make(map[string]string, len(c.checks))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, check := range c.checks {
		wg.Add(1)
		go func(check namedCheck) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			status := StatusOK
			if err := check.fn(checkCtx); err != nil {
				status = fmt.Sprintf("error: %v", err)
				if c.logger != nil {
					c.logger.WithError(err).WithField("check", check.name).Warn("Readiness check failed")
				}
			}

			mu.Lock()
			results[check.name] = status
			mu.Unlock()
		}(check)
	}
	wg.Wait()

	response := &ReadyResponse{
		Status:   StatusOK,
		Service:  c.serviceName,
		Version:  c.version,
		Checks:   results,
		Duration: time.Since(start).String(),
	}
	for _, status := range results {
		if status != StatusOK {
			response.Status = StatusNotReady
			break
		}
	}
	return response
}

// FileExists checks that path is a readable regular file
func FileExists(path string) CheckFunc {
	return func(ctx context.Context) error {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}
		return nil
	}
}

// DirWritable checks that files can be created in dir, creating it when missing
func DirWritable(dir string) CheckFunc {
	return func(ctx context.Context) error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		f, err := os.CreateTemp(dir, ".check-*")
		if err != nil {
			return err
		}
		name := f.Name()
		f.Close()
		return os.Remove(filepath.Clean(name))
	}
}
