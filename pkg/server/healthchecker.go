package server

import "context"

type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

type OkHealthChecker struct {
}

func NewOkHealthChecker() *OkHealthChecker {
	return &OkHealthChecker{}
}

func (hc *OkHealthChecker) Healthy(ctx context.Context) bool {
	return true
}

// HealthCheckerFunc adapts a plain function to HealthChecker.
type HealthCheckerFunc func(ctx context.Context) bool

func (f HealthCheckerFunc) Healthy(ctx context.Context) bool {
	return f(ctx)
}

// AllHealthy reports whether every checker is healthy. No checkers means healthy.
func AllHealthy(ctx context.Context, checkers ...HealthChecker) bool {
	for _, c := range checkers {
		if !c.Healthy(ctx) {
			return false
		}
	}
	return true
}
