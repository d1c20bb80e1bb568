package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cetinibs/lovacards/internal/repositories"
)

// HealthReport summarizes backing store reachability.
type HealthReport struct {
	Healthy   bool
	CheckedAt time.Time
	Detail    string
}

// SystemService reports service health.
type SystemService interface {
	Health(ctx context.Context) HealthReport
}

// SystemServiceDeps wires the service dependencies.
type SystemServiceDeps struct {
	Health repositories.HealthRepository
	Clock  func() time.Time
}

type systemService struct {
	health repositories.HealthRepository
	clock  func() time.Time
}

// NewSystemService validates deps and builds the service.
func NewSystemService(deps SystemServiceDeps) (SystemService, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("services: health repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &systemService{health: deps.Health, clock: func() time.Time { return clock().UTC() }}, nil
}

func (s *systemService) Health(ctx context.Context) HealthReport {
	report := HealthReport{Healthy: true, CheckedAt: s.clock()}
	if err := s.health.Ping(ctx); err != nil {
		report.Healthy = false
		report.Detail = err.Error()
	}
	return report
}
