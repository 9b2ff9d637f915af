package mount

import (
	"context"
	"fmt"
)

// Service exposes a Driver's status/set/stop operations for a message
// handler to invoke, translating domain errors into the handler's
// telemetry responses.
type Service struct {
	driver Driver
}

// NewService wraps driver behind a Service.
func NewService(driver Driver) *Service {
	return &Service{driver: driver}
}

// Status returns the rotator's current position.
func (s *Service) Status(ctx context.Context) (Position, error) {
	pos, err := s.driver.Status(ctx)
	if err != nil {
		return Position{}, fmt.Errorf("mount: status: %w", err)
	}
	return pos, nil
}

// Set commands the rotator to az/el.
func (s *Service) Set(ctx context.Context, az, el float64) error {
	if err := s.driver.Set(ctx, az, el); err != nil {
		return fmt.Errorf("mount: set: %w", err)
	}
	return nil
}

// StopRotor halts the rotator in place and returns its resting position.
func (s *Service) StopRotor(ctx context.Context) (Position, error) {
	pos, err := s.driver.Stop(ctx)
	if err != nil {
		return Position{}, fmt.Errorf("mount: stop: %w", err)
	}
	return pos, nil
}
