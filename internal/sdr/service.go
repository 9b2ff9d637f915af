package sdr

import (
	"context"
	"fmt"
)

// Service exposes a Recorder's start/stop operations for a message
// handler to invoke.
type Service struct {
	recorder Recorder
}

// NewService wraps recorder behind a Service.
func NewService(recorder Recorder) *Service {
	return &Service{recorder: recorder}
}

// StartRecording begins a capture for params.
func (s *Service) StartRecording(ctx context.Context, params Parameters) (string, error) {
	path, err := s.recorder.StartRecord(ctx, params)
	if err != nil {
		return "", fmt.Errorf("sdr: starting recording: %w", err)
	}
	return path, nil
}

// StopRecording ends the active capture.
func (s *Service) StopRecording(ctx context.Context) error {
	if err := s.recorder.StopRecord(ctx); err != nil {
		return fmt.Errorf("sdr: stopping recording: %w", err)
	}
	return nil
}
