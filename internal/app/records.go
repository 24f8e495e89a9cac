package app

import (
	"context"

	"github.com/okian/upright/internal/domain/model"
)

// CreateCalibration stores a posture baseline for the caller.
func (s *Service) CreateCalibration(ctx context.Context, userID string, body map[string]any) (*model.Calibration, error) {
	if err := s.guard.Check(body); err != nil {
		return nil, err
	}
	var deviceID *string
	if d := stringField(body, "device_id"); d != "" {
		deviceID = &d
	}
	var baseline *float64
	if b, ok := floatField(body, "baseline_angle"); ok {
		baseline = &b
	}
	cal, err := s.store.CreateCalibration(ctx, userID, deviceID, baseline)
	if err != nil {
		return nil, err
	}
	s.writer.Trigger()
	return cal, nil
}

// Calibrations lists the caller's stored baselines.
func (s *Service) Calibrations(ctx context.Context, userID string) ([]*model.Calibration, error) {
	return s.store.CalibrationsForUser(ctx, userID)
}

// RecordDeviceMetric appends a device health sample.
func (s *Service) RecordDeviceMetric(ctx context.Context, body map[string]any) (*model.DeviceMetric, error) {
	if err := s.guard.Check(body); err != nil {
		return nil, err
	}
	m := &model.DeviceMetric{}
	if b, ok := floatField(body, "battery_level"); ok {
		m.BatteryLevel = &b
	}
	if f, ok := floatField(body, "fps"); ok {
		m.FPS = &f
	}
	if d := stringField(body, "device_id"); d != "" {
		m.DeviceID = &d
	}
	stored, err := s.store.AddDeviceMetric(ctx, m)
	if err != nil {
		return nil, err
	}
	s.writer.Trigger()
	return stored, nil
}
