package mount

import (
	"context"
	"errors"
	"testing"
)

type fakeDriver struct {
	pos    Position
	setErr error
}

func (f *fakeDriver) Status(ctx context.Context) (Position, error) { return f.pos, nil }

func (f *fakeDriver) Set(ctx context.Context, az, el float64) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.pos = Position{Azimuth: az, Elevation: el}
	return nil
}

func (f *fakeDriver) Stop(ctx context.Context) (Position, error) { return f.pos, nil }

func TestService_Set_WrapsDriverError(t *testing.T) {
	driver := &fakeDriver{setErr: errors.New("serial timeout")}
	svc := NewService(driver)

	err := svc.Set(context.Background(), 90, 10)
	if err == nil {
		t.Fatal("expected the driver error to propagate")
	}
}

func TestService_Set_DelegatesToDriver(t *testing.T) {
	driver := &fakeDriver{}
	svc := NewService(driver)

	if err := svc.Set(context.Background(), 90, 10); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	pos, err := svc.Status(context.Background())
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if pos.Azimuth != 90 || pos.Elevation != 10 {
		t.Errorf("Status() = %+v, want (90, 10)", pos)
	}
}

func TestService_StopRotor(t *testing.T) {
	driver := &fakeDriver{pos: Position{Azimuth: 200, Elevation: 30}}
	svc := NewService(driver)

	pos, err := svc.StopRotor(context.Background())
	if err != nil {
		t.Fatalf("StopRotor returned error: %v", err)
	}
	if pos.Azimuth != 200 || pos.Elevation != 30 {
		t.Errorf("StopRotor() = %+v, want (200, 30)", pos)
	}
}
