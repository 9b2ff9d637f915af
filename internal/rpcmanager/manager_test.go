package rpcmanager

import (
	"context"
	"testing"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

func TestManager_CreateFuture_RejectsDuplicateCorrelationID(t *testing.T) {
	m := New()
	if _, err := m.CreateFuture("corr-1"); err != nil {
		t.Fatalf("first CreateFuture returned error: %v", err)
	}
	if _, err := m.CreateFuture("corr-1"); err == nil {
		t.Fatal("expected an error reusing an outstanding correlation id")
	}
}

func TestManager_HandleIncoming_ResolvesFuture(t *testing.T) {
	m := New()
	ch, err := m.CreateFuture("corr-1")
	if err != nil {
		t.Fatalf("CreateFuture returned error: %v", err)
	}
	payload, _ := structpb.NewStruct(map[string]any{"ok": true})

	m.HandleIncoming("corr-1", payload)

	select {
	case got := <-ch:
		if !got.Fields["ok"].GetBoolValue() {
			t.Errorf("received payload = %v, want ok=true", got)
		}
	case <-time.After(time.Second):
		t.Fatal("expected the future to resolve")
	}
}

func TestManager_HandleIncoming_IgnoresEmptyCorrelationID(t *testing.T) {
	m := New()
	m.HandleIncoming("", &structpb.Struct{})
	if m.Outstanding() != 0 {
		t.Errorf("Outstanding() = %d, want 0", m.Outstanding())
	}
}

func TestManager_HandleIncoming_IgnoresUnknownCorrelationID(t *testing.T) {
	m := New()
	// Should not panic even though no future was ever created for this id.
	m.HandleIncoming("unknown", &structpb.Struct{})
}

func TestManager_Wait_TimesOutWithoutResponse(t *testing.T) {
	m := New()
	ch, err := m.CreateFuture("corr-1")
	if err != nil {
		t.Fatalf("CreateFuture returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err = m.Wait(ctx, "corr-1", ch)
	if err == nil {
		t.Fatal("expected Wait to time out")
	}
	if m.Outstanding() != 0 {
		t.Errorf("expected the future to be cleaned up after timeout, Outstanding() = %d", m.Outstanding())
	}
}

func TestManager_Wait_ReturnsDeliveredPayload(t *testing.T) {
	m := New()
	ch, err := m.CreateFuture("corr-1")
	if err != nil {
		t.Fatalf("CreateFuture returned error: %v", err)
	}
	payload, _ := structpb.NewStruct(map[string]any{"value": 42.0})
	m.HandleIncoming("corr-1", payload)

	got, err := m.Wait(context.Background(), "corr-1", ch)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if got.Fields["value"].GetNumberValue() != 42.0 {
		t.Errorf("value = %v, want 42.0", got.Fields["value"].GetNumberValue())
	}
}

func TestManager_Outstanding_TracksPendingFutures(t *testing.T) {
	m := New()
	if _, err := m.CreateFuture("a"); err != nil {
		t.Fatalf("CreateFuture returned error: %v", err)
	}
	if _, err := m.CreateFuture("b"); err != nil {
		t.Fatalf("CreateFuture returned error: %v", err)
	}
	if got := m.Outstanding(); got != 2 {
		t.Errorf("Outstanding() = %d, want 2", got)
	}

	m.Cleanup("a")
	if got := m.Outstanding(); got != 1 {
		t.Errorf("Outstanding() = %d, want 1 after Cleanup", got)
	}
}
