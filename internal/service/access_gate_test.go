package service

import (
	"context"
	"errors"
	"testing"
)

type fakeChecker struct {
	joined map[string]bool
	fail   map[string]bool
}

func (f *fakeChecker) IsMember(_ context.Context, channel string, _ int64) (bool, error) {
	if f.fail[channel] {
		return false, errors.New("telegram unavailable")
	}
	return f.joined[channel], nil
}

func TestAccessGate_AllJoined(t *testing.T) {
	gate := NewAccessGate(&fakeChecker{
		joined: map[string]bool{"@news": true, "@chat": true},
	}, []string{"@news", "@chat"})

	if missing := gate.Evaluate(context.Background(), 1); len(missing) != 0 {
		t.Fatalf("expected access granted, missing = %v", missing)
	}
}

func TestAccessGate_ReportsLeftChannels(t *testing.T) {
	gate := NewAccessGate(&fakeChecker{
		joined: map[string]bool{"@news": true},
	}, []string{"@news", "@chat"})

	missing := gate.Evaluate(context.Background(), 1)
	if len(missing) != 1 || missing[0] != "@chat" {
		t.Fatalf("expected [@chat], got %v", missing)
	}
}

func TestAccessGate_FailOpenPerChannel(t *testing.T) {
	// One channel errors, one reports left: only the left channel is
	// reported, and the failing one does not abort the rest.
	gate := NewAccessGate(&fakeChecker{
		joined: map[string]bool{},
		fail:   map[string]bool{"@news": true},
	}, []string{"@news", "@chat"})

	missing := gate.Evaluate(context.Background(), 1)
	if len(missing) != 1 || missing[0] != "@chat" {
		t.Fatalf("expected fail-open on @news and [@chat] missing, got %v", missing)
	}
}

func TestAccessGate_NoChannelsConfigured(t *testing.T) {
	gate := NewAccessGate(&fakeChecker{}, nil)
	if missing := gate.Evaluate(context.Background(), 1); len(missing) != 0 {
		t.Fatalf("expected empty result, got %v", missing)
	}
}
