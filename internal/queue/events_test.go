package queue

import (
	"context"
	"testing"

	"github.com/anirame128/fortnite-insight-dashboard/internal/compression"
	"github.com/anirame128/fortnite-insight-dashboard/internal/config"
)

type testEvent struct {
	MapCode string    `json:"map_code"`
	Daily   []float64 `json:"daily"`
}

func TestEventPublisher_RoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		q := newMemoryQueue()
		ctx, cancel := context.WithCancel(context.Background())

		var c collector
		_ = q.Subscribe(ctx, "stats.computed", c.handle)

		p := NewEventPublisher(q, config.QueueConfig{Subject: "stats.computed", Compress: compress})
		want := testEvent{MapCode: "1234-5678-9012", Daily: []float64{100, 120}}
		if err := p.Publish(ctx, want.MapCode, want); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}

		data := c.waitFor(t, 1)[0]
		wantAlgo := compression.None
		if compress {
			wantAlgo = compression.Snappy
		}
		if compression.Algorithm(data[0]) != wantAlgo {
			t.Errorf("Expected frame algorithm %s, got %d", wantAlgo, data[0])
		}

		var got testEvent
		if err := DecodeEvent(data, &got); err != nil {
			t.Fatalf("DecodeEvent failed: %v", err)
		}
		if got.MapCode != want.MapCode || len(got.Daily) != 2 || got.Daily[1] != 120 {
			t.Errorf("Unexpected event %+v", got)
		}

		cancel()
		_ = p.Close()
	}
}

func TestDecodeEvent_Errors(t *testing.T) {
	var v testEvent
	if err := DecodeEvent(nil, &v); err == nil {
		t.Error("Expected error for empty data")
	}
	if err := DecodeEvent([]byte{0, '{'}, &v); err == nil {
		t.Error("Expected error for truncated JSON")
	}
}
