package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/anirame128/fortnite-insight-dashboard/internal/config"
	"github.com/anirame128/fortnite-insight-dashboard/internal/extraction"
	"github.com/anirame128/fortnite-insight-dashboard/internal/gate"
	"github.com/anirame128/fortnite-insight-dashboard/internal/logging"
	"github.com/anirame128/fortnite-insight-dashboard/internal/models"
	"github.com/anirame128/fortnite-insight-dashboard/internal/services"
)

// scriptedClient fails while down is set and serves a 14-day series otherwise
type scriptedClient struct {
	down  bool
	calls int
}

func (c *scriptedClient) FetchSeries(ctx context.Context, mapCode string) (*models.MapSeries, error) {
	c.calls++
	if c.down {
		return nil, &extraction.Error{Kind: extraction.KindUpstreamUnavailable, StatusCode: 503}
	}
	values := make([]float64, 14)
	for i := range values {
		values[i] = float64(100 + 10*(i%7))
	}
	return &models.MapSeries{
		MapCode:    mapCode,
		ResourceID: "42",
		Series:     models.RawSeries{StartEpochSeconds: 1710028800, StepSeconds: 86400, Values: values},
	}, nil
}

func newTestCLI(client extraction.Client, out *bytes.Buffer) *lookupCLI {
	cfg := config.DefaultConfig()
	return &lookupCLI{
		service: services.NewStatsService(logging.NewNop(), client, cfg.Stats, nil),
		gate:    gate.New(gate.ConfigFrom(cfg.Gate), gate.WithLogger(logging.NewNop())),
		days:    3,
		out:     out,
	}
}

func TestLookup_PrintsSummary(t *testing.T) {
	var out bytes.Buffer
	cli := newTestCLI(&scriptedClient{}, &out)

	if !cli.lookup(context.Background(), "1234-5678-9012") {
		t.Fatalf("Expected lookup to succeed, output: %s", out.String())
	}

	s := out.String()
	for _, want := range []string{"Map 1234-5678-9012", "24h peak:", "Daily gain:", "14 days", "holt_winters"} {
		if !strings.Contains(s, want) {
			t.Errorf("Expected %q in output:\n%s", want, s)
		}
	}
}

func TestLookup_CooldownAfterRepeatedFailures(t *testing.T) {
	var out bytes.Buffer
	client := &scriptedClient{down: true}
	cli := newTestCLI(client, &out)

	for i := 0; i < 3; i++ {
		if cli.lookup(context.Background(), "1234-5678-9012") {
			t.Fatal("Expected lookup to fail")
		}
	}
	if !strings.Contains(out.String(), "Multiple failed attempts. Please wait 30 s before retrying.") {
		t.Errorf("Expected cooldown message after the third failure, got:\n%s", out.String())
	}

	// Rejected without touching the upstream
	client.down = false
	out.Reset()
	if cli.lookup(context.Background(), "1234-5678-9012") {
		t.Fatal("Expected lookup to be rejected during cooldown")
	}
	if client.calls != 3 {
		t.Errorf("Expected 3 upstream calls, got %d", client.calls)
	}
	if !strings.Contains(out.String(), "s left") {
		t.Errorf("Expected remaining time in output, got %q", out.String())
	}
}

func TestLookup_InvalidCodeDoesNotCount(t *testing.T) {
	var out bytes.Buffer
	cli := newTestCLI(&scriptedClient{}, &out)

	for i := 0; i < 5; i++ {
		cli.lookup(context.Background(), "bogus")
	}
	if snap := cli.gate.Snapshot(); snap.Failures != 0 || snap.State != gate.Idle {
		t.Errorf("Expected clean gate, got %+v", snap)
	}
}

func TestInteractive_ReadsCodesPerLine(t *testing.T) {
	var out bytes.Buffer
	client := &scriptedClient{}
	cli := newTestCLI(client, &out)

	cli.interactive(context.Background(), strings.NewReader("1234-5678-9012\n\n  \n1111-2222-3333\n"))

	if client.calls != 2 {
		t.Errorf("Expected 2 lookups, got %d", client.calls)
	}
	if !strings.Contains(out.String(), "Map 1111-2222-3333") {
		t.Errorf("Expected second map in output:\n%s", out.String())
	}
}

func TestWatchEvents_Disabled(t *testing.T) {
	err := watchEvents(context.Background(), config.QueueConfig{}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "no queue configured") {
		t.Errorf("Expected disabled error, got %v", err)
	}
}
