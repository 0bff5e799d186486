// statsctl looks up Fortnite map statistics from the terminal.
//
// Usage:
//
//	statsctl -code 1234-5678-9012
//	statsctl                         # read map codes from stdin, one per line
//	statsctl -watch                  # print stats events from the configured queue
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/anirame128/fortnite-insight-dashboard/internal/config"
	"github.com/anirame128/fortnite-insight-dashboard/internal/extraction"
	"github.com/anirame128/fortnite-insight-dashboard/internal/gate"
	"github.com/anirame128/fortnite-insight-dashboard/internal/logging"
	"github.com/anirame128/fortnite-insight-dashboard/internal/models"
	"github.com/anirame128/fortnite-insight-dashboard/internal/queue"
	"github.com/anirame128/fortnite-insight-dashboard/internal/services"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	code := flag.String("code", "", "Map code to look up (reads stdin when empty)")
	method := flag.String("method", "", "Forecast method (default from config)")
	asJSON := flag.Bool("json", false, "Print the raw JSON response")
	days := flag.Int("days", 7, "Forecast days to print")
	watch := flag.Bool("watch", false, "Print stats events published to the configured queue")
	flag.Parse()

	cfg := config.LoadOrDefault(*configPath)

	// Keep the terminal for results; logs go to stderr
	cfg.Logging.OutputPath = "stderr"
	cfg.Logging.Format = "console"
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *watch {
		if err := watchEvents(ctx, cfg.Queue, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
			os.Exit(1)
		}
		return
	}

	client := extraction.NewHTTPClient(cfg.Upstream, logger)
	cli := &lookupCLI{
		service: services.NewStatsService(logger, client, cfg.Stats, nil),
		gate:    gate.New(gate.ConfigFrom(cfg.Gate), gate.WithLogger(logger)),
		method:  *method,
		asJSON:  *asJSON,
		days:    *days,
		out:     os.Stdout,
	}

	if *code != "" {
		if !cli.lookup(ctx, *code) {
			os.Exit(1)
		}
		return
	}

	cli.interactive(ctx, os.Stdin)
}

// lookupCLI runs lookups for one terminal session behind one gate
type lookupCLI struct {
	service *services.StatsService
	gate    *gate.Gate
	method  string
	asJSON  bool
	days    int
	out     io.Writer
}

func (c *lookupCLI) interactive(ctx context.Context, in io.Reader) {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(c.out, "map code> ")
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			c.lookup(ctx, line)
		}
		fmt.Fprint(c.out, "map code> ")
	}
	fmt.Fprintln(c.out)
}

// lookup runs one gated request and prints the outcome. Bad input does not
// count towards the cooldown; upstream and internal failures do.
func (c *lookupCLI) lookup(ctx context.Context, code string) bool {
	if err := c.gate.Begin(); err != nil {
		fmt.Fprintln(c.out, gateMessage(err))
		return false
	}

	resp, err := c.service.Execute(ctx, &services.StatsRequest{MapCode: code, Method: c.method})
	if err != nil {
		if services.StatusOf(err) < 500 {
			c.gate.Cancel()
			fmt.Fprintf(c.out, "error: %s\n", err)
			return false
		}
		endErr := c.gate.End(err)
		fmt.Fprintf(c.out, "error: %s\n", err)
		var cd *gate.CooldownError
		if errors.As(endErr, &cd) {
			fmt.Fprintln(c.out, cd.Message)
		}
		return false
	}
	_ = c.gate.End(nil)

	if c.asJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(resp)
		return true
	}
	printStats(c.out, resp, c.days)
	return true
}

func gateMessage(err error) string {
	var cd *gate.CooldownError
	if errors.As(err, &cd) {
		return fmt.Sprintf("%s (%d s left)", cd.Message, cd.RetryAfterSeconds())
	}
	return err.Error()
}

func printStats(w io.Writer, resp *models.StatsResponse, days int) {
	fmt.Fprintf(w, "Map %s\n", resp.MapCode)
	fmt.Fprintf(w, "  Current players: %.0f\n", resp.CurrentPlayers)
	fmt.Fprintf(w, "  24h peak:        %.0f\n", resp.Peak24h)
	fmt.Fprintf(w, "  Daily gain:      %+.1f%%\n", resp.DailyGain)
	fmt.Fprintf(w, "  History:         %d days\n", len(resp.DailyHistory))

	fc := resp.Forecast
	if fc == nil || len(fc.Values) < 2 {
		fmt.Fprintln(w, "  Forecast:        not enough data")
		return
	}

	fmt.Fprintf(w, "  Forecast (%s, %s regime, MAPE %.1f%%):\n", fc.Info.Algorithm, fc.Info.Regime, fc.Info.MAPE)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for i := 1; i < len(fc.Values) && i <= days; i++ {
		fmt.Fprintf(tw, "    %s\t%.0f\t\n", fc.Labels[i], fc.Values[i])
	}
	_ = tw.Flush()
}

// watchEvents prints every stats event published after it subscribes
func watchEvents(ctx context.Context, cfg config.QueueConfig, w io.Writer) error {
	sub, err := queue.NewSubscriber(cfg)
	if errors.Is(err, queue.ErrDisabled) {
		return errors.New("no queue configured (set queue.type)")
	}
	if err != nil {
		return err
	}
	defer func() { _ = sub.Close() }()

	err = sub.Subscribe(ctx, cfg.Subject, func(data []byte) error {
		var event models.StatsEvent
		if err := queue.DecodeEvent(data, &event); err != nil {
			logging.Warn("Skipping undecodable event", "error", err)
			return nil
		}
		fmt.Fprintf(w, "%s  %s  current=%.0f peak=%.0f gain=%+.1f%% next=%.0f (%s/%s)\n",
			event.ComputedAt.Format("2006-01-02 15:04:05"),
			event.MapCode, event.CurrentPlayers, event.Peak24h, event.DailyGain,
			event.NextDay, event.Algorithm, event.Regime)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "watching %s (%s), Ctrl-C to stop\n", cfg.Subject, cfg.Type)
	<-ctx.Done()
	return nil
}
