package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/guriri-express/dispatch/cmd/dispatchctl/cli"
	"github.com/guriri-express/dispatch/internal/app"
	"github.com/guriri-express/dispatch/jobs"
)

const usage = `usage: dispatchctl <command> [flags]

commands:
  rules                      print the delivery fee policy
  audit [-window-days N]     enqueue a ledger audit
  queue                      show the job queue state
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		slog.Default().Error("dispatchctl", slog.String("command", os.Args[1]), slog.Any("error", err))
		os.Exit(1)
	}
}

func run(command string, args []string) error {
	if command == "rules" {
		return cli.WriteRules(os.Stdout)
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	ops, err := cli.NewJobsCLI(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		return err
	}
	defer func() { _ = ops.Close() }()

	switch command {
	case "audit":
		fs := flag.NewFlagSet("audit", flag.ContinueOnError)
		windowDays := fs.Int("window-days", cfg.LedgerAuditWindowDays, "days of orders to audit")
		if err := fs.Parse(args); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		info, err := ops.Trigger(ctx, jobs.TaskLedgerAudit, *windowDays)
		if err != nil {
			return err
		}
		fmt.Printf("enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
		return nil
	case "queue":
		stats, err := ops.InspectQueue()
		if err != nil {
			return err
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d archived=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Archived)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}
