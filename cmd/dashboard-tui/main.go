package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/betbot/opsboard/internal/filter"
	"github.com/betbot/opsboard/internal/fixture"
	"github.com/betbot/opsboard/internal/tui"
	"github.com/betbot/opsboard/internal/views"
	"github.com/betbot/opsboard/pkg/config"
	"github.com/betbot/opsboard/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", os.Getenv("OPSBOARD_CONFIG"), "config file (.yaml/.yml/.json)")
		uids       = flag.String("uid", "", "comma separated UIDs to show (empty = all)")
		symbols    = flag.String("symbol", "", "comma separated symbols to show (empty = all)")
		altScreen  = flag.Bool("alt-screen", true, "use the terminal alternate screen")
	)
	flag.Parse()

	if err := run(*configPath, *uids, *symbols, *altScreen); err != nil {
		fmt.Fprintf(os.Stderr, "dashboard-tui: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, uids, symbols string, altScreen bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	// TUI 占用终端，日志只写文件
	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		Quiet:      true,
	}); err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	sel := filter.Selection{UIDs: splitList(uids), Symbols: splitList(symbols)}.Normalize()

	gen := fixture.New(fixture.Options{
		Seed:     cfg.Fixtures.Seed,
		Location: loc,
		Symbols:  cfg.Fixtures.Symbols,
	})
	registry := views.NewDefaultRegistry(views.Deps{
		Fixtures:    gen,
		ViewPeriod:  cfg.ViewPeriod(),
		ClockPeriod: cfg.ClockPeriod(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return tui.Run(ctx, registry, tui.Options{Selection: sel, AltScreen: altScreen})
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
