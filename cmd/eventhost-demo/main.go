package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/saylorsolutions/eventhost/assert"
	"github.com/saylorsolutions/eventhost/internal/config"
	"github.com/saylorsolutions/eventhost/internal/demo"
	"github.com/saylorsolutions/eventhost/internal/logging"
	flag "github.com/spf13/pflag"
	"os"
	"os/signal"
	"path/filepath"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	name := filepath.Base(args[0])
	conf, err := config.Load(name, args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		_, _ = fmt.Fprintln(os.Stderr, "usage error:", err)
		return 2
	}

	log := logging.New(os.Stderr, conf.LogLevel, conf.LogFormat)
	assert.SetLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := demo.NewRunner(conf, log, os.Stdout).Run(ctx); err != nil {
		log.Error("Demo failed", "error", err)
		return 1
	}
	return 0
}
