package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/dsprenkels/maruska/internal/app"
)

var version = "dev"

type cli struct {
	Host        string           `short:"H" help:"URL of the queue server's comet endpoint."`
	Config      string           `type:"path" help:"Config file (defaults to the XDG config dir)."`
	LogLevel    string           `help:"Log level (trace, debug, info, warn, error)."`
	LogFile     string           `help:"Log destination; \"-\" logs to stderr."`
	MetricsAddr string           `help:"Serve Prometheus metrics on this address."`
	Username    string           `short:"u" help:"Log in as this user."`
	NoTUI       bool             `name:"no-tui" help:"Log queue updates instead of starting the UI."`
	Version     kong.VersionFlag `help:"Print version and exit."`
}

func main() {
	os.Exit(run())
}

func run() int {
	var flags cli
	parser := kong.Must(&flags,
		kong.Name("maruska"),
		kong.Description("Terminal client for a shared media queue."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	_, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath:  flags.Config,
		Host:        flags.Host,
		LogLevel:    flags.LogLevel,
		LogFile:     flags.LogFile,
		MetricsAddr: flags.MetricsAddr,
		Username:    flags.Username,
		Headless:    flags.NoTUI,
		Version:     version,
	}
	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "maruska: %v\n", err)
		return 1
	}
	return 0
}
