package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/assetpack/cmd/assetpack/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Build     commands.BuildCmd `cmd:"" help:"Build the application bundles"`
		Watch     commands.WatchCmd `cmd:"" help:"Build and rebuild when sources change"`
		Serve     commands.ServeCmd `cmd:"" help:"Build, watch and serve the bundles over HTTP"`
		Print     commands.PrintCmd `cmd:"" help:"Print the build configuration"`
		Match     commands.MatchCmd `cmd:"" help:"Show which rule applies to each path"`
		Debug     bool              `help:"Enable debug mode."`
		Telemetry bool              `help:"Export build traces and metrics over OTLP." env:"ASSETPACK_TELEMETRY"`
		Version   kong.VersionFlag
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Telemetry: cli.Telemetry, Version: version})
	cmd.FatalIfErrorf(err)
}
