package main

import (
	"context"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
)

var logger = log.New(os.Stderr)

var cli struct {
	Debug bool `help:"enable debug logging"`

	Train   TrainCmd   `cmd:"" help:"run MCCFR training and emit a blueprint"`
	Cluster ClusterCmd `cmd:"" help:"run the offline abstraction clustering pipeline"`
	Play    PlayCmd    `cmd:"" help:"serve a trained blueprint against a Player"`
	Inspect InspectCmd `cmd:"" help:"dump a persisted sink table in text form"`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("solver"),
		kong.Description("heads-up NLHE near-Nash solver"),
		kong.UsageOnError(),
	)

	setupLogger(cli.Debug)

	var err error
	switch ctx.Command() {
	case "train":
		err = cli.Train.Run(context.Background())
	case "cluster":
		err = cli.Cluster.Run(context.Background())
	case "play":
		err = cli.Play.Run(context.Background())
	case "inspect <path> <table>":
		err = cli.Inspect.Run()
	default:
		logger.Fatal("unknown command", "command", ctx.Command())
	}
	if err != nil {
		logger.Fatal("command failed", "error", err)
	}
}

func setupLogger(debug bool) {
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
}
