package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "ingester",
		Usage: "Ingest a contract's transfer events, enrich them with gas costs, and persist them as a graph",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the ingestion pipeline, once or on an interval",
				Flags:  runFlags(),
				Action: run,
			},
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
