package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// Applicator defines the interface for the core application logic.
// This allows the CLI to be tested independently of the main app
// implementation.
type Applicator interface {
	Serve(ctx context.Context, cfgPath string) error
	InitDB(ctx context.Context, cfgPath string) error
	ShowCounters(ctx context.Context, cfgPath string) error
	SetCounter(ctx context.Context, cfgPath, docType string, value int64) error
	ExtractSQL(ctx context.Context, dir string) error
}

// BuildCLI creates the full CLI command structure for the application.
// It injects the core application logic (the Applicator) into the
// command actions.
func BuildCLI(app Applicator) *cli.Command {
	// Define flags that are common across multiple commands.
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   "config.yaml",
		Usage:   "path to the configuration file",
	}

	serveCmd := &cli.Command{
		Name:  "serve",
		Usage: "Run the web server",
		Flags: []cli.Flag{configFlag},
		Action: func(ctx context.Context, c *cli.Command) error {
			return app.Serve(ctx, c.String("config"))
		},
	}

	initDBCmd := &cli.Command{
		Name:  "initdb",
		Usage: "Create the database file, schema and seed rows",
		Flags: []cli.Flag{configFlag},
		Action: func(ctx context.Context, c *cli.Command) error {
			return app.InitDB(ctx, c.String("config"))
		},
	}

	countersCmd := &cli.Command{
		Name:  "counters",
		Usage: "Show the per-type document number counters",
		Flags: []cli.Flag{configFlag},
		Action: func(ctx context.Context, c *cli.Command) error {
			return app.ShowCounters(ctx, c.String("config"))
		},
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Set the counter for a document type to an absolute value",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "type", Usage: "document type: quote or invoice", Required: true},
					&cli.IntFlag{Name: "value", Usage: "the counter value to set", Required: true},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return app.SetCounter(ctx, c.String("config"), c.String("type"), c.Int("value"))
				},
			},
		},
	}

	extractSQLCmd := &cli.Command{
		Name:  "extract-sql",
		Usage: "Write the embedded sql query files to disk for development editing",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Value:   ".",
				Usage:   "directory to write the sql/ directory into",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return app.ExtractSQL(ctx, c.String("dir"))
		},
	}

	// Assemble the root command.
	rootCmd := &cli.Command{
		Name:     "invoicebox",
		Usage:    "A single-user quoting and invoicing web application",
		Commands: []*cli.Command{serveCmd, initDBCmd, countersCmd, extractSQLCmd},
	}

	return rootCmd
}
