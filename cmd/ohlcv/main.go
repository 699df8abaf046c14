package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/moznion/go-optional"
	"github.com/quantfeed/ohlcv-ingest/internal/config"
	"github.com/quantfeed/ohlcv-ingest/internal/datasource"
	"github.com/quantfeed/ohlcv-ingest/internal/ingest"
	"github.com/quantfeed/ohlcv-ingest/internal/logger"
	"github.com/quantfeed/ohlcv-ingest/internal/version"
	"github.com/quantfeed/ohlcv-ingest/internal/writer"
	"github.com/urfave/cli/v3"
)

// resolveConfig loads the configuration file when one is given and applies
// command-line overrides on top.
func resolveConfig(cmd *cli.Command) (config.Config, error) {
	cfg := config.DefaultConfig()

	if path := cmd.String("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}

		cfg = loaded
	}

	if cmd.IsSet("data") {
		cfg.DataDir = cmd.String("data")
	}

	if cmd.IsSet("db") || cfg.DatabasePath == "" {
		cfg.DatabasePath = cmd.String("db")
	}

	if cmd.IsSet("symbol") {
		cfg.Symbol = cmd.String("symbol")
	}

	if cmd.IsSet("strict") {
		cfg.Strict = cmd.Bool("strict")
	}

	if cmd.IsSet("timezone") {
		cfg.Timezone = cmd.String("timezone")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func readerConfig(cfg config.Config) ingest.ReaderConfig {
	return ingest.ReaderConfig{
		Symbol:   cfg.Symbol,
		Strict:   cfg.Strict,
		Location: cfg.Location(),
	}
}

// validateAction checks CSV files against the supported column layouts and
// reports every malformed row with its line number.
func validateAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("no input files given; pass one or more CSV paths")
	}

	log, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	totalBad := 0

	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}

		reader := ingest.NewReader(file, readerConfig(cfg), log)

		var (
			rows int
			bad  int
		)

		for _, err := range reader.Rows() {
			if err != nil {
				bad++

				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)

				continue
			}

			rows++
		}

		file.Close()

		fmt.Printf("%s: schema=%s header=%t valid=%d invalid=%d\n",
			path, reader.Schema(), reader.HasHeader(), rows, bad)

		totalBad += bad
	}

	if totalBad > 0 {
		return fmt.Errorf("validation failed: %d malformed rows", totalBad)
	}

	return nil
}

// ingestAction loads CSV files from the data directory and persists the
// validated records into DuckDB.
func ingestAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	results, err := ingest.LoadDir(cfg.DataDir, readerConfig(cfg), log, cmd.Bool("progress"))
	if err != nil {
		return err
	}

	window, hasWindow := cfg.SessionWindow()

	w := writer.NewDuckDBWriter(cfg.DatabasePath)
	if err := w.Initialize(); err != nil {
		return err
	}
	defer w.Close()

	written := 0

	for _, result := range results {
		records := result.Records
		if hasWindow {
			records = ingest.FilterSession(records, window)
		}

		if cmd.Bool("ordered") {
			if err := ingest.ValidateSeries(records); err != nil {
				return fmt.Errorf("%s: %w", result.Path, err)
			}
		}

		for _, record := range records {
			if err := w.Write(record); err != nil {
				return err
			}

			written++
		}
	}

	outputPath, err := w.Finalize()
	if err != nil {
		return err
	}

	fmt.Printf("ingested %d records from %d files into %s\n",
		written, len(results), outputPath)

	return nil
}

// exportAction reads records back from DuckDB and re-serializes them as CSV
// in the requested column layout.
func exportAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	schema := ingest.Schema(cmd.String("schema"))
	if !schema.Valid() {
		return fmt.Errorf("unknown schema %q; use %q or %q", schema, ingest.SchemaSplit, ingest.SchemaCombined)
	}

	source, err := datasource.NewDataSource(cfg.DatabasePath, log)
	if err != nil {
		return err
	}
	defer source.Close()

	start := optional.None[time.Time]()
	if cmd.IsSet("start") {
		start = optional.Some(cmd.Timestamp("start"))
	}

	end := optional.None[time.Time]()
	if cmd.IsSet("end") {
		end = optional.Some(cmd.Timestamp("end"))
	}

	w := writer.NewCSVWriter(cmd.String("output"), schema, cmd.Bool("header"))
	if err := w.Initialize(); err != nil {
		return err
	}
	defer w.Close()

	exported := 0

	for data, err := range source.ReadAll(start, end) {
		if err != nil {
			return err
		}

		if err := w.Write(data); err != nil {
			return err
		}

		exported++
	}

	outputPath, err := w.Finalize()
	if err != nil {
		return err
	}

	fmt.Printf("exported %d records to %s\n", exported, outputPath)

	return nil
}

// schemaAction prints the JSON schema for the YAML configuration file.
func schemaAction(ctx context.Context, cmd *cli.Command) error {
	schema, err := config.GenerateSchema()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the YAML configuration file",
	}
	symbolFlag := &cli.StringFlag{
		Name:  "symbol",
		Usage: "Symbol stamped on every record instead of the file stem",
	}
	strictFlag := &cli.BoolFlag{
		Name:  "strict",
		Usage: "Reject timestamps that are not in the canonical layouts",
	}
	timezoneFlag := &cli.StringFlag{
		Name:  "timezone",
		Usage: "IANA timezone applied to naive timestamps (default UTC)",
	}
	dbFlag := &cli.StringFlag{
		Name:  "db",
		Usage: "Path to the DuckDB database file",
		Value: "market_data.db",
	}

	cmd := &cli.Command{
		Name:    "ohlcv",
		Usage:   "Validate, ingest and export OHLCV CSV market data",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Validate CSV files against the supported column layouts",
				ArgsUsage: "FILE [FILE...]",
				Flags: []cli.Flag{
					configFlag,
					symbolFlag,
					strictFlag,
					timezoneFlag,
				},
				Action: validateAction,
			},
			{
				Name:  "ingest",
				Usage: "Load CSV files from the data directory into DuckDB",
				Flags: []cli.Flag{
					configFlag,
					symbolFlag,
					strictFlag,
					timezoneFlag,
					dbFlag,
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "Directory scanned for CSV files",
						Value:   "data",
					},
					&cli.BoolFlag{
						Name:  "ordered",
						Usage: "Require strictly increasing timestamps per file",
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Render a progress bar while loading",
						Value: true,
					},
				},
				Action: ingestAction,
			},
			{
				Name:  "export",
				Usage: "Re-serialize stored records as CSV; prices come back from double storage, so trailing zeros are not preserved",
				Flags: []cli.Flag{
					configFlag,
					dbFlag,
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Path of the CSV file to write",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "schema",
						Usage: fmt.Sprintf("Column layout to emit (%s or %s)", ingest.SchemaSplit, ingest.SchemaCombined),
						Value: string(ingest.SchemaSplit),
					},
					&cli.BoolFlag{
						Name:  "header",
						Usage: "Emit the header row",
						Value: true,
					},
					&cli.TimestampFlag{
						Name:  "start",
						Usage: "Only export records at or after this time",
						Config: cli.TimestampConfig{
							Layouts: []string{"2006-01-02", "2006-01-02 15:04:05"},
						},
					},
					&cli.TimestampFlag{
						Name:  "end",
						Usage: "Only export records at or before this time",
						Config: cli.TimestampConfig{
							Layouts: []string{"2006-01-02", "2006-01-02 15:04:05"},
						},
					},
				},
				Action: exportAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema for the configuration file",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
