// Package main implements the pgdump2mysql command.
// With no arguments it converts ./backup.sql into ./mysql_backup3.sql;
// flags, a JSON config file, and the export command cover the rest.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	"github.com/sirupsen/logrus"

	"github.com/bcomnes/pgdump2mysql"
)

var versionString = pgdump2mysql.Version + " (" + pgdump2mysql.GitCommit + ")"

// usage prints the help text.
func usage() {
	header := `Usage:
  pgdump2mysql [options] [command] [arguments]

Commands:
  convert             Convert the COPY blocks of -source into INSERT statements in -dest (default).
  export              Export tables from a live PostgreSQL database into INSERT statements in -dest.

Options:`
	fmt.Fprintln(os.Stderr, header)
	flag.PrintDefaults()
}

func main() {
	// Define global flags.
	source := flag.String("source", "", "PostgreSQL dump to read (default: \"backup.sql\")")
	dest := flag.String("dest", "", "File the INSERT statements are written to (default: \"mysql_backup3.sql\")")
	configPath := flag.String("config", "", "Path to JSON configuration file (optional)")
	connStr := flag.String("conn", "", "PostgreSQL connection URL for export. Overrides DATABASE_URL and config file.")
	driver := flag.String("driver", "", "database/sql driver for export: \"pgx\" or \"postgres\" (default: \"pgx\")")
	schema := flag.String("schema", "", "PostgreSQL schema to export (default: \"public\")")
	tables := flag.String("tables", "", "Comma-separated tables to export (default: every table in the schema)")
	newline := flag.String("newline", "", "Newline style of the output: LF, CR, or CRLF (default: \"LF\")")
	noFKChecks := flag.Bool("no-fk-checks", false, "Wrap the output in SET FOREIGN_KEY_CHECKS = 0/1")
	verbose := flag.Bool("verbose", false, "Log diagnostics to stderr")
	helpFlag := flag.Bool("help", false, "Show help message")
	versionFlag := flag.Bool("version", false, "Show version")

	flag.Usage = usage
	flag.Parse()

	// Safeguard: check for any flag-like arguments after positional arguments.
	for _, arg := range flag.Args() {
		if strings.HasPrefix(arg, "-") {
			fmt.Fprintln(os.Stderr, "Error: Flags must be specified before the command. Please reorder your arguments.")
			usage()
			os.Exit(1)
		}
	}

	if *helpFlag {
		usage()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Println("pgdump2mysql version:", versionString)
		os.Exit(0)
	}

	log := newLogger(*verbose)

	// ------------------------------------------------------------------
	// Configuration precedence:
	//   1. Flags supplied by the user
	//   2. Values from the JSON config file
	//   3. Built‑in defaults
	// ------------------------------------------------------------------

	var cfg pgdump2mysql.Config
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config file: %v\n", err)
			os.Exit(1)
		}
	}
	cfg = cfg.WithDefaults()

	if *source != "" {
		cfg.Source = *source
	}
	if *dest != "" {
		cfg.Destination = *dest
	}
	if *driver != "" {
		cfg.Driver = *driver
	}
	if *schema != "" {
		cfg.Schema = *schema
	}
	if *tables != "" {
		cfg.Tables = splitList(*tables)
	}
	if *newline != "" {
		cfg.Newline = strings.ToUpper(*newline)
	}
	if *noFKChecks {
		cfg.DisableForeignKeyChecks = true
	}

	args := flag.Args()
	command := "convert"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "convert":
		res, err := pgdump2mysql.ConvertFile(cfg)
		if errors.Is(err, pgdump2mysql.ErrDecode) {
			fmt.Println(err)
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error converting dump: %v\n", err)
			os.Exit(1)
		}
		log.WithFields(logrus.Fields{
			"source":     cfg.Source,
			"blocks":     res.Blocks,
			"statements": res.Statements,
		}).Info("converted dump")
		fmt.Printf("conversion complete: %s written\n", cfg.Destination)
	case "export":
		withDB(cfg, *connStr, func(db *sql.DB, ctx context.Context) {
			fmt.Printf("[%s] Exporting schema %s...\n", time.Now().Format(time.Kitchen), cfg.Schema)
			exporter := pgdump2mysql.NewExporter(db, cfg.Schema)
			exporter.Log = log
			dump, err := exporter.Dump(ctx, cfg.Tables)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Export error: %v\n", err)
				os.Exit(1)
			}
			out, res, err := pgdump2mysql.Convert(dump, cfg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error converting export: %v\n", err)
				os.Exit(1)
			}
			if err := pgdump2mysql.WriteOutput(cfg.Destination, out); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("[%s] Exported %d statement(s) from %d table(s) to %s\n",
				time.Now().Format(time.Kitchen), res.Statements, res.Blocks, cfg.Destination)
		})
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}
}

// withDB is a helper that opens the PostgreSQL connection,
// then calls the provided function with the database and a context.
func withDB(cfg pgdump2mysql.Config, flagConn string, f func(db *sql.DB, ctx context.Context)) {
	// Precedence: flag > env > config file
	connStr := firstNonEmpty(
		flagConn,
		os.Getenv("DATABASE_URL"),
		cfg.Conn,
	)

	if connStr == "" {
		fmt.Fprintln(os.Stderr, "Error: connection URL must be provided via -conn flag, DATABASE_URL env var, or \"conn\" in config file")
		usage()
		os.Exit(1)
	}
	if cfg.Driver != "pgx" && cfg.Driver != "postgres" {
		fmt.Fprintf(os.Stderr, "Error: driver '%s' not supported. Must be one of: pgx or postgres\n", cfg.Driver)
		os.Exit(1)
	}

	db, err := sql.Open(cfg.Driver, connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	f(db, ctx)
}

// newLogger returns the diagnostics logger. Without -verbose only
// warnings and errors are shown.
func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// loadConfig loads a JSON configuration file into cfg.
func loadConfig(path string, cfg *pgdump2mysql.Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(cfg)
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// firstNonEmpty returns the first non-empty string in the provided list.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
