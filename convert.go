package pgdump2mysql

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// ErrDecode is returned when the source dump is not valid UTF-8.
var ErrDecode = errors.New("file could not be read with UTF-8 encoding; try a different encoding")

// Config holds settings for a conversion.
type Config struct {
	// Source is the path of the PostgreSQL dump to read.
	Source string `json:"source,omitempty"`

	// Destination is the path the INSERT statements are written to.
	// Existing content is overwritten.
	Destination string `json:"destination,omitempty"`

	// Newline is the newline style of the output ("LF", "CR", or "CRLF").
	Newline string `json:"newline,omitempty"`

	// DisableForeignKeyChecks wraps the output in
	// SET FOREIGN_KEY_CHECKS = 0 / 1 so rows can load in any table order.
	DisableForeignKeyChecks bool `json:"disableForeignKeyChecks,omitempty"`

	// Conn is the PostgreSQL connection URL used by live exports.
	Conn string `json:"conn,omitempty"`

	// Driver is the database/sql driver used by live exports ("pgx" or "postgres").
	Driver string `json:"driver,omitempty"`

	// Schema is the PostgreSQL schema live exports read from.
	Schema string `json:"schema,omitempty"`

	// Tables limits a live export to these tables. Empty means every table.
	Tables []string `json:"tables,omitempty"`
}

// DefaultConfig provides default values for configuration.
var DefaultConfig = Config{
	Source:      "backup.sql",
	Destination: "mysql_backup3.sql",
	Newline:     "LF",
	Driver:      "pgx",
	Schema:      "public",
}

// WithDefaults returns cfg with every empty field filled from DefaultConfig.
func (cfg Config) WithDefaults() Config {
	if cfg.Source == "" {
		cfg.Source = DefaultConfig.Source
	}
	if cfg.Destination == "" {
		cfg.Destination = DefaultConfig.Destination
	}
	if cfg.Newline == "" {
		cfg.Newline = DefaultConfig.Newline
	}
	if cfg.Driver == "" {
		cfg.Driver = DefaultConfig.Driver
	}
	if cfg.Schema == "" {
		cfg.Schema = DefaultConfig.Schema
	}
	return cfg
}

// Result describes a finished conversion.
type Result struct {
	// Blocks is the number of COPY blocks that matched.
	Blocks int

	// Statements is the number of INSERT statements emitted.
	Statements int
}

const (
	fkChecksOff = "SET NAMES utf8mb4;\nSET FOREIGN_KEY_CHECKS = 0;\n\n"
	fkChecksOn  = "\nSET FOREIGN_KEY_CHECKS = 1;\n"
)

// Convert transcodes src and applies the output options of cfg.
func Convert(src string, cfg Config) (string, Result, error) {
	blocks := ExtractCopyBlocks(StripStatements(src))

	var sb strings.Builder
	if cfg.DisableForeignKeyChecks {
		sb.WriteString(fkChecksOff)
	}
	res := Result{
		Blocks:     len(blocks),
		Statements: EmitInserts(&sb, blocks),
	}
	if cfg.DisableForeignKeyChecks {
		sb.WriteString(fkChecksOn)
	}

	out := sb.String()
	if cfg.Newline != "" && cfg.Newline != "LF" {
		var err error
		out, err = convertLineEnding(out, cfg.Newline)
		if err != nil {
			return "", res, err
		}
	}
	return out, res, nil
}

// ReadSource reads a dump and normalises its line endings to LF.
// It returns ErrDecode if the content is not valid UTF-8.
func ReadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", ErrDecode
	}
	return convertLineEnding(string(data), "LF")
}

// WriteOutput writes content to path, replacing anything already there.
func WriteOutput(path, content string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ConvertFile reads cfg.Source, transcodes it, and writes cfg.Destination.
// The destination is not touched when reading or decoding fails.
func ConvertFile(cfg Config) (Result, error) {
	cfg = cfg.WithDefaults()
	src, err := ReadSource(cfg.Source)
	if err != nil {
		return Result{}, err
	}
	out, res, err := Convert(src, cfg)
	if err != nil {
		return res, err
	}
	if err := WriteOutput(cfg.Destination, out); err != nil {
		return res, err
	}
	return res, nil
}
