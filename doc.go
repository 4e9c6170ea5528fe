// SPDX-License-Identifier: MIT

// Package pgdump2mysql turns the bulk-data sections of a PostgreSQL logical
// dump into MySQL-compatible INSERT statements.  It looks for the
// `COPY public."table" (cols) FROM stdin;` blocks that pg_dump writes,
// terminated by a lone `\.` line, and re-emits every data row as one
// single-row INSERT.
//
// The conversion is a best-effort pattern match, not a SQL parser.  Regions
// that do not have the expected shape are skipped without a warning, and
// row values are quoted naively (each tab becomes `', '`).  Schema,
// types and constraints are not translated.
//
// # Install
//
//	go install github.com/bcomnes/pgdump2mysql/cmd/pgdump2mysql@latest
//
// # Quick start
//
//	out := pgdump2mysql.Transcode(dumpText)
//
// or, file to file:
//
//	cfg := pgdump2mysql.DefaultConfig
//	res, err := pgdump2mysql.ConvertFile(cfg)
//	if errors.Is(err, pgdump2mysql.ErrDecode) {
//	    // source was not valid UTF-8
//	}
//
// # Pipeline
//
//	StripStatements(src)   → remove SET ...; and SELECT ...;
//	ExtractCopyBlocks(src) → []CopyBlock in source order
//	CleanColumns(spec)     → bare column list
//	RowValues(row)         → '1', 'Alice', '30'
//	EmitInserts(blocks)    → INSERT INTO t (cols) VALUES (...);\n per row
//
// # Live export
//
// Exporter renders COPY blocks straight from a running PostgreSQL database
// over database/sql (pgx or lib/pq), so the same transcoder can run without
// a dump file.
//
// # Versioning
//
// A semantic version string is exposed as:
//
//	var Version = "vX.Y.Z"
//
// Generated documentation; update whenever public API or CLI flags change.
package pgdump2mysql
