package pgdump2mysql

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// exportableTableRe matches the table names the transcoder can pick up again.
var exportableTableRe = regexp.MustCompile(`^[\p{L}\p{N}_]+$`)

// Exporter renders the tables of a live PostgreSQL database as the COPY
// blocks pg_dump would write, ready for Transcode.
type Exporter struct {
	db     *sql.DB
	schema string

	// Log receives per-table diagnostics. It defaults to a discarding logger.
	Log logrus.FieldLogger
}

// NewExporter creates an Exporter reading from schema.
func NewExporter(db *sql.DB, schema string) *Exporter {
	if schema == "" {
		schema = DefaultConfig.Schema
	}
	return &Exporter{
		db:     db,
		schema: schema,
		Log:    discardLogger(),
	}
}

// Tables lists the base tables of the schema ordered by name.
func (e *Exporter) Tables(ctx context.Context) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, `
      SELECT table_name
      FROM information_schema.tables
      WHERE table_schema = $1 AND table_type = 'BASE TABLE'
      ORDER BY table_name;`, e.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// DumpTable writes one COPY block holding every row of table to w.
// Empty tables and tables whose names the transcoder cannot match write
// nothing.
func (e *Exporter) DumpTable(ctx context.Context, w io.Writer, table string) error {
	log := e.Log.WithField("table", table)
	if !exportableTableRe.MatchString(table) {
		log.Warn("skipping table with unsupported name")
		return nil
	}

	query := fmt.Sprintf("SELECT * FROM %s.%s", quoteIdent(e.schema), quoteIdent(table))
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to read table %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	var records [][]string
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("failed to scan table %s: %w", table, err)
		}
		fields := make([]string, len(columns))
		for i, v := range values {
			fields[i] = copyValue(v)
		}
		records = append(records, fields)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read table %s: %w", table, err)
	}

	// An empty data region would let the block pattern run on into the
	// next block's rows.
	if len(records) == 0 {
		log.Debug("table is empty")
		return nil
	}

	lead, err := leadColumn(records)
	if err != nil {
		return fmt.Errorf("failed to export table %s: %w", table, err)
	}
	if lead != 0 {
		log.WithField("column", columns[lead]).Debug("moved column to the front")
	}

	order := columnOrder(len(columns), lead)
	quoted := make([]string, len(columns))
	for i, c := range order {
		quoted[i] = quoteIdent(columns[c])
	}
	lines := make([]string, len(records))
	fields := make([]string, len(columns))
	for r, record := range records {
		for i, c := range order {
			fields[i] = record[c]
		}
		lines[r] = strings.Join(fields, "\t")
	}

	_, err = fmt.Fprintf(w, "COPY public.%s (%s) FROM stdin;\n%s\n\\.\n\n",
		quoteIdent(table), strings.Join(quoted, ", "), strings.Join(lines, "\n"))
	if err != nil {
		return err
	}
	log.WithField("rows", len(lines)).Debug("exported table")
	return nil
}

// leadColumn picks the first column that can start every data line. A line
// starting with a backslash would end the COPY block early, and a blank
// line would be dropped, so neither may appear.
func leadColumn(records [][]string) (int, error) {
	width := len(records[0])
	if width == 0 {
		return 0, fmt.Errorf("table has no columns")
	}
	for c := 0; c < width; c++ {
		ok := true
		for _, record := range records {
			if !startsCleanly(record, c) {
				ok = false
				break
			}
		}
		if ok {
			return c, nil
		}
	}
	for r, record := range records {
		if !startsCleanly(record, 0) {
			return 0, fmt.Errorf("row %d: no column order keeps %q inside the COPY block",
				r+1, strings.Join(record, "\t"))
		}
	}
	return 0, nil
}

// startsCleanly reports whether record, written with column lead first,
// forms a line the transcoder reads back as a row.
func startsCleanly(record []string, lead int) bool {
	if strings.HasPrefix(record[lead], `\`) {
		return false
	}
	for _, f := range record {
		if !blankRow(f) {
			return true
		}
	}
	return false
}

// columnOrder lists column indexes with lead moved to the front.
func columnOrder(n, lead int) []int {
	order := make([]int, 0, n)
	order = append(order, lead)
	for i := 0; i < n; i++ {
		if i != lead {
			order = append(order, i)
		}
	}
	return order
}

// Dump renders the given tables, or every table of the schema when none
// are given, in order.
func (e *Exporter) Dump(ctx context.Context, tables []string) (string, error) {
	if len(tables) == 0 {
		var err error
		tables, err = e.Tables(ctx)
		if err != nil {
			return "", err
		}
	}
	var sb strings.Builder
	for _, t := range tables {
		if err := e.DumpTable(ctx, &sb, t); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// quoteIdent quotes a PostgreSQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

var copyEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\t", `\t`,
	"\n", `\n`,
	"\r", `\r`,
)

// copyValue renders a scanned value in COPY text format.
func copyValue(v any) string {
	switch v := v.(type) {
	case nil:
		return `\N`
	case []byte:
		return copyEscaper.Replace(string(v))
	case string:
		return copyEscaper.Replace(v)
	case bool:
		if v {
			return "t"
		}
		return "f"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return copyEscaper.Replace(fmt.Sprint(v))
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
