package pgdump2mysql

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	setStatementRe    = regexp.MustCompile(`SET .*?;`)
	selectStatementRe = regexp.MustCompile(`SELECT .*?;`)

	// The data region is matched across lines and stops at the first
	// newline followed by the end-of-data marker.
	copyBlockRe = regexp.MustCompile(`(?s)COPY public."([\p{L}\p{N}_]+)" \((.*?)\) FROM stdin;\n(.*?)\n\\.`)

	// pg_dump sometimes leaves object identifiers inside the column list.
	oidArtifactRe = regexp.MustCompile(`class\s+\d+\s+OID\s+\d+`)
)

// CopyBlock is one COPY statement found in a dump.
type CopyBlock struct {
	// Table is the unquoted table name.
	Table string

	// Columns is the raw column list between the parentheses.
	Columns string

	// Data holds the newline-separated, tab-delimited rows.
	Data string
}

// StripStatements removes every `SET ...;` and `SELECT ...;` statement.
// A semicolon inside a quoted literal ends the match early.
func StripStatements(src string) string {
	src = setStatementRe.ReplaceAllString(src, "")
	return selectStatementRe.ReplaceAllString(src, "")
}

// ExtractCopyBlocks returns every COPY block in src, in source order.
// Regions that do not have the expected shape are ignored.
func ExtractCopyBlocks(src string) []CopyBlock {
	matches := copyBlockRe.FindAllStringSubmatch(src, -1)
	blocks := make([]CopyBlock, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, CopyBlock{
			Table:   m[1],
			Columns: m[2],
			Data:    m[3],
		})
	}
	return blocks
}

// CleanColumns turns a raw COPY column list into one usable in an INSERT.
func CleanColumns(spec string) string {
	spec = strings.TrimSpace(oidArtifactRe.ReplaceAllString(spec, ""))
	return strings.TrimSpace(strings.ReplaceAll(spec, `"`, ""))
}

// RowValues converts one tab-delimited row into an INSERT values payload.
// Values are not escaped.
func RowValues(row string) string {
	return "'" + strings.ReplaceAll(row, "\t", "', '") + "'"
}

// Rows splits a block's data into the rows that produce statements.
func (b CopyBlock) Rows() []string {
	var rows []string
	for _, row := range strings.Split(b.Data, "\n") {
		if blankRow(row) {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// blankRow reports whether row holds nothing but whitespace. The
// information separators U+001C to U+001F count as whitespace too.
func blankRow(row string) bool {
	return strings.TrimFunc(row, func(r rune) bool {
		return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
	}) == ""
}

// EmitInserts writes one INSERT statement per non-empty row to sb and
// returns the number of statements written.
func EmitInserts(sb *strings.Builder, blocks []CopyBlock) int {
	n := 0
	for _, b := range blocks {
		columns := CleanColumns(b.Columns)
		for _, row := range b.Rows() {
			fmt.Fprintf(sb, "INSERT INTO %s (%s) VALUES (%s);\n", b.Table, columns, RowValues(row))
			n++
		}
	}
	return n
}

// Transcode converts the COPY blocks of a PostgreSQL dump into MySQL
// INSERT statements.
func Transcode(src string) string {
	var sb strings.Builder
	EmitInserts(&sb, ExtractCopyBlocks(StripStatements(src)))
	return sb.String()
}
