package pgdump2mysql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersDump = "SET statement_timeout = 0;\n" +
	"COPY public.\"users\" (id, name) FROM stdin;\n" +
	"1\tAlice\n" +
	"2\tBob\n" +
	"\\.\n"

func TestTranscodeUsers(t *testing.T) {
	expected := "INSERT INTO users (id, name) VALUES ('1', 'Alice');\n" +
		"INSERT INTO users (id, name) VALUES ('2', 'Bob');\n"
	assert.Equal(t, expected, Transcode(usersDump))
}

func TestStripStatements(t *testing.T) {
	src := "SET client_encoding = 'UTF8';\n" +
		"SELECT pg_catalog.set_config('search_path', '', false);\n" +
		"CREATE TABLE x (id int);\n"

	stripped := StripStatements(src)
	assert.Equal(t, "\n\nCREATE TABLE x (id int);\n", stripped)
	assert.Equal(t, stripped, StripStatements(stripped), "stripping twice should change nothing")
}

func TestStripStatementsStopsAtFirstSemicolon(t *testing.T) {
	// The semicolon inside the literal ends the match.
	got := StripStatements("SET x = 'a;b';\n")
	assert.Equal(t, "b';\n", got)
}

func TestStripStatementsDoesNotCrossLines(t *testing.T) {
	src := "SET x = 1\nCREATE TABLE y;\n"
	assert.Equal(t, src, StripStatements(src))
}

func TestCleanColumns(t *testing.T) {
	cases := map[string]string{
		`"class 2615 OID 20444" "id", "name"`: "id, name",
		`id, name`:                            "id, name",
		`  "createdAt", "updatedAt"  `:        "createdAt, updatedAt",
		"class  1\tOID 2 id":                  "id",
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanColumns(in), "CleanColumns(%q)", in)
	}
}

func TestRowValues(t *testing.T) {
	assert.Equal(t, `'1', 'Alice', '30'`, RowValues("1\tAlice\t30"))
	assert.Equal(t, `'single'`, RowValues("single"))
	// No escaping of embedded quotes or NULL markers.
	assert.Equal(t, `'O'Brien', '\N'`, RowValues("O'Brien\t\\N"))
}

func TestRowCountPreservation(t *testing.T) {
	src := "COPY public.\"t\" (a) FROM stdin;\n" +
		"one\n\n   \ntwo\n\t\nthree\n" +
		"\\.\n"

	blocks := ExtractCopyBlocks(src)
	require.Len(t, blocks, 1)
	assert.Equal(t, []string{"one", "two", "three"}, blocks[0].Rows())

	out := Transcode(src)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "INSERT INTO t (a) VALUES ('one');", lines[0])
	assert.Equal(t, "INSERT INTO t (a) VALUES ('two');", lines[1])
	assert.Equal(t, "INSERT INTO t (a) VALUES ('three');", lines[2])
}

func TestRowsSkipSeparatorWhitespace(t *testing.T) {
	b := CopyBlock{Table: "t", Columns: "a", Data: "one\n\x1c\x1d\n \x1e\x1f\u00a0\n\u3000\ntwo\x1f"}
	assert.Equal(t, []string{"one", "two\x1f"}, b.Rows())

	assert.True(t, blankRow("\x1c\t\x1f "))
	assert.False(t, blankRow("\x1cx"))
	assert.False(t, blankRow("\x1b"))
}

func TestMultiBlockOrdering(t *testing.T) {
	src := "COPY public.\"a\" (x) FROM stdin;\n1\n\\.\n\n" +
		"COPY public.\"b\" (y) FROM stdin;\n1\n2\n3\n4\n\\.\n"

	blocks := ExtractCopyBlocks(src)
	require.Len(t, blocks, 2)
	assert.Equal(t, "a", blocks[0].Table)
	assert.Equal(t, "b", blocks[1].Table)

	expected := "INSERT INTO a (x) VALUES ('1');\n" +
		"INSERT INTO b (y) VALUES ('1');\n" +
		"INSERT INTO b (y) VALUES ('2');\n" +
		"INSERT INTO b (y) VALUES ('3');\n" +
		"INSERT INTO b (y) VALUES ('4');\n"
	assert.Equal(t, expected, Transcode(src))
}

func TestExtractCopyBlocksFields(t *testing.T) {
	src := "COPY public.\"Product\" (\"id\", \"name\") FROM stdin;\n7\tbolt\n\\.\n"
	blocks := ExtractCopyBlocks(src)
	require.Len(t, blocks, 1)
	assert.Equal(t, CopyBlock{Table: "Product", Columns: `"id", "name"`, Data: "7\tbolt"}, blocks[0])
}

func TestMalformedBlocksAreSkipped(t *testing.T) {
	cases := map[string]string{
		"unquoted table":  "COPY public.users (id) FROM stdin;\n1\n\\.\n",
		"other schema":    "COPY audit.\"users\" (id) FROM stdin;\n1\n\\.\n",
		"no terminator":   "COPY public.\"users\" (id) FROM stdin;\n1\n2\n",
		"no column list":  "COPY public.\"users\" FROM stdin;\n1\n\\.\n",
		"dashed name":     "COPY public.\"user-list\" (id) FROM stdin;\n1\n\\.\n",
		"plain statement": "CREATE TABLE users (id int);\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, ExtractCopyBlocks(src))
			assert.Empty(t, Transcode(src))
		})
	}
}

func TestMalformedBlockDoesNotAffectNeighbours(t *testing.T) {
	src := "COPY public.users (id) FROM stdin;\n9\n\\.\n" +
		"COPY public.\"ok\" (id) FROM stdin;\n1\n\\.\n"
	assert.Equal(t, "INSERT INTO ok (id) VALUES ('1');\n", Transcode(src))
}

func TestEmitInsertsCount(t *testing.T) {
	blocks := []CopyBlock{
		{Table: "a", Columns: "x", Data: "1\n\n2"},
		{Table: "b", Columns: `"y"`, Data: "\n"},
	}
	var sb strings.Builder
	n := EmitInserts(&sb, blocks)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, strings.Count(sb.String(), "INSERT INTO"))
}

func BenchmarkTranscode(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("COPY public.\"bench\" (id, name, note) FROM stdin;\n")
	for i := 0; i < 1000; i++ {
		sb.WriteString("1\tname\tsome longer note text\n")
	}
	sb.WriteString("\\.\n")
	src := sb.String()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Transcode(src)
	}
}
