package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newlineOffsets(s string) []int {
	var offs []int
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			offs = append(offs, i)
		}
	}
	return offs
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "Full line comment",
			in:   "* SELECT * FROM t881.\nWRITE x.",
			want: "                     \nWRITE x.",
		},
		{
			name: "Star not in column one",
			in:   " * keep",
			want: " * keep",
		},
		{
			name: "Inline comment",
			in:   `DATA x TYPE i. " SELECT FROM t881` + "\nDATA y.",
			want: "DATA x TYPE i.                   \nDATA y.",
		},
		{
			name: "String interior blanked",
			in:   `lv = 'SELECT FROM T881'.`,
			want: `lv = '                '.`,
		},
		{
			name: "Escaped quote left untouched",
			in:   `lv = 'it''s'.`,
			want: `lv = '  '' '.`,
		},
		{
			name: "Comment marker inside string",
			in:   `lv = 'a"b'. " note`,
			want: `lv = '   '.       `,
		},
		{
			name: "String state resets per line",
			in:   "lv = 'open\nSELECT x.",
			want: "lv = '    \nSELECT x.",
		},
		{
			name: "CRLF terminators preserved",
			in:   "* c\r\nlv = 'x'.\r\n",
			want: "   \r\nlv = ' '.\r\n",
		},
		{
			name: "Lone CR ends a line",
			in:   "lv = 'open\rSELECT * FROM t881.\r* note",
			want: "lv = '    \rSELECT * FROM t881.\r      ",
		},
		{
			name: "Empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_PreservesShape(t *testing.T) {
	inputs := []string{
		"REPORT z.\n* comment line\nSELECT * FROM t881 INTO TABLE @lt. \" trailing\n",
		"lv = 'unterminated\n'' '''' 'x''\n\"only comment",
		"WRITE 'äöü'. \" ünïcödé\nSELECT SINGLE * FROM T882G INTO @ls.",
		"\n\n\n",
		"'''",
		"a\r'b\r\n* c\r",
	}

	for _, in := range inputs {
		out := Sanitize(in)
		assert.Equal(t, len(in), len(out))
		assert.Equal(t, newlineOffsets(in), newlineOffsets(out))
		assert.Equal(t, out, Sanitize(out), "sanitize must be idempotent")
	}
}

func TestSegment(t *testing.T) {
	src := Sanitize(strings.Join([]string{
		"SELECT *",
		"  FROM t881",
		"  INTO TABLE @lt_t881.",
		"OPEN CURSOR WITH HOLD @lv_c FOR SELECT * FROM t881t.",
		"UPDATE t882g SET x = 1.",
		"select single * from t881 into @ls",
	}, "\n"))

	queries := Segment(src, ReadQuery)
	require.Len(t, queries, 2)
	assert.Equal(t, 0, queries[0].Start)
	assert.Equal(t, "SELECT *\n  FROM t881\n  INTO TABLE @lt_t881.", queries[0].Text)
	assert.Equal(t, ReadQuery, queries[0].Class)
	// the SELECT inside the cursor statement is visited by the query pass as well
	assert.True(t, strings.HasPrefix(queries[1].Text, "SELECT * FROM t881t"))

	cursors := Segment(src, ReadCursor)
	require.Len(t, cursors, 1)
	assert.True(t, strings.HasPrefix(cursors[0].Text, "OPEN CURSOR"))

	writes := Segment(src, WriteDML)
	require.Len(t, writes, 1)
	assert.Equal(t, "UPDATE t882g SET x = 1.", writes[0].Text)
	assert.Equal(t, src[writes[0].Start:writes[0].End], writes[0].Text)
}

func TestSegment_UnterminatedStatement(t *testing.T) {
	assert.Empty(t, Segment("SELECT * FROM t881 INTO TABLE lt", ReadQuery))
	assert.Empty(t, Segment("", WriteDML))
	assert.Empty(t, Segment("SELECT x.", StatementClass(42)))
}

func TestSegment_KeywordBoundaries(t *testing.T) {
	src := "lv_selected = 1. zupdate_flag = 2. DELETEX t881."
	for _, class := range Classes {
		assert.Empty(t, Segment(src, class), class.String())
	}
}

func TestStatementClass_String(t *testing.T) {
	assert.Equal(t, "read-query", ReadQuery.String())
	assert.Equal(t, "read-cursor", ReadCursor.String())
	assert.Equal(t, "write-dml", WriteDML.String())
	assert.Equal(t, "unknown", StatementClass(-1).String())
}
