package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(class StatementClass, text string) Span {
	return Span{Class: class, Start: 0, End: len(text), Text: text}
}

func TestParseTable(t *testing.T) {
	tests := []struct {
		in   string
		want Table
		ok   bool
	}{
		{"T881", T881, true},
		{"t881T", T881T, true},
		{"T882g", T882G, true},
		{"t882", "", false},
		{"mara", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseTable(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	assert.Equal(t, "T881T", T881T.Upper())
}

func TestMatchTables(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []TableMatch
	}{
		{
			name: "Plain FROM",
			text: "SELECT * FROM t881 INTO TABLE lt.",
			want: []TableMatch{{Table: T881, Offset: 14}},
		},
		{
			name: "Case insensitive",
			text: "select * from T881T into table lt.",
			want: []TableMatch{{Table: T881T, Offset: 14}},
		},
		{
			name: "Host marker and parentheses",
			text: "SELECT * FROM @( t882g ) INTO TABLE @lt.",
			want: []TableMatch{{Table: T882G, Offset: 17}},
		},
		{
			name: "Join keeps order and duplicates",
			text: "SELECT * FROM t881 AS a JOIN t881t AS b ON a~rldnr = b~rldnr JOIN t881 AS c ON c~rldnr = a~rldnr INTO TABLE @lt.",
			want: []TableMatch{
				{Table: T881, Offset: 14},
				{Table: T881T, Offset: 29},
				{Table: T881, Offset: 66},
			},
		},
		{
			name: "Longer identifier is not a prefix match",
			text: "SELECT * FROM t881x INTO TABLE lt.",
			want: nil,
		},
		{
			name: "Five character name never yields the four character one",
			text: "SELECT * FROM T881T.",
			want: []TableMatch{{Table: T881T, Offset: 14}},
		},
		{
			name: "Other tables ignored",
			text: "SELECT * FROM bkpf INNER JOIN bseg ON bkpf~belnr = bseg~belnr INTO TABLE lt.",
			want: nil,
		},
		{
			name: "Table outside FROM or JOIN",
			text: "SELECT t881 FROM zt INTO TABLE lt.",
			want: nil,
		},
		{
			name: "Newline between FROM and table",
			text: "SELECT *\n  FROM\n    t881\n  INTO TABLE lt.",
			want: []TableMatch{{Table: T881, Offset: 20}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchTables(span(ReadQuery, tt.text))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchTables_IgnoresWriteSpans(t *testing.T) {
	assert.Nil(t, MatchTables(span(WriteDML, "DELETE FROM t881.")))
}

func TestMatchWrite(t *testing.T) {
	tests := []struct {
		name string
		text string
		want WriteMatch
	}{
		{
			name: "Delete with FROM",
			text: "DELETE FROM t882g WHERE bukrs = lv_bukrs.",
			want: WriteMatch{Kind: DeleteWrite, TableMatch: TableMatch{Table: T882G, Offset: 12}},
		},
		{
			name: "Delete without FROM",
			text: "delete T881 from ls_t881.",
			want: WriteMatch{Kind: DeleteWrite, TableMatch: TableMatch{Table: T881, Offset: 7}},
		},
		{
			name: "Insert",
			text: "INSERT t881t FROM ls_t881t.",
			want: WriteMatch{Kind: UpsertWrite, TableMatch: TableMatch{Table: T881T, Offset: 7}},
		},
		{
			name: "Update with host marker",
			text: "UPDATE @t881 SET text = lv.",
			want: WriteMatch{Kind: UpsertWrite, TableMatch: TableMatch{Table: T881, Offset: 8}},
		},
		{
			name: "Modify in parentheses",
			text: "MODIFY ( t882g ) FROM TABLE lt.",
			want: WriteMatch{Kind: UpsertWrite, TableMatch: TableMatch{Table: T882G, Offset: 9}},
		},
		{
			name: "Other table",
			text: "UPDATE zt881 SET x = 1.",
			want: WriteMatch{},
		},
		{
			name: "Target table later in the statement",
			text: "MODIFY zcopy FROM TABLE t881.",
			want: WriteMatch{},
		},
		{
			name: "Prefix of longer identifier",
			text: "DELETE FROM t881_backup.",
			want: WriteMatch{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchWrite(span(WriteDML, tt.text))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Kind != NoWrite, got.Matched())
		})
	}
}

func TestMatch(t *testing.T) {
	got := Match(span(WriteDML, "DELETE t881t."))
	require.Len(t, got, 1)
	assert.Equal(t, T881T, got[0].Table)

	assert.Nil(t, Match(span(WriteDML, "DELETE ADJACENT DUPLICATES FROM lt.")))
	assert.Len(t, Match(span(ReadCursor, "OPEN CURSOR c FOR SELECT * FROM t881 JOIN t882g ON x = y.")), 2)
	assert.Equal(t, NoWrite, MatchWrite(span(ReadQuery, "DELETE t881.")).Kind)
}
