package parser

const (
	fullLineComment = '*'
	inlineComment   = '"'
	quote           = '\''
)

// Sanitize blanks comments and the interior of string literals so that
// statement and table patterns only see code. The result has exactly the
// same length and the same newline offsets as src; bytes are only ever
// substituted with spaces.
//
// Each physical line starts outside of a string literal; lines end at LF,
// CRLF or a lone CR. A doubled quote
// inside a literal is consumed as a pair and left as is.
func Sanitize(src string) string {
	buf := []byte(src)

	start := 0
	for start < len(buf) {
		end := start
		for end < len(buf) && buf[end] != '\n' && buf[end] != '\r' {
			end++
		}
		sanitizeLine(buf[start:end])
		// LF, CRLF and a lone CR all end a line and are kept.
		if end+1 < len(buf) && buf[end] == '\r' && buf[end+1] == '\n' {
			end++
		}
		start = end + 1
	}

	return string(buf)
}

func sanitizeLine(line []byte) {
	if len(line) == 0 {
		return
	}
	if line[0] == fullLineComment {
		blank(line)
		return
	}

	inString := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == quote:
			if inString && i+1 < len(line) && line[i+1] == quote {
				i++
				continue
			}
			inString = !inString
		case ch == inlineComment && !inString:
			blank(line[i:])
			return
		case inString:
			line[i] = ' '
		}
	}
}

func blank(b []byte) {
	for i := range b {
		b[i] = ' '
	}
}
