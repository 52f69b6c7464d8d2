package parser

import "strings"

// line is one schema statement with the 1-based source line it starts on.
type line struct {
	num  int
	text string
}

// splitStatements turns schema source into trimmed, comment-free
// statements. A physical line is cut after every '{' and ';' and around
// every '}' outside string literals and brackets, so
// "message A { string a = 1; }" yields the same statements as its
// multi-line spelling. A lone "{" is folded into the header before it.
// An aggregate option value ("= { ... }") stays inside its statement and
// may span lines; the statement keeps the line it started on.
func splitStatements(src string) []line {
	var sp splitter
	inBlock := false
	src = strings.ReplaceAll(src, "\r\n", "\n")
	for i, raw := range strings.Split(src, "\n") {
		var text string
		text, inBlock = stripComments(raw, inBlock)
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		sp.feed(i+1, text)
	}
	sp.emit()
	return sp.out
}

// splitter carries an unfinished statement from one physical line to the
// next while an aggregate value is open or a line ends on '='.
type splitter struct {
	out   []line
	cur   strings.Builder
	start int
	// agg is the '{' depth of the aggregate value being read.
	agg int
}

func (sp *splitter) write(num int, c byte) {
	if sp.cur.Len() == 0 {
		sp.start = num
	}
	sp.cur.WriteByte(c)
}

func (sp *splitter) emit() {
	t := strings.TrimSpace(sp.cur.String())
	sp.cur.Reset()
	sp.agg = 0
	if t == "" {
		return
	}
	if t == "{" && len(sp.out) > 0 && !terminated(sp.out[len(sp.out)-1].text) {
		sp.out[len(sp.out)-1].text += " {"
		return
	}
	sp.out = append(sp.out, line{num: sp.start, text: t})
}

func (sp *splitter) pending() string {
	return strings.TrimSpace(sp.cur.String())
}

func (sp *splitter) feed(num int, s string) {
	if sp.cur.Len() > 0 {
		sp.cur.WriteByte(' ')
	}
	var quote byte
	bracket := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			sp.write(num, c)
			if c == '\\' && i+1 < len(s) {
				i++
				sp.write(num, s[i])
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch {
		case c == '"' || c == '\'':
			quote = c
			sp.write(num, c)
		case c == '[':
			bracket++
			sp.write(num, c)
		case c == ']':
			if bracket > 0 {
				bracket--
			}
			sp.write(num, c)
		case c == '{' && (sp.agg > 0 || strings.HasSuffix(sp.pending(), "=")):
			sp.agg++
			sp.write(num, c)
		case c == '}' && sp.agg > 0:
			sp.agg--
			sp.write(num, c)
		case sp.agg > 0 || bracket > 0:
			sp.write(num, c)
		case c == '{' || c == ';':
			sp.write(num, c)
			sp.emit()
		case c == '}':
			sp.emit()
			sp.out = append(sp.out, line{num: num, text: "}"})
			// "};" closes the same block.
			for i+1 < len(s) && (s[i+1] == ' ' || s[i+1] == '\t') {
				i++
			}
			if i+1 < len(s) && s[i+1] == ';' {
				i++
			}
		default:
			sp.write(num, c)
		}
	}
	if sp.agg == 0 && !strings.HasSuffix(sp.pending(), "=") {
		sp.emit()
	}
}

func terminated(s string) bool {
	return strings.HasSuffix(s, "{") || strings.HasSuffix(s, ";") || s == "}"
}

// stripComments removes // and /* */ comments outside string literals.
// inBlock reports whether a block comment is still open at end of line.
func stripComments(s string, inBlock bool) (string, bool) {
	var b strings.Builder
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inBlock {
			if c == '*' && i+1 < len(s) && s[i+1] == '/' {
				inBlock = false
				i++
			}
			continue
		}
		if quote != 0 {
			b.WriteByte(c)
			if c == '\\' && i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch {
		case c == '"' || c == '\'':
			quote = c
			b.WriteByte(c)
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			return b.String(), false
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			inBlock = true
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), inBlock
}
