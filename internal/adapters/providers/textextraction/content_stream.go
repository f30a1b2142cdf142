package textextraction

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
)

// kerning offsets below this (in thousandths of an em) are treated as a word gap.
const tjSpaceThreshold = -200

// DecodeContentStream extracts the text shown by a PDF page content stream.
// It understands the text-showing operators (Tj, TJ, ' and ") and emits line
// breaks for line-moving operators. String operands are read as WinAnsi unless
// they carry a UTF-16BE byte order mark. Font encodings are not resolved, so
// text in Type0/CID fonts is not recovered. The result is always valid UTF-8.
func DecodeContentStream(stream []byte) string {
	var (
		out     strings.Builder
		operand []string
		array   []string
		inArray bool
		lx      = &lexer{src: stream}
	)

	newline := func() {
		s := out.String()
		if len(s) > 0 && !strings.HasSuffix(s, "\n") {
			out.WriteByte('\n')
		}
	}

	for {
		tok, kind := lx.next()
		if kind == tokEOF {
			break
		}

		switch kind {
		case tokString:
			tok = decodeString(tok)
			if inArray {
				array = append(array, tok)
			} else {
				operand = append(operand, tok)
			}
		case tokNumber:
			if inArray {
				if n, err := strconv.ParseFloat(tok, 64); err == nil && n < tjSpaceThreshold {
					array = append(array, " ")
				}
			}
		case tokArrayStart:
			inArray, array = true, array[:0]
		case tokArrayEnd:
			inArray = false
		case tokOperator:
			switch tok {
			case "Tj":
				writeLast(&out, operand)
			case "'", "\"":
				newline()
				writeLast(&out, operand)
			case "TJ":
				for _, s := range array {
					out.WriteString(s)
				}
				array = array[:0]
			case "T*", "Td", "TD", "Tm", "ET":
				newline()
			}
			operand = operand[:0]
		}
	}

	return strings.ToValidUTF8(out.String(), "")
}

// decodeString turns a PDF string operand into UTF-8 text. Control
// characters other than whitespace are dropped.
func decodeString(raw string) string {
	var (
		text string
		err  error
	)
	if strings.HasPrefix(raw, "\xfe\xff") {
		text, err = xunicode.UTF16(xunicode.BigEndian, xunicode.ExpectBOM).NewDecoder().String(raw)
	} else {
		text, err = charmap.Windows1252.NewDecoder().String(raw)
	}
	if err != nil {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, text)
}

func writeLast(out *strings.Builder, operands []string) {
	if len(operands) > 0 {
		out.WriteString(operands[len(operands)-1])
	}
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokString
	tokNumber
	tokArrayStart
	tokArrayEnd
	tokOperator
	tokOther
)

type lexer struct {
	src []byte
	pos int
}

func (l *lexer) next() (string, tokenKind) {
	l.skipSpaceAndComments()
	if l.pos >= len(l.src) {
		return "", tokEOF
	}

	c := l.src[l.pos]
	switch {
	case c == '(':
		return l.literalString(), tokString
	case c == '<' && l.peek(1) == '<':
		l.pos += 2
		return "<<", tokOther
	case c == '>' && l.peek(1) == '>':
		l.pos += 2
		return ">>", tokOther
	case c == '<':
		return l.hexString(), tokString
	case c == '[':
		l.pos++
		return "[", tokArrayStart
	case c == ']':
		l.pos++
		return "]", tokArrayEnd
	case c == '/':
		l.pos++
		return l.word(), tokOther
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return l.word(), tokNumber
	case c == '\'' || c == '"':
		l.pos++
		return string(c), tokOperator
	case c == '{' || c == '}' || c == ')' || c == '>':
		l.pos++
		return string(c), tokOther
	}
	return l.word(), tokOperator
}

func (l *lexer) peek(offset int) byte {
	if l.pos+offset < len(l.src) {
		return l.src[l.pos+offset]
	}
	return 0
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '%' {
			for l.pos < len(l.src) && l.src[l.pos] != '\n' && l.src[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		if !isSpace(c) {
			return
		}
		l.pos++
	}
}

func (l *lexer) word() string {
	start := l.pos
	for l.pos < len(l.src) && !isSpace(l.src[l.pos]) && !isDelimiter(l.src[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		l.pos++
	}
	return string(l.src[start:l.pos])
}

func (l *lexer) literalString() string {
	var b strings.Builder
	l.pos++ // (
	depth := 1
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		l.pos++
		switch c {
		case '\\':
			if l.pos >= len(l.src) {
				return b.String()
			}
			e := l.src[l.pos]
			l.pos++
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b', 'f':
			case '\r', '\n':
				// line continuation
			case '0', '1', '2', '3', '4', '5', '6', '7':
				v := int(e - '0')
				for i := 0; i < 2 && l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '7'; i++ {
					v = v*8 + int(l.src[l.pos]-'0')
					l.pos++
				}
				b.WriteByte(byte(v))
			default:
				b.WriteByte(e)
			}
		case '(':
			depth++
			b.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				return b.String()
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (l *lexer) hexString() string {
	l.pos++ // <
	var digits []byte
	for l.pos < len(l.src) && l.src[l.pos] != '>' {
		if c := l.src[l.pos]; isHex(c) {
			digits = append(digits, c)
		}
		l.pos++
	}
	l.pos++ // >
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	out := make([]byte, 0, len(digits)/2)
	for i := 0; i < len(digits); i += 2 {
		v, _ := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		out = append(out, byte(v))
	}
	return string(out)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
