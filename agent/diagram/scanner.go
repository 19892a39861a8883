package diagram

import "strings"

type scanner struct {
	src string
	pos int
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) hasPrefix(p string) bool {
	return strings.HasPrefix(s.src[s.pos:], p)
}

func (s *scanner) skipSpace() {
	for !s.eof() {
		switch s.src[s.pos] {
		case ' ', '\t', '\r':
			s.pos++
		default:
			return
		}
	}
}

func isIDChar(c byte) bool {
	return c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}

// id reads a bare identifier or a double-quoted string. Quoted ids keep
// their quotes.
func (s *scanner) id() (string, bool) {
	start := s.pos
	if s.peek() == '"' {
		end, ok := s.closingQuote(start + 1)
		if !ok {
			return "", false
		}
		s.pos = end + 1
		return s.src[start:s.pos], true
	}
	for !s.eof() && isIDChar(s.src[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		return "", false
	}
	return s.src[start:s.pos], true
}

// closingQuote returns the index of the quote that ends a string whose body
// starts at from.
func (s *scanner) closingQuote(from int) (int, bool) {
	for i := from; i < len(s.src); i++ {
		switch s.src[i] {
		case '\\':
			i++
		case '"':
			return i, true
		}
	}
	return 0, false
}

func (s *scanner) skipPort() {
	for i := 0; i < 2 && s.peek() == ':'; i++ {
		s.pos++
		if _, ok := s.id(); !ok {
			return
		}
	}
}

// seekBracket moves to the next '[' outside quotes and comments. The position
// is left untouched when there is none.
func (s *scanner) seekBracket() bool {
	for i := s.pos; i < len(s.src); i++ {
		switch {
		case s.src[i] == '"':
			end, ok := s.closingQuote(i + 1)
			if !ok {
				return false
			}
			i = end
		case strings.HasPrefix(s.src[i:], "//"), strings.HasPrefix(s.src[i:], "/*"):
			return false
		case s.src[i] == '[':
			s.pos = i
			return true
		}
	}
	return false
}

// attrLists reads every bracketed attribute list left on the line. It
// returns nil when the first list is malformed. single reports one list
// followed by nothing but an optional terminator.
func (s *scanner) attrLists() (attrs []Attr, single bool) {
	lists := 0
	for s.seekBracket() {
		open := s.pos
		s.pos++
		items, ok := s.attrItems(true)
		if !ok {
			if lists == 0 {
				return nil, false
			}
			s.pos = open + 1
			return append(attrs, s.looseAttrs()...), false
		}
		attrs = append(attrs, items...)
		lists++
	}
	if lists == 0 {
		return nil, false
	}
	if attrs == nil {
		attrs = []Attr{}
	}
	rest := strings.Trim(s.src[s.pos:], " \t\r;")
	return attrs, lists == 1 && onlyComment(rest)
}

// onlyComment reports whether rest is empty or a single trailing comment.
func onlyComment(rest string) bool {
	switch {
	case rest == "", strings.HasPrefix(rest, "//"):
		return true
	case strings.HasPrefix(rest, "/*"):
		end := strings.Index(rest[2:], "*/")
		return end < 0 || strings.Trim(rest[2+end+2:], " \t\r;") == ""
	}
	return false
}

// looseAttrs collects key=value pairs anywhere on the rest of the line. Quoted
// strings are skipped and a comment ends the scan. It backs lines whose
// statement structure could not be read.
func (s *scanner) looseAttrs() []Attr {
	var attrs []Attr
	for !s.eof() {
		switch {
		case s.hasPrefix("//"), s.hasPrefix("/*"):
			return attrs
		case s.peek() == '"':
			end, ok := s.closingQuote(s.pos + 1)
			if !ok {
				return attrs
			}
			s.pos = end + 1
			continue
		case !isIDChar(s.peek()):
			s.pos++
			continue
		}

		key, _ := s.id()
		s.skipSpace()
		if s.peek() != '=' {
			continue
		}
		s.pos++
		s.skipSpace()

		attr, ok := s.value()
		if !ok {
			return attrs
		}
		attr.Key = key
		attrs = append(attrs, attr)
	}
	return attrs
}

// attrItems reads key=value pairs. Inside brackets the list must end with
// ']'; outside it ends with the line.
func (s *scanner) attrItems(inBracket bool) ([]Attr, bool) {
	var attrs []Attr
	for {
		for !s.eof() && strings.IndexByte(" \t\r,;", s.peek()) >= 0 {
			s.pos++
		}

		switch {
		case s.eof():
			return attrs, !inBracket
		case s.peek() == ']':
			s.pos++
			return attrs, true
		case s.hasPrefix("//"), s.hasPrefix("/*"):
			return attrs, !inBracket
		}

		key, ok := s.id()
		if !ok {
			return nil, false
		}
		s.skipSpace()
		if s.peek() != '=' {
			return nil, false
		}
		s.pos++
		s.skipSpace()

		attr, ok := s.value()
		if !ok {
			return nil, false
		}
		attr.Key = unquote(key)
		attrs = append(attrs, attr)
	}
}

func (s *scanner) value() (Attr, bool) {
	switch s.peek() {
	case '"':
		end, ok := s.closingQuote(s.pos + 1)
		if !ok {
			return Attr{}, false
		}
		a := Attr{Value: s.src[s.pos+1 : end], Quoted: true, start: s.pos + 1, end: end}
		s.pos = end + 1
		return a, true
	case '<':
		depth := 0
		for i := s.pos; i < len(s.src); i++ {
			switch s.src[i] {
			case '<':
				depth++
			case '>':
				depth--
				if depth == 0 {
					a := Attr{Value: s.src[s.pos : i+1], start: s.pos, end: i + 1}
					s.pos = i + 1
					return a, true
				}
			}
		}
		return Attr{}, false
	}

	start := s.pos
	for !s.eof() && strings.IndexByte(" \t\r,;]{}", s.peek()) < 0 {
		s.pos++
	}
	if s.pos == start {
		return Attr{}, false
	}
	return Attr{Value: s.src[start:s.pos], start: start, end: s.pos}, true
}
