package diagram

import (
	"strings"

	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
)

type StatementKind int

const (
	KindOther StatementKind = iota
	KindComment
	KindNode
	KindEdge
	// KindDefaults is a `node [...]`, `edge [...]` or `graph [...]` statement.
	KindDefaults
	// KindAssign is a bare `key=value` line, either a graph attribute or the
	// continuation of a multi-line attribute list.
	KindAssign
	KindBlockOpen
	KindBlockClose
)

func (k StatementKind) String() string {
	switch k {
	case KindComment:
		return "comment"
	case KindNode:
		return "node"
	case KindEdge:
		return "edge"
	case KindDefaults:
		return "defaults"
	case KindAssign:
		return "assign"
	case KindBlockOpen:
		return "block_open"
	case KindBlockClose:
		return "block_close"
	default:
		return "other"
	}
}

// Attr is one key=value pair. Value holds the unquoted text; start/end locate
// it inside the owning Statement.Raw.
type Attr struct {
	Key    string
	Value  string
	Quoted bool

	start int
	end   int
}

// Statement is one line of a graph body. Raw is always the exact line text;
// the remaining fields are a best-effort reading of it.
type Statement struct {
	Raw  string
	Kind StatementKind

	// ID is the node id (raw token, quotes kept) for nodes and edge sources,
	// the keyword for defaults, and the block name for block openers.
	ID      string
	Targets []string
	Attrs   []Attr

	indent string
	// single is true when the line holds exactly one statement with one
	// attribute list and nothing after it but an optional ';'.
	single bool
}

// Document is a graph body split into statements, one per line.
type Document struct {
	Statements []Statement
}

// Edge is a single hop of an edge statement.
type Edge struct {
	From string
	To   string
}

// Parse never fails; lines it cannot read are kept as KindOther.
func Parse(body string) *Document {
	lines := strings.Split(body, "\n")
	doc := &Document{Statements: make([]Statement, 0, len(lines))}

	inBlockComment := false
	for _, line := range lines {
		if inBlockComment {
			doc.Statements = append(doc.Statements, Statement{Raw: line, Kind: KindComment})
			if strings.Contains(line, "*/") {
				inBlockComment = false
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "/*") {
			doc.Statements = append(doc.Statements, Statement{Raw: line, Kind: KindComment})
			inBlockComment = !strings.Contains(trimmed[2:], "*/")
			continue
		}

		doc.Statements = append(doc.Statements, parseLine(line))
	}
	return doc
}

func (d *Document) String() string {
	lines := make([]string, len(d.Statements))
	for i, st := range d.Statements {
		lines[i] = st.Raw
	}
	return strings.Join(lines, "\n")
}

// Nodes lists node declarations that carry a quoted label.
func (d *Document) Nodes() []contractx.NodeDeclaration {
	var out []contractx.NodeDeclaration
	for _, st := range d.Statements {
		if decl, ok := st.NodeDeclaration(); ok {
			out = append(out, decl)
		}
	}
	return out
}

func (d *Document) Edges() []Edge {
	var out []Edge
	for _, st := range d.Statements {
		if st.Kind != KindEdge {
			continue
		}
		from := st.ID
		for _, to := range st.Targets {
			out = append(out, Edge{From: from, To: to})
			from = to
		}
	}
	return out
}

// Clusters lists subgraph names starting with "cluster", which Graphviz
// draws as boxed trust boundaries.
func (d *Document) Clusters() []string {
	var out []string
	for _, st := range d.Statements {
		if st.Kind == KindBlockOpen && strings.HasPrefix(unquote(st.ID), "cluster") {
			out = append(out, st.ID)
		}
	}
	return out
}

// NodeDeclaration reports the id and first quoted label of a node statement.
func (s Statement) NodeDeclaration() (contractx.NodeDeclaration, bool) {
	if s.Kind != KindNode {
		return contractx.NodeDeclaration{}, false
	}
	for _, a := range s.Attrs {
		if a.Key == "label" && a.Quoted {
			return contractx.NodeDeclaration{ID: s.ID, Label: a.Value}, true
		}
	}
	return contractx.NodeDeclaration{}, false
}

// Attr returns the first attribute named key.
func (s Statement) Attr(key string) (Attr, bool) {
	for _, a := range s.Attrs {
		if a.Key == key {
			return a, true
		}
	}
	return Attr{}, false
}

// setValue replaces the value of attribute i in Raw and shifts the spans of
// the attributes that follow it.
func (s *Statement) setValue(i int, value string) {
	a := s.Attrs[i]
	delta := len(value) - (a.end - a.start)
	s.Raw = s.Raw[:a.start] + value + s.Raw[a.end:]

	s.Attrs[i].Value = value
	s.Attrs[i].end = a.start + len(value)
	for j := range s.Attrs {
		if j != i && s.Attrs[j].start > a.start {
			s.Attrs[j].start += delta
			s.Attrs[j].end += delta
		}
	}
}

var keywords = map[string]bool{
	"node":     true,
	"edge":     true,
	"graph":    true,
	"digraph":  true,
	"subgraph": true,
	"strict":   true,
}

func parseLine(line string) Statement {
	st := Statement{Raw: line}
	trimmed := strings.TrimSpace(line)
	st.indent = line[:len(line)-len(strings.TrimLeft(line, " \t"))]

	switch {
	case trimmed == "":
		return st
	case strings.HasPrefix(trimmed, "//"), strings.HasPrefix(trimmed, "#"):
		st.Kind = KindComment
		return st
	case strings.HasPrefix(trimmed, "}"):
		st.Kind = KindBlockClose
		return st.loose(len(st.indent) + 1)
	case strings.HasPrefix(trimmed, "{"):
		st.Kind = KindBlockOpen
		return st.loose(len(st.indent) + 1)
	}

	sc := &scanner{src: line, pos: len(st.indent)}
	head, ok := sc.id()
	if !ok {
		return st.loose(len(st.indent))
	}
	st.ID = head
	sc.skipSpace()

	if kw := strings.ToLower(head); keywords[kw] {
		if (kw == "node" || kw == "edge" || kw == "graph") && sc.peek() == '[' {
			st.Kind = KindDefaults
			if st.Attrs, st.single = sc.attrLists(); st.Attrs == nil {
				return st.loose(len(st.indent))
			}
			return st
		}
		st.Kind = KindBlockOpen
		st.ID = ""
		if kw == "strict" {
			sc.id()
			sc.skipSpace()
		}
		if name, ok := sc.id(); ok {
			st.ID = name
		}
		st.Attrs = sc.looseAttrs()
		return st
	}

	sc.skipPort()
	sc.skipSpace()

	switch {
	case sc.hasPrefix("->"), sc.hasPrefix("--"):
		st.Kind = KindEdge
		for sc.hasPrefix("->") || sc.hasPrefix("--") {
			sc.pos += 2
			sc.skipSpace()
			to, ok := sc.id()
			if !ok {
				break
			}
			st.Targets = append(st.Targets, to)
			sc.skipPort()
			sc.skipSpace()
		}
		from := sc.pos
		if st.Attrs, _ = sc.attrLists(); st.Attrs == nil {
			sc.pos = from
			st.Attrs = sc.looseAttrs()
		}
	case sc.peek() == '[':
		attrs, single := sc.attrLists()
		if attrs == nil {
			// unterminated or malformed attribute list
			return Statement{Raw: line, indent: st.indent}.loose(len(st.indent))
		}
		st.Kind = KindNode
		st.Attrs = attrs
		st.single = single
	case sc.peek() == '=':
		sc.pos = len(st.indent)
		attrs, ok := sc.attrItems(false)
		if !ok {
			return Statement{Raw: line, indent: st.indent}.loose(len(st.indent))
		}
		st.Kind = KindAssign
		st.ID = ""
		st.Attrs = attrs
	case sc.eof(), sc.peek() == ';':
		st.Kind = KindNode
		if !onlyComment(strings.Trim(line[sc.pos:], " \t\r;")) {
			// more statements follow the bare id
			st.Kind = KindOther
			st.Attrs = sc.looseAttrs()
		}
	default:
		if strings.HasSuffix(trimmed, "{") {
			st.Kind = KindBlockOpen
		}
		st.Attrs = sc.looseAttrs()
	}
	return st
}

// loose fills Attrs from every key=value pair found on Raw from pos on.
func (s Statement) loose(pos int) Statement {
	sc := &scanner{src: s.Raw, pos: pos}
	s.Attrs = sc.looseAttrs()
	return s
}

func unquote(id string) string {
	if len(id) >= 2 && id[0] == '"' && id[len(id)-1] == '"' {
		return id[1 : len(id)-1]
	}
	return id
}
