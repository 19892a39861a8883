package diagram

import (
	"strings"
	"testing"
)

const sampleBody = `digraph DFD {
  rankdir=LR;
  node [shape=box, style=filled];
  // legacy shape=ellipse comment
  subgraph cluster_iot {
    label="IoT Device Zone";
    style=dashed;
    color=red;
    n1 [label="Mobile Application", shape=box];
  }
  n2 [label="IoT Gateway", shape=ellipse];
  n3 [label="Azure Storage", shape=ellipse, color=blue];
  n1 -> n2 [label="sensor data"];
  n2 -> n3 -> n4 [label="data"];
}`

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		sampleBody,
		"",
		"\n\n",
		"a -> b\r\nc [label=\"x\"]\r\n",
		"n1 [label=\"unterminated",
		"/* block\n  n1 [shape=box]\n*/\nn2 [shape=box]",
	}
	for _, in := range inputs {
		if got := Parse(in).String(); got != in {
			t.Fatalf("Parse(%q).String() = %q", in, got)
		}
	}
}

func TestParseKinds(t *testing.T) {
	t.Parallel()

	doc := Parse(sampleBody)
	want := []StatementKind{
		KindBlockOpen,
		KindAssign,
		KindDefaults,
		KindComment,
		KindBlockOpen,
		KindAssign,
		KindAssign,
		KindAssign,
		KindNode,
		KindBlockClose,
		KindNode,
		KindNode,
		KindEdge,
		KindEdge,
		KindBlockClose,
	}
	if len(doc.Statements) != len(want) {
		t.Fatalf("statements = %d, want %d", len(doc.Statements), len(want))
	}
	for i, st := range doc.Statements {
		if st.Kind != want[i] {
			t.Fatalf("statement %d (%q) kind = %s, want %s", i, st.Raw, st.Kind, want[i])
		}
	}
}

func TestDocumentModel(t *testing.T) {
	t.Parallel()

	doc := Parse(sampleBody)

	nodes := doc.Nodes()
	if len(nodes) != 3 {
		t.Fatalf("nodes = %#v", nodes)
	}
	if nodes[2].ID != "n3" || nodes[2].Label != "Azure Storage" {
		t.Fatalf("unexpected third node: %#v", nodes[2])
	}

	edges := doc.Edges()
	wantEdges := []Edge{{"n1", "n2"}, {"n2", "n3"}, {"n3", "n4"}}
	if len(edges) != len(wantEdges) {
		t.Fatalf("edges = %#v", edges)
	}
	for i := range wantEdges {
		if edges[i] != wantEdges[i] {
			t.Fatalf("edge %d = %#v, want %#v", i, edges[i], wantEdges[i])
		}
	}

	clusters := doc.Clusters()
	if len(clusters) != 1 || clusters[0] != "cluster_iot" {
		t.Fatalf("clusters = %#v", clusters)
	}
}

func TestParseQuotedIdentifiersAndPorts(t *testing.T) {
	t.Parallel()

	doc := Parse(`"web app" [label="Web \"App\"", shape=ellipse];` + "\n" + `"web app":out -> db:in:n;`)

	decl, ok := doc.Statements[0].NodeDeclaration()
	if !ok {
		t.Fatal("expected node declaration")
	}
	if decl.ID != `"web app"` || decl.Label != `Web \"App\"` {
		t.Fatalf("unexpected declaration: %#v", decl)
	}

	edges := doc.Edges()
	if len(edges) != 1 || edges[0].From != `"web app"` || edges[0].To != "db" {
		t.Fatalf("edges = %#v", edges)
	}
}

func TestParseBlockHeaderAttrs(t *testing.T) {
	t.Parallel()

	doc := Parse(`strict digraph G { a [label="x", shape=box]; rankdir=LR }`)
	st := doc.Statements[0]
	if st.Kind != KindBlockOpen || st.ID != "G" {
		t.Fatalf("statement = %s %q, want block_open G", st.Kind, st.ID)
	}
	shape, ok := st.Attr("shape")
	if !ok || shape.Value != "box" {
		t.Fatalf("shape attr = %#v, %v", shape, ok)
	}
	if rankdir, ok := st.Attr("rankdir"); !ok || rankdir.Value != "LR" {
		t.Fatalf("rankdir attr = %#v, %v", rankdir, ok)
	}
	if len(doc.Nodes()) != 0 {
		t.Fatalf("block header reported as node: %#v", doc.Nodes())
	}
}

func TestParseIsTotal(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"[[[",
		"]]]",
		`a [label=<b>bold</b>>, shape=box]`,
		`a [label=<<b>bold</b>>, shape=box]`,
		"-> -> ->",
		"a -> ",
		"a [=]",
		`a [label="x" shape]`,
		"subgraph",
		"\"",
		"a:",
		"=",
		"日本 [label=\"ファイル\"]",
	}
	for _, in := range inputs {
		doc := Parse(in)
		doc.CanonicalizeShapes()
		doc.ReclassifyDataStores()
		_ = doc.Nodes()
		_ = doc.Edges()
	}
}

func TestHTMLLabelIsNotRewritten(t *testing.T) {
	t.Parallel()

	in := `a [label=<<b>shape=box</b>>, shape=box]`
	got := CanonicalizeShapes(in)
	want := `a [label=<<b>shape=box</b>>, shape=square]`
	if got != want {
		t.Fatalf("CanonicalizeShapes() = %q, want %q", got, want)
	}
	if strings.Count(got, "shape=box") != 1 {
		t.Fatalf("label text should be untouched: %q", got)
	}
}
