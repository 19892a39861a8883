package diagram

// Shapes of the threat-modeling notation.
const (
	ShapeExternalInteractor = "square"
	ShapeProcess            = "circle"
	ShapeMultiProcess       = "doublecircle"
	ShapeDataStore          = "cylinder"
)

// shapeRewrites maps generic Graphviz shapes onto the notation. Keys are
// matched case-sensitively and no value is also a key, so the rewrite is
// idempotent.
var shapeRewrites = map[string]string{
	"ellipse": ShapeProcess,
	"box":     ShapeExternalInteractor,
}

// CanonicalizeShapes rewrites shape=ellipse to shape=circle and shape=box to
// shape=square in every attribute list of body. Labels and comments are left
// alone.
func CanonicalizeShapes(body string) string {
	doc := Parse(body)
	doc.CanonicalizeShapes()
	return doc.String()
}

// CanonicalizeShapes applies the shape rewrites in place and returns how many
// attributes changed.
func (d *Document) CanonicalizeShapes() int {
	changed := 0
	for i := range d.Statements {
		st := &d.Statements[i]
		for j := range st.Attrs {
			if st.Attrs[j].Key != "shape" {
				continue
			}
			if to, ok := shapeRewrites[st.Attrs[j].Value]; ok {
				st.setValue(j, to)
				changed++
			}
		}
	}
	return changed
}

// Normalize runs shape canonicalization followed by data-store
// reclassification over a single parse of body.
func Normalize(body string) string {
	doc := Parse(body)
	doc.CanonicalizeShapes()
	doc.ReclassifyDataStores()
	return doc.String()
}
