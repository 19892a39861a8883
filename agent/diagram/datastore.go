package diagram

import (
	"fmt"
	"strings"
)

// dataStoreLabels holds the lower-cased labels always drawn as a cylinder.
var dataStoreLabels = map[string]struct{}{
	"azure storage": {},
	"audit log":     {},
	"sql database":  {},
	"file system":   {},
	"cloud storage": {},
}

// IsDataStoreLabel matches label against the data-store keywords, ignoring
// case and surrounding whitespace.
func IsDataStoreLabel(label string) bool {
	_, ok := dataStoreLabels[strings.ToLower(strings.TrimSpace(label))]
	return ok
}

// ReclassifyDataStores replaces every node line labelled with a data-store
// keyword by `id [label="<label>", shape=cylinder];`. Any other attributes on
// the line are dropped. All other lines pass through unchanged.
func ReclassifyDataStores(body string) string {
	doc := Parse(body)
	doc.ReclassifyDataStores()
	return doc.String()
}

// ReclassifyDataStores rewrites matching statements in place and returns how
// many lines were replaced.
func (d *Document) ReclassifyDataStores() int {
	changed := 0
	for i := range d.Statements {
		st := d.Statements[i]
		if !st.single {
			continue
		}
		decl, ok := st.NodeDeclaration()
		if !ok || !IsDataStoreLabel(decl.Label) {
			continue
		}

		line := st.indent + dataStoreDeclaration(decl.ID, strings.TrimSpace(decl.Label))
		if line != st.Raw {
			changed++
		}
		d.Statements[i] = parseLine(line)
	}
	return changed
}

func dataStoreDeclaration(id, label string) string {
	return fmt.Sprintf(`%s [label="%s", shape=%s];`, id, label, ShapeDataStore)
}
