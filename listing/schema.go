package listing

import (
	"strings"

	"github.com/datapages/irw-go/frame"
)

// Raw column identifiers as published by the warehouse metadata tables.
// The aggregation boundary is the only place these appear; everything
// downstream sees the public field names on warehouse.TableInfo.
const (
	rawTableCol = "table"

	rawChildAge = "child_age__for_child_focused_studies_"
	rawLanguage = "primary_language_s_"
	rawDataset  = "dataset"

	rawReference = "Reference_x"
	rawDOI       = "DOI__for_paper_"
	rawURL       = "URL__for_data_"
	rawLicense   = "Derived_License"
	rawBibTex    = "BibTex"
)

// metaIndex maps lowercased table names to row numbers of a metadata frame.
type metaIndex struct {
	f    *frame.Frame
	rows map[string]int
}

func indexMetaFrame(f *frame.Frame) *metaIndex {
	if f == nil || !f.HasColumn(rawTableCol) {
		return nil
	}
	idx := &metaIndex{f: f, rows: make(map[string]int, f.NumRows())}
	col := f.Column(rawTableCol)
	for r, v := range col {
		name, ok := v.Text()
		if !ok || name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, seen := idx.rows[key]; !seen {
			idx.rows[key] = r
		}
	}
	return idx
}

// row returns the metadata row for a base table name, matched
// case-insensitively.
func (m *metaIndex) row(name string) (int, bool) {
	if m == nil {
		return 0, false
	}
	r, ok := m.rows[strings.ToLower(name)]
	return r, ok
}

func (m *metaIndex) floatAt(name, col string) *float64 {
	r, ok := m.row(name)
	if !ok {
		return nil
	}
	v, failed := frame.CoerceNumber(m.f.Value(r, col))
	if failed || v.IsNull() {
		return nil
	}
	n, _ := v.Number()
	return &n
}

func (m *metaIndex) stringAt(name, col string) *string {
	r, ok := m.row(name)
	if !ok {
		return nil
	}
	v := m.f.Value(r, col)
	s, ok := v.Text()
	if !ok {
		if v.IsNull() {
			return nil
		}
		s = v.Key()
	}
	s = strings.TrimSpace(s)
	// The tags table publishes the literal token NA for absent cells
	if s == "" || strings.EqualFold(s, "NA") {
		return nil
	}
	return &s
}

func (m *metaIndex) boolAt(name, col string) *bool {
	r, ok := m.row(name)
	if !ok {
		return nil
	}
	v := m.f.Value(r, col)
	switch v.Kind() {
	case frame.KindBool:
		b, _ := v.Boolean()
		return &b
	case frame.KindNumber:
		n, _ := v.Number()
		b := n != 0
		return &b
	case frame.KindString:
		s, _ := v.Text()
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "yes":
			b := true
			return &b
		case "false", "0", "no":
			b := false
			return &b
		}
	}
	return nil
}
