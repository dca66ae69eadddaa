// Package frame provides a small column-major tabular container for
// warehouse tables. It stands in for the dataframe shape the retrieval
// capability hands back: ordered named columns of nullable cells.
package frame

import (
	"github.com/datapages/irw-go/errors"
)

// Frame is an ordered-column table. Columns are parallel slices of equal
// length; column order is preserved from construction, so identical input
// always yields identical layout.
type Frame struct {
	cols []string
	data [][]Value
}

// New creates an empty frame with the given column names.
func New(cols ...string) *Frame {
	f := &Frame{
		cols: append([]string(nil), cols...),
		data: make([][]Value, len(cols)),
	}
	return f
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.cols...)
}

// NumCols returns the number of columns.
func (f *Frame) NumCols() int {
	return len(f.cols)
}

// NumRows returns the number of rows.
func (f *Frame) NumRows() int {
	if len(f.data) == 0 {
		return 0
	}
	return len(f.data[0])
}

// HasColumn reports whether a column exists.
func (f *Frame) HasColumn(name string) bool {
	return f.indexOf(name) >= 0
}

func (f *Frame) indexOf(name string) int {
	for i, c := range f.cols {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns the cells of a column, or nil if absent. The returned
// slice is the frame's backing storage; callers must not mutate it.
func (f *Frame) Column(name string) []Value {
	i := f.indexOf(name)
	if i < 0 {
		return nil
	}
	return f.data[i]
}

// Value returns the cell at (row, col). Null for out-of-range or unknown
// columns.
func (f *Frame) Value(row int, col string) Value {
	i := f.indexOf(col)
	if i < 0 || row < 0 || row >= len(f.data[i]) {
		return Null()
	}
	return f.data[i][row]
}

// AppendRow appends one row. The number of values must match the number of
// columns.
func (f *Frame) AppendRow(vals ...Value) error {
	if len(vals) != len(f.cols) {
		return errors.Newf("row has %d values, frame has %d columns", len(vals), len(f.cols))
	}
	for i, v := range vals {
		f.data[i] = append(f.data[i], v)
	}
	return nil
}

// MustAppendRow appends one row and panics on arity mismatch. For fixtures
// and construction sites where the arity is static.
func (f *Frame) MustAppendRow(vals ...Value) {
	if err := f.AppendRow(vals...); err != nil {
		panic(err)
	}
}

// SetValue overwrites the cell at (row, col). Unknown columns and
// out-of-range rows are ignored.
func (f *Frame) SetValue(row int, col string, v Value) {
	i := f.indexOf(col)
	if i < 0 || row < 0 || row >= len(f.data[i]) {
		return
	}
	f.data[i][row] = v
}

// Select returns a new frame with only the named columns that exist, in the
// requested order. Rows are copied.
func (f *Frame) Select(cols ...string) *Frame {
	var kept []string
	for _, c := range cols {
		if f.HasColumn(c) {
			kept = append(kept, c)
		}
	}
	out := New(kept...)
	n := f.NumRows()
	for i, c := range kept {
		src := f.Column(c)
		out.data[i] = append(out.data[i], src[:n]...)
	}
	return out
}

// Clone returns a copy of the frame with detached storage. Cells are plain
// values, so copying the column slices is a full copy.
func (f *Frame) Clone() *Frame {
	out := New(f.cols...)
	for i := range f.data {
		out.data[i] = append([]Value(nil), f.data[i]...)
	}
	return out
}

// FilterRows returns a new frame containing only the rows for which keep
// returns true, preserving order.
func (f *Frame) FilterRows(keep func(row int) bool) *Frame {
	out := New(f.cols...)
	for r := 0; r < f.NumRows(); r++ {
		if !keep(r) {
			continue
		}
		row := make([]Value, len(f.cols))
		for i := range f.cols {
			row[i] = f.data[i][r]
		}
		out.MustAppendRow(row...)
	}
	return out
}

// RenameColumn renames a column in place. Unknown names are ignored.
func (f *Frame) RenameColumn(old, new string) {
	if i := f.indexOf(old); i >= 0 {
		f.cols[i] = new
	}
}

// Row returns a copy of one row in column order.
func (f *Frame) Row(r int) []Value {
	row := make([]Value, len(f.cols))
	for i := range f.cols {
		row[i] = f.data[i][r]
	}
	return row
}
