package jetty

// SparseMatrix is a two-axis sparse map. The engine uses it for
// connector-scoped identifier tables (namespace x name -> local id) and for
// effective-permission matrices (user x asset -> permissions).
type SparseMatrix[R, C comparable, V any] map[R]map[C]V

// Get returns the value at (row, col) and whether it is present.
func (m SparseMatrix[R, C, V]) Get(row R, col C) (V, bool) {
	v, ok := m[row][col]
	return v, ok
}

// Set inserts value at (row, col), creating the row as needed.
func (m SparseMatrix[R, C, V]) Set(row R, col C, value V) {
	inner, ok := m[row]
	if !ok {
		inner = make(map[C]V)
		m[row] = inner
	}
	inner[col] = value
}

// Row returns the inner map for row; it may be nil.
func (m SparseMatrix[R, C, V]) Row(row R) map[C]V {
	return m[row]
}

// SetOrMerge inserts value at (row, col); if a value is already present the
// two are combined with merge.
func (m SparseMatrix[R, C, V]) SetOrMerge(row R, col C, value V, merge func(existing, incoming V) V) {
	if existing, ok := m.Get(row, col); ok {
		m.Set(row, col, merge(existing, value))
		return
	}
	m.Set(row, col, value)
}
