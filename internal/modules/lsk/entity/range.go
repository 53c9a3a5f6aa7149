package entity

// RangeKey identifies one counter partition. Equality and hashing use all
// three components, which Go gives us for free since the struct holds only
// comparable string fields and can be used directly as a map key.
type RangeKey struct {
	Table  string
	Column string
	Module string
}

// RangeInfo is the per-request accumulator for one RangeKey. Values assigned
// to the same RangeKey within a request form a contiguous run
// [FirstValue, LastValue] with no gaps.
type RangeInfo struct {
	FirstValue int64
	LastValue  int64

	// Fragments holds every element fragment in which at least one PK
	// placeholder belonging to this key appeared, grouped by placeholder in
	// first-seen order and, per placeholder, in occurrence order. A fragment
	// holding several of this key's placeholders appears once per placeholder.
	Fragments []string

	// Mapping holds, for PKs of this key only, placeholder -> resolved form
	// ("table:column:module:value").
	Mapping map[string]string
}

func NewRangeInfo() *RangeInfo {
	return &RangeInfo{Mapping: make(map[string]string)}
}
