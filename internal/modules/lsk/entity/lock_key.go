package entity

import "hash/fnv"

// AdvisoryLockKeys derives the two 32-bit integers that partition the
// advisory-lock space for this RangeKey. The derivation is a pure function
// of (Table, Column, Module); any deterministic, well-distributed hash
// suffices, so a collision only over-serializes two distinct keys and never
// threatens correctness.
func (k RangeKey) AdvisoryLockKeys() (int32, int32) {
	first := fnv.New32a()
	first.Write([]byte("lsk:table:"))
	first.Write([]byte(k.Table))
	first.Write([]byte{0})
	first.Write([]byte(k.Column))

	second := fnv.New32a()
	second.Write([]byte("lsk:module:"))
	second.Write([]byte(k.Module))
	second.Write([]byte{0})
	second.Write([]byte(k.Table))
	second.Write([]byte{0})
	second.Write([]byte(k.Column))

	return int32(first.Sum32()), int32(second.Sum32())
}
