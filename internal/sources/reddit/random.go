package reddit

import "math/rand"

// PickRandom returns a uniformly chosen element of items. The boolean is false
// when items is empty.
func PickRandom[T any](r *rand.Rand, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	if r == nil {
		return items[rand.Intn(len(items))], true
	}
	return items[r.Intn(len(items))], true
}
