package domain

import (
	"cmp"
	"slices"
)

// Placement pairs a ranked item with its place. Place is nil for items that
// had no value to rank by.
type Placement[T any] struct {
	Item  T
	Place *int
}

// Rank orders items by descending value and assigns standard competition
// ranks: tied items share a place and the next distinct value skips by the
// size of the tied group, so [90 90 80 70 70] ranks as [1 1 3 4 4].
//
// Ties on value are broken by ascending key so that identical inputs always
// produce the identical order. Items whose value is nil sort last and are
// left unplaced.
func Rank[T any, V cmp.Ordered](items []T, value func(T) *V, key func(T) string) []Placement[T] {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		va, vb := value(a), value(b)
		switch {
		case va == nil && vb == nil:
		case va == nil:
			return 1
		case vb == nil:
			return -1
		default:
			if c := cmp.Compare(*vb, *va); c != 0 {
				return c
			}
		}
		return cmp.Compare(key(a), key(b))
	})

	out := make([]Placement[T], len(sorted))
	var (
		prev      *V
		prevPlace int
	)
	for i, item := range sorted {
		out[i].Item = item
		v := value(item)
		if v == nil {
			continue
		}
		place := i + 1
		if prev != nil && *prev == *v {
			place = prevPlace
		}
		prev, prevPlace = v, place
		out[i].Place = &place
	}
	return out
}
