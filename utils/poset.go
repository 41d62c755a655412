package utils

import (
	"context"

	uf "github.com/spakin/disjoint"
)

// Antichain reduces the given collection under the non-strict partial order
// `subsumed` to its maximal antichain: any item subsumed by some other item
// is removed. The slice is consumed in place and shrunk to the reduced form;
// it must not be mutated concurrently during the call.
//
// The reduction is pairwise O(n²). The context is polled once per comparison
// so that a caller may interrupt a large reduction; on cancellation the
// context error is returned and the collection is left partially reduced.
func Antichain[T any](ctx context.Context, items *[]T, subsumed func(a, b T) bool) error {
	xs := *items
	for i := 0; i < len(xs); i++ {
		for j := 0; j < len(xs); j++ {
			if err := ctx.Err(); err != nil {
				*items = xs
				return err
			}
			if i != j && subsumed(xs[i], xs[j]) {
				xs = append(xs[:i], xs[i+1:]...)
				i--
				break
			}
		}
	}
	*items = xs
	return nil
}

// EquivalenceClasses partitions items into groups of mutually subsumed
// elements under the non-strict partial order `subsumed`, using union-find.
// Groups preserve the order of first appearance.
func EquivalenceClasses[T any](items []T, subsumed func(a, b T) bool) [][]T {
	elements := make([]*uf.Element, len(items))
	for i := range items {
		elements[i] = uf.NewElement()
		elements[i].Data = i
	}

	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if subsumed(items[i], items[j]) && subsumed(items[j], items[i]) {
				uf.Union(elements[i], elements[j])
			}
		}
	}

	groups := make(map[*uf.Element][]T)
	roots := []*uf.Element{}
	for i, el := range elements {
		root := el.Find()
		if _, seen := groups[root]; !seen {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], items[i])
	}

	classes := make([][]T, 0, len(roots))
	for _, root := range roots {
		classes = append(classes, groups[root])
	}
	return classes
}
