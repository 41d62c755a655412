// Package vistool renders collections of abstract values as subsumption
// diagrams for debugging analysis precision.
package vistool

import (
	"bytes"
	"context"
	"io"

	"github.com/fatih/color"

	"github.com/absint-dk/dfval/analysis/lattice"
	"github.com/absint-dk/dfval/utils"
	"github.com/absint-dk/dfval/utils/dot"
)

// Diagram is the Hasse diagram of a collection of values under subtyping:
// one node per distinct value and one edge per covering pair, transitively
// reduced.
type Diagram struct {
	values []lattice.Value
	// covers[i] lists the indices of the immediate supertypes of values[i].
	covers [][]int
}

// New builds the diagram of the given values. Structural duplicates are
// merged; the context interrupts the reduction of large collections.
func New(ctx context.Context, values []lattice.Value) (*Diagram, error) {
	distinct := []lattice.Value{}
outer:
	for _, v := range values {
		for _, seen := range distinct {
			if seen.Equal(v) {
				continue outer
			}
		}
		distinct = append(distinct, v)
	}

	d := &Diagram{values: distinct, covers: make([][]int, len(distinct))}
	for i, v := range distinct {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		above := []lattice.Value{}
		for _, w := range distinct {
			if !w.Equal(v) && w.IsSuperType(v) {
				above = append(above, w)
			}
		}
		// Reducing the strict supertypes to their minimal elements leaves
		// exactly the covering relation.
		if err := utils.Antichain(ctx, &above, func(a, b lattice.Value) bool {
			return a.IsSuperType(b)
		}); err != nil {
			return nil, err
		}
		for _, w := range above {
			for j, u := range distinct {
				if u.Equal(w) {
					d.covers[i] = append(d.covers[i], j)
					break
				}
			}
		}
	}
	return d, nil
}

// Maximal returns the values no other diagram member strictly subsumes.
func (d *Diagram) Maximal() []lattice.Value {
	res := []lattice.Value{}
	for i, v := range d.values {
		if len(d.covers[i]) == 0 {
			res = append(res, v)
		}
	}
	return res
}

func (d *Diagram) dotGraph(title string) *dot.DotGraph {
	// Color codes would corrupt the DOT labels.
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	nodes := make([]*dot.DotNode, len(d.values))
	for i, v := range d.values {
		nodes[i] = &dot.DotNode{ID: v.String()}
	}
	edges := []*dot.DotEdge{}
	for i, sup := range d.covers {
		for _, j := range sup {
			edges = append(edges, &dot.DotEdge{From: nodes[i], To: nodes[j]})
		}
	}
	return &dot.DotGraph{
		Title: title,
		Nodes: nodes,
		Edges: edges,
		Options: map[string]string{
			"minlen":  "1",
			"nodesep": "0.3",
		},
	}
}

// WriteDot writes the diagram as DOT source.
func (d *Diagram) WriteDot(title string, w io.Writer) error {
	return d.dotGraph(title).WriteDot(w)
}

// RenderFile renders the diagram to an image file via graphviz, returning
// the written filepath.
func (d *Diagram) RenderFile(title, outfname, format string) (string, error) {
	var buf bytes.Buffer
	if err := d.WriteDot(title, &buf); err != nil {
		return "", err
	}
	return dot.DotToImage(outfname, format, buf.Bytes())
}
