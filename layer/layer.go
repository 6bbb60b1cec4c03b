// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package layer provides the bitset that decides which cameras see which
// scene objects.
//
// Every object and every camera carries a Mask. An object is visible to a
// camera when the two masks share at least one bit. This lets one scene graph
// serve several views (for example a full interactive view and a partial
// capture view) without duplicating objects.
package layer

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Count is the number of addressable layers.
const Count = 32

// Mask is a set of rendering layers. Layer n is represented by bit 1<<n.
// The zero Mask is invisible to every camera.
type Mask uint32

const (
	// None is the empty mask.
	None Mask = 0

	// All contains every layer.
	All Mask = ^Mask(0)
)

// Of returns a mask containing the given layers.
// It panics if a layer is outside [0, Count).
func Of(layers ...int) Mask {
	var m Mask
	for _, n := range layers {
		m = m.Enable(n)
	}
	return m
}

// Enable returns m with layer n added.
func Enable(m Mask, n int) Mask { return m.Enable(n) }

// Disable returns m with layer n removed.
func Disable(m Mask, n int) Mask { return m.Disable(n) }

// Intersects reports whether a and b share at least one layer.
func Intersects(a, b Mask) bool { return a.Intersects(b) }

// Enable returns m with layer n added.
func (m Mask) Enable(n int) Mask {
	return m | bit(n)
}

// Disable returns m with layer n removed.
func (m Mask) Disable(n int) Mask {
	return m &^ bit(n)
}

// Has reports whether layer n is in m.
func (m Mask) Has(n int) bool {
	return m&bit(n) != 0
}

// Intersects reports whether m and other share at least one layer.
func (m Mask) Intersects(other Mask) bool {
	return m&other != 0
}

// Len returns the number of layers in m.
func (m Mask) Len() int {
	return bits.OnesCount32(uint32(m))
}

// Layers returns the layer indices in m in ascending order.
func (m Mask) Layers() []int {
	out := make([]int, 0, m.Len())
	for v := uint32(m); v != 0; v &= v - 1 {
		out = append(out, bits.TrailingZeros32(v))
	}
	return out
}

// String formats m as a list of layer indices, e.g. "layers(1,2)".
func (m Mask) String() string {
	if m == None {
		return "layers()"
	}
	var b strings.Builder
	b.WriteString("layers(")
	for i, n := range m.Layers() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(n))
	}
	b.WriteByte(')')
	return b.String()
}

func bit(n int) Mask {
	if n < 0 || n >= Count {
		panic(fmt.Sprintf("layer: index %d out of range [0,%d)", n, Count))
	}
	return Mask(1) << n
}
