package palette

import (
	"image"
	"image/color"
)

const octreeDepth = 8

type octreeNode struct {
	children [8]*octreeNode
	leaf     bool
	pixels   uint64
	r, g, b  uint64
}

// octree is a fixed-depth color octree. Each level splits one bit of each
// channel, most significant bit first, so a depth-8 leaf holds exactly one
// RGB value until nodes are folded into their parents.
type octree struct {
	root   *octreeNode
	leaves int
	// reducible holds the inner nodes of each level in creation order.
	reducible [octreeDepth][]*octreeNode
}

func newOctree() *octree {
	t := &octree{root: &octreeNode{}}
	t.reducible[0] = []*octreeNode{t.root}
	return t
}

func childIndex(r, g, b uint8, level int) int {
	shift := 7 - level
	return int((r>>shift)&1)<<2 | int((g>>shift)&1)<<1 | int((b>>shift)&1)
}

func (t *octree) add(r, g, b uint8) {
	n := t.root
	for level := 0; level < octreeDepth; level++ {
		if n.leaf {
			break
		}

		i := childIndex(r, g, b, level)
		child := n.children[i]
		if child == nil {
			child = &octreeNode{leaf: level == octreeDepth-1}
			n.children[i] = child
			if child.leaf {
				t.leaves++
			} else {
				t.reducible[level+1] = append(t.reducible[level+1], child)
			}
		}
		n = child
	}

	n.pixels++
	n.r += uint64(r)
	n.g += uint64(g)
	n.b += uint64(b)
}

func (t *octree) addImage(img *image.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			t.add(img.Pix[off], img.Pix[off+1], img.Pix[off+2])
			off += 4
		}
	}
}

// reduce folds the children of the most recently created node on the deepest
// level that still has inner nodes into that node.
func (t *octree) reduce() bool {
	for level := octreeDepth - 1; level >= 0; level-- {
		nodes := t.reducible[level]
		if len(nodes) == 0 {
			continue
		}

		n := nodes[len(nodes)-1]
		t.reducible[level] = nodes[:len(nodes)-1]

		merged := 0
		for i, c := range n.children {
			if c == nil {
				continue
			}
			n.pixels += c.pixels
			n.r += c.r
			n.g += c.g
			n.b += c.b
			n.children[i] = nil
			merged++
		}
		n.leaf = true
		t.leaves += 1 - merged

		return true
	}

	return false
}

// palette reduces the tree to at most limit leaves and returns their average
// colors in depth-first child order.
func (t *octree) palette(limit int) color.Palette {
	for t.leaves > limit {
		if !t.reduce() {
			break
		}
	}

	out := make(color.Palette, 0, t.leaves)
	var walk func(n *octreeNode)
	walk = func(n *octreeNode) {
		if n.leaf {
			if n.pixels > 0 {
				out = append(out, color.RGBA{
					R: uint8(n.r / n.pixels),
					G: uint8(n.g / n.pixels),
					B: uint8(n.b / n.pixels),
					A: 0xff,
				})
			}
			return
		}
		for _, c := range n.children {
			if c != nil {
				walk(c)
			}
		}
	}
	walk(t.root)

	return out
}
