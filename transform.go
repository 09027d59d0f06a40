package unpack

import "math"

// Affine is a 2D affine matrix stored as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Affine [6]float64

// Identity is the identity affine matrix.
var Identity = Affine{1, 0, 0, 1, 0, 0}

// ScaleAffine returns a uniform scale matrix, used to map logical units onto
// a surface's device pixels.
func ScaleAffine(s float64) Affine {
	return Affine{s, 0, 0, s, 0, 0}
}

// TranslateAffine returns a pure translation.
func TranslateAffine(tx, ty float64) Affine {
	return Affine{1, 0, 0, 1, tx, ty}
}

// LocalTransform computes the node's local matrix from its transform
// properties.
//
// Composition order:
//
//	Translate(-PivotX, -PivotY) -> Scale -> Rotate -> Translate(X, Y)
func LocalTransform(n *Node) Affine {
	sx := n.ScaleX
	sy := n.ScaleY
	sin, cos := math.Sincos(n.Rotation)

	preTx := -n.PivotX * sx
	preTy := -n.PivotY * sy

	return Affine{
		cos * sx,
		sin * sx,
		-sin * sy,
		cos * sy,
		cos*preTx - sin*preTy + n.X,
		sin*preTx + cos*preTy + n.Y,
	}
}

// Mul returns m * c, i.e. c applied first and m second.
func (m Affine) Mul(c Affine) Affine {
	return Affine{
		m[0]*c[0] + m[2]*c[1],
		m[1]*c[0] + m[3]*c[1],
		m[0]*c[2] + m[2]*c[3],
		m[1]*c[2] + m[3]*c[3],
		m[0]*c[4] + m[2]*c[5] + m[4],
		m[1]*c[4] + m[3]*c[5] + m[5],
	}
}

// Apply transforms a point.
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Walk visits root and its visible descendants depth first, in child order,
// passing each node's world transform (base applied last). Invisible nodes
// prune their subtree.
func Walk(root *Node, base Affine, fn func(n *Node, world Affine)) {
	if root == nil || !root.Visible {
		return
	}
	world := base.Mul(LocalTransform(root))
	fn(root, world)
	if root.Type == NodeTypeGroup {
		for _, child := range root.children {
			Walk(child, world, fn)
		}
	}
}

// CountNodes returns the number of nodes in the tree, visible or not.
func CountNodes(root *Node) int {
	if root == nil {
		return 0
	}
	count := 1
	for _, child := range root.children {
		count += CountNodes(child)
	}
	return count
}
