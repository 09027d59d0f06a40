package unpack

// Clone returns a structural deep copy of root. Every node is new and owned
// by the copy; image nodes share their Source with the original, so pixel
// data is never duplicated. The source tree is not modified.
//
// Trees are assumed acyclic, which AddChild enforces.
func Clone(root *Node) *Node {
	if root == nil {
		return nil
	}
	var clone *Node
	switch root.Type {
	case NodeTypeImage:
		clone = NewImage(root.Name, root.Source)
	default:
		clone = NewGroup(root.Name)
	}
	copyTransform(clone, root)

	if root.Type == NodeTypeGroup && len(root.children) > 0 {
		clone.children = make([]*Node, 0, len(root.children))
		for _, child := range root.children {
			c := Clone(child)
			c.Parent = clone
			clone.children = append(clone.children, c)
		}
	}
	return clone
}

func copyTransform(dst, src *Node) {
	dst.X, dst.Y = src.X, src.Y
	dst.ScaleX, dst.ScaleY = src.ScaleX, src.ScaleY
	dst.Rotation = src.Rotation
	dst.PivotX, dst.PivotY = src.PivotX, src.PivotY
	dst.Visible = src.Visible
}
