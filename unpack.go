package unpack

import "math"

// Rect is an axis-aligned rectangle in atlas pixel space. The coordinate
// system has its origin at the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return !(r.Width > 0) || !(r.Height > 0)
}

// NodeType distinguishes the two scene graph variants. The set is closed:
// every traversal matches on exactly these values.
type NodeType uint8

const (
	NodeTypeGroup NodeType = iota // ordered children, no visual output
	NodeTypeImage                 // draws a shared, read-only pixel source
)

// String returns the variant name.
func (t NodeType) String() string {
	switch t {
	case NodeTypeGroup:
		return "group"
	case NodeTypeImage:
		return "image"
	default:
		return "unknown"
	}
}

// Filter selects the interpolator used when pixels are resampled, both by
// RasterRenderer and by ComposeFrame.
type Filter uint8

const (
	FilterNearest    Filter = iota // exact pixel duplication; crisp at integer scales
	FilterBilinear                 // smooth, cheap
	FilterCatmullRom               // smooth, sharper, slowest
)

// ParseFilter maps a config/flag string to a Filter.
func ParseFilter(s string) (Filter, bool) {
	switch s {
	case "", "nearest":
		return FilterNearest, true
	case "bilinear":
		return FilterBilinear, true
	case "catmullrom", "catmull-rom":
		return FilterCatmullRom, true
	}
	return FilterNearest, false
}

// String returns the config name of the filter.
func (f Filter) String() string {
	switch f {
	case FilterBilinear:
		return "bilinear"
	case FilterCatmullRom:
		return "catmullrom"
	default:
		return "nearest"
	}
}

// SurfaceSize converts a logical size at the given resolution into whole
// device pixels. Non-finite or negative products yield zero.
func SurfaceSize(width, height, resolution float64) (int, int) {
	return toPixels(width * resolution), toPixels(height * resolution)
}

func toPixels(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Round(v))
}
