package unpack

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Region is one named sub-rectangle of the atlas to export.
type Region struct {
	Name string
	// Rect is the packed (possibly trimmed) rectangle in atlas pixels.
	Rect Rect
	// Frame is the untrimmed bounding box, nil when the region was not
	// trimmed. X and Y follow the Starling/Sparrow convention: the offset
	// of the frame origin relative to the packed pixels, usually <= 0.
	Frame *Rect
}

// Descriptor is a parsed atlas manifest.
type Descriptor struct {
	// ImagePath is the atlas image named by the manifest, relative to the
	// manifest. Empty when the manifest does not name one.
	ImagePath string
	Regions   []Region
}

// unknownRegionName is used for SubTexture elements without a name.
const unknownRegionName = "unknown"

// ParseRegions parses an XML atlas manifest and returns its regions in
// document order.
func ParseRegions(doc []byte) ([]Region, error) {
	d, err := ParseDescriptor(doc)
	if err != nil {
		return nil, err
	}
	return d.Regions, nil
}

// ParseDescriptor parses an XML atlas manifest (Starling/Sparrow
// TextureAtlas). Every SubTexture element, at any depth, becomes a Region.
// Numeric attributes are parsed leniently: absent or unparsable values are 0.
func ParseDescriptor(doc []byte) (*Descriptor, error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	dec.Strict = false

	d := &Descriptor{}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unpack: parse descriptor: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "TextureAtlas":
			if d.ImagePath == "" {
				d.ImagePath = attr(start, "imagePath")
			}
		case "SubTexture":
			d.Regions = append(d.Regions, regionFromElement(start))
		}
	}
	return d, nil
}

func regionFromElement(el xml.StartElement) Region {
	name := attr(el, "name")
	if name == "" {
		name = unknownRegionName
	}
	rect := Rect{
		X:      parseLenient(attr(el, "x")),
		Y:      parseLenient(attr(el, "y")),
		Width:  parseLenient(attr(el, "width")),
		Height: parseLenient(attr(el, "height")),
	}

	frameW := parseLenient(attr(el, "frameWidth"))
	if frameW == 0 {
		frameW = rect.Width
	}
	frameH := parseLenient(attr(el, "frameHeight"))
	if frameH == 0 {
		frameH = rect.Height
	}

	r := Region{Name: name, Rect: rect}
	if frameW != 0 && frameH != 0 {
		r.Frame = &Rect{
			X:      parseLenient(attr(el, "frameX")),
			Y:      parseLenient(attr(el, "frameY")),
			Width:  frameW,
			Height: frameH,
		}
	}
	return r
}

// attr returns the value of the named attribute, or "" when absent.
func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// parseLenient parses the longest leading decimal number in s, ignoring
// leading whitespace and any trailing garbage ("12px" is 12). Anything
// without a numeric prefix, or a non-finite result, is 0.
func parseLenient(s string) float64 {
	s = strings.TrimSpace(s)
	end := numericPrefix(s)
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// numericPrefix returns the length of the longest prefix of s matching
// [+-]?digits[.digits][(e|E)[+-]?digits].
func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits > 0 || frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exp := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			exp++
		}
		if exp > 0 {
			i = j
		}
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
