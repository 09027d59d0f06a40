package unpack

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrMultiPage is returned for TexturePacker array-format atlases that span
// more than one page image.
var ErrMultiPage = errors.New("unpack: multi-page atlases are not supported")

// LoadDescriptor parses an atlas manifest in either supported format,
// sniffing the first non-space byte: '<' selects the XML TextureAtlas
// format, '{' selects TexturePacker JSON.
func LoadDescriptor(data []byte) (*Descriptor, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return ParseJSONDescriptor(trimmed)
	}
	return ParseDescriptor(data)
}

// ParseJSONDescriptor parses TexturePacker JSON. Supports both the hash
// format (single "frames" object) and the array format ("textures" array)
// when it holds a single page.
func ParseJSONDescriptor(jsonData []byte) (*Descriptor, error) {
	// Probe top-level keys to detect format.
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
		Meta     struct {
			Image string `json:"image"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("unpack: failed to parse atlas JSON: %w", err)
	}

	d := &Descriptor{ImagePath: probe.Meta.Image}
	switch {
	case probe.Textures != nil:
		if err := parseArrayFormat(probe.Textures, d); err != nil {
			return nil, err
		}
	case probe.Frames != nil:
		if err := parseFrames(probe.Frames, d); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unpack: atlas JSON has neither \"frames\" nor \"textures\" key")
	}
	return d, nil
}

// --- JSON structure types ---

type jsonRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type jsonSize struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type jsonFrame struct {
	Filename         string   `json:"filename"`
	Frame            jsonRect `json:"frame"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string          `json:"image"`
	Frames json.RawMessage `json:"frames"`
}

// parseFrames accepts both {"name": {frame...}} and [{"filename": ...}].
// Hash entries are sorted by name so the region order is deterministic.
func parseFrames(raw json.RawMessage, d *Descriptor) error {
	raw = bytes.TrimLeft(raw, " \t\r\n")
	if len(raw) == 0 {
		return nil
	}
	if raw[0] == '[' {
		var frames []jsonFrame
		if err := json.Unmarshal(raw, &frames); err != nil {
			return fmt.Errorf("unpack: failed to parse atlas frames: %w", err)
		}
		for _, f := range frames {
			d.Regions = append(d.Regions, frameToRegion(f.Filename, f))
		}
		return nil
	}

	var frames map[string]jsonFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return fmt.Errorf("unpack: failed to parse atlas frames: %w", err)
	}
	names := make([]string, 0, len(frames))
	for name := range frames {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d.Regions = append(d.Regions, frameToRegion(name, frames[name]))
	}
	return nil
}

// parseArrayFormat parses the array format: [{"image":"...", "frames":...}].
func parseArrayFormat(raw json.RawMessage, d *Descriptor) error {
	var textures []jsonTexturePage
	if err := json.Unmarshal(raw, &textures); err != nil {
		return fmt.Errorf("unpack: failed to parse atlas textures array: %w", err)
	}
	if len(textures) > 1 {
		return fmt.Errorf("%w (%d pages)", ErrMultiPage, len(textures))
	}
	if len(textures) == 0 {
		return nil
	}
	if d.ImagePath == "" {
		d.ImagePath = textures[0].Image
	}
	return parseFrames(textures[0].Frames, d)
}

// frameToRegion converts a TexturePacker frame. Trimmed frames carry the
// untrimmed size in sourceSize and the trim offset in spriteSourceSize; the
// offset is negated to match the XML frameX/frameY convention.
func frameToRegion(name string, f jsonFrame) Region {
	if name == "" {
		name = unknownRegionName
	}
	r := Region{
		Name: name,
		Rect: Rect{X: f.Frame.X, Y: f.Frame.Y, Width: f.Frame.W, Height: f.Frame.H},
	}
	frameW, frameH := f.SourceSize.W, f.SourceSize.H
	if frameW == 0 {
		frameW = f.Frame.W
	}
	if frameH == 0 {
		frameH = f.Frame.H
	}
	if frameW != 0 && frameH != 0 {
		r.Frame = &Rect{
			X:      -f.SpriteSourceSize.X,
			Y:      -f.SpriteSourceSize.Y,
			Width:  frameW,
			Height: frameH,
		}
	}
	return r
}
