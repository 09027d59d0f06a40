package unpack

import "testing"

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<TextureAtlas imagePath="graphic.png">
	<SubTexture name="icon" x="0" y="0" width="32" height="32"/>
	<SubTexture name="sword" x="10" y="20" width="16" height="64" frameX="4" frameY="0" frameWidth="24" frameHeight="64"/>
	<SubTexture x="1.5" y="2.25" width="3" height="4"/>
	<group>
		<SubTexture name="nested" x="40" y="0" width="8" height="8" frameX="-1" frameY="-2"/>
	</group>
</TextureAtlas>`

func TestParseDescriptorDocumentOrder(t *testing.T) {
	d, err := ParseDescriptor([]byte(sampleXML))
	if err != nil {
		t.Fatalf("ParseDescriptor: %v", err)
	}
	if d.ImagePath != "graphic.png" {
		t.Errorf("ImagePath = %q, want graphic.png", d.ImagePath)
	}
	want := []string{"icon", "sword", "unknown", "nested"}
	if len(d.Regions) != len(want) {
		t.Fatalf("regions = %d, want %d", len(d.Regions), len(want))
	}
	for i, name := range want {
		if d.Regions[i].Name != name {
			t.Errorf("region %d = %q, want %q", i, d.Regions[i].Name, name)
		}
	}
}

func TestParseDescriptorRects(t *testing.T) {
	regions, err := ParseRegions([]byte(sampleXML))
	if err != nil {
		t.Fatalf("ParseRegions: %v", err)
	}

	tests := []struct {
		idx   int
		rect  Rect
		frame *Rect
	}{
		// No frame attributes: the frame resolves to the region's own size.
		{0, Rect{0, 0, 32, 32}, &Rect{0, 0, 32, 32}},
		{1, Rect{10, 20, 16, 64}, &Rect{4, 0, 24, 64}},
		{2, Rect{1.5, 2.25, 3, 4}, &Rect{0, 0, 3, 4}},
		{3, Rect{40, 0, 8, 8}, &Rect{-1, -2, 8, 8}},
	}
	for _, tt := range tests {
		r := regions[tt.idx]
		if r.Rect != tt.rect {
			t.Errorf("%s: Rect = %+v, want %+v", r.Name, r.Rect, tt.rect)
		}
		if (r.Frame == nil) != (tt.frame == nil) {
			t.Errorf("%s: Frame = %v, want %v", r.Name, r.Frame, tt.frame)
			continue
		}
		if r.Frame != nil && *r.Frame != *tt.frame {
			t.Errorf("%s: Frame = %+v, want %+v", r.Name, *r.Frame, *tt.frame)
		}
	}
}

func TestParseDescriptorLenientNumbers(t *testing.T) {
	doc := `<TextureAtlas>
		<SubTexture name="a" x="abc" y="" width="oops" height="12px"/>
		<SubTexture name="b" x="  7 " y="1e1" width="NaN" height="Infinity"/>
		<SubTexture name="c" x="-3.5" y="+2" width=".5" height="5."/>
	</TextureAtlas>`
	regions, err := ParseRegions([]byte(doc))
	if err != nil {
		t.Fatalf("ParseRegions: %v", err)
	}
	want := []Rect{
		{0, 0, 0, 12},
		{7, 10, 0, 0},
		{-3.5, 2, 0.5, 5},
	}
	for i, r := range regions {
		if r.Rect != want[i] {
			t.Errorf("%s: Rect = %+v, want %+v", r.Name, r.Rect, want[i])
		}
	}
}

func TestParseDescriptorFramePresence(t *testing.T) {
	tests := []struct {
		name      string
		element   string
		wantFrame bool
	}{
		{"both sizes from region", `<SubTexture width="5" height="5"/>`, true},
		{"zero width, no frame width", `<SubTexture width="0" height="5"/>`, false},
		{"zero width, frame width given", `<SubTexture width="0" height="5" frameWidth="9"/>`, true},
		{"non-numeric width", `<SubTexture width="wide" height="5"/>`, false},
		{"non-numeric frame falls back", `<SubTexture width="5" height="5" frameWidth="x" frameHeight="y"/>`, true},
		{"all missing", `<SubTexture/>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regions, err := ParseRegions([]byte("<TextureAtlas>" + tt.element + "</TextureAtlas>"))
			if err != nil {
				t.Fatalf("ParseRegions: %v", err)
			}
			if len(regions) != 1 {
				t.Fatalf("regions = %d, want 1", len(regions))
			}
			if got := regions[0].Frame != nil; got != tt.wantFrame {
				t.Errorf("frame present = %v, want %v", got, tt.wantFrame)
			}
		})
	}
}

func TestParseDescriptorFrameDefaultsToRegionSize(t *testing.T) {
	regions, err := ParseRegions([]byte(`<TextureAtlas><SubTexture width="16" height="8" frameX="-2" frameWidth="0"/></TextureAtlas>`))
	if err != nil {
		t.Fatalf("ParseRegions: %v", err)
	}
	f := regions[0].Frame
	if f == nil || *f != (Rect{-2, 0, 16, 8}) {
		t.Errorf("Frame = %v, want {-2 0 16 8}", f)
	}
}

func TestParseDescriptorEmpty(t *testing.T) {
	regions, err := ParseRegions([]byte(`<TextureAtlas imagePath="x.png"></TextureAtlas>`))
	if err != nil {
		t.Fatalf("ParseRegions: %v", err)
	}
	if len(regions) != 0 {
		t.Errorf("regions = %d, want 0", len(regions))
	}
}

func TestParseDescriptorSyntaxError(t *testing.T) {
	_, err := ParseDescriptor([]byte(`<TextureAtlas><SubTexture name="a" x=`))
	if err == nil {
		t.Fatal("expected error for truncated document")
	}
}

func TestLoadDescriptorSniffsFormat(t *testing.T) {
	d, err := LoadDescriptor([]byte("\n  " + sampleXML))
	if err != nil {
		t.Fatalf("LoadDescriptor(xml): %v", err)
	}
	if len(d.Regions) != 4 {
		t.Errorf("xml regions = %d, want 4", len(d.Regions))
	}

	d, err = LoadDescriptor([]byte("  " + hashJSON))
	if err != nil {
		t.Fatalf("LoadDescriptor(json): %v", err)
	}
	if len(d.Regions) != 3 {
		t.Errorf("json regions = %d, want 3", len(d.Regions))
	}
}

func TestNumericPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"-", 0},
		{".", 0},
		{"12", 2},
		{"12px", 2},
		{"-1.5e3x", 7},
		{"1e", 1},
		{"1e+", 1},
		{"+.5", 3},
		{"e5", 0},
	}
	for _, tt := range tests {
		if got := numericPrefix(tt.in); got != tt.want {
			t.Errorf("numericPrefix(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
