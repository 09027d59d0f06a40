package cli

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/phanxgames/unpack"
	"github.com/phanxgames/unpack/internal/config"
)

const testDescriptor = `<TextureAtlas imagePath="sheet.png">
	<SubTexture name="icon" x="0" y="0" width="8" height="8"/>
	<SubTexture name="sword" x="8" y="0" width="4" height="8" frameX="2" frameY="0" frameWidth="6" frameHeight="8"/>
	<SubTexture name="broken" x="0" y="0" width="oops" height="8"/>
</TextureAtlas>`

// writeAtlas creates sheet.xml and a 16×8 sheet.png in a temp dir and
// returns the descriptor path.
func writeAtlas(t *testing.T, descriptor string) string {
	t.Helper()
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 32), A: 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, "sheet.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	path := filepath.Join(dir, "sheet.xml")
	if err := os.WriteFile(path, []byte(descriptor), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, logs bytes.Buffer
	cmd := newRootCmd(&out, &logs)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), logs.String(), err
}

func TestSetVersion(t *testing.T) {
	old, oldCommit, oldDate := version, commit, date
	t.Cleanup(func() { SetVersion(old, oldCommit, oldDate) })

	SetVersion("1.0.0", "abc123", "2024-01-01")
	if version != "1.0.0" || commit != "abc123" || date != "2024-01-01" {
		t.Errorf("version info = %q %q %q", version, commit, date)
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	for _, name := range []string{"export", "list"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not found: %v", name, err)
		}
	}
	for _, flag := range []string{"verbose", "config"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestExportCommand(t *testing.T) {
	desc := writeAtlas(t, testDescriptor)
	out := filepath.Join(t.TempDir(), "nested", "atlas.zip")

	stdout, _, err := runCLI(t, "export", desc, "-o", out, "-r", "2", "--zip-level", "0")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(stdout, "2 regions exported") {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stdout, "broken skipped") {
		t.Errorf("stdout should report the skipped region: %q", stdout)
	}

	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	sizes := map[string]image.Point{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		cfg, err := png.DecodeConfig(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("%s: %v", f.Name, err)
		}
		sizes[f.Name] = image.Pt(cfg.Width, cfg.Height)
	}
	want := map[string]image.Point{"icon.png": {16, 16}, "sword.png": {12, 16}}
	if len(sizes) != len(want) {
		t.Fatalf("entries = %v, want %v", sizes, want)
	}
	for name, size := range want {
		if sizes[name] != size {
			t.Errorf("%s = %v, want %v", name, sizes[name], size)
		}
	}
}

func TestExportCommandUsesConfigFile(t *testing.T) {
	desc := writeAtlas(t, `<TextureAtlas imagePath="sheet.png"><SubTexture name="a" x="0" y="0" width="2" height="2"/></TextureAtlas>`)
	dir := t.TempDir()
	out := filepath.Join(dir, "from-config.zip")
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("resolution = 4.0\noutput = \""+filepath.ToSlash(out)+"\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, _, err := runCLI(t, "--config", cfgPath, "export", desc); err != nil {
		t.Fatalf("export: %v", err)
	}
	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	cfg, err := png.DecodeConfig(rc)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 8 || cfg.Height != 8 {
		t.Errorf("a.png = %dx%d, want 8x8 at resolution 4", cfg.Width, cfg.Height)
	}
}

func TestExportCommandErrors(t *testing.T) {
	desc := writeAtlas(t, `<TextureAtlas imagePath="sheet.png"><SubTexture name="zero" width="0" height="0"/></TextureAtlas>`)
	out := filepath.Join(t.TempDir(), "x.zip")

	tests := []struct {
		name string
		args []string
		is   error
	}{
		{"all regions fail", []string{"export", desc, "-o", out}, errNothingExported},
		{"bad filter", []string{"export", desc, "--filter", "box"}, config.ErrInvalidFilter},
		{"missing config", []string{"--config", filepath.Join(t.TempDir(), "none.toml"), "export", desc}, config.ErrConfigNotFound},
		{"missing descriptor", []string{"export", filepath.Join(t.TempDir(), "none.xml")}, os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			if !errors.Is(err, tt.is) {
				t.Errorf("err = %v, want %v", err, tt.is)
			}
		})
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Error("no archive should be written when nothing was exported")
	}
}

func TestListCommand(t *testing.T) {
	desc := writeAtlas(t, testDescriptor)
	stdout, _, err := runCLI(t, "list", desc)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"sheet.png", "icon.png", "sword.png", "2,0 6x8", "broken.png"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestListCommandEmptyDescriptor(t *testing.T) {
	desc := writeAtlas(t, `<TextureAtlas/>`)
	stdout, _, err := runCLI(t, "list", desc)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Contains(stdout, "Entry") {
		t.Errorf("empty descriptor should not print a table:\n%s", stdout)
	}
}

func TestDigest(t *testing.T) {
	a := Digest([]byte("archive"))
	if len(a) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(a))
	}
	if a != Digest([]byte("archive")) {
		t.Error("digest should be stable")
	}
	if a == Digest([]byte("archive2")) {
		t.Error("different inputs should give different digests")
	}
}

func TestExportCommandCanceled(t *testing.T) {
	desc := writeAtlas(t, testDescriptor)
	out := filepath.Join(t.TempDir(), "canceled.zip")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cmd := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	cmd.SetArgs([]string{"export", desc, "-o", out})
	if err := cmd.ExecuteContext(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Error("a canceled export must not write an archive")
	}
}

func TestRunJobStopsBetweenRegions(t *testing.T) {
	regions := []unpack.Region{
		{Name: "a", Rect: unpack.Rect{Width: 2, Height: 2}},
		{Name: "b", Rect: unpack.Rect{X: 2, Width: 2, Height: 2}},
		{Name: "c", Rect: unpack.Rect{X: 4, Width: 2, Height: 2}},
	}
	scene := unpack.NewGroup("atlas")
	scene.AddChild(unpack.NewImage("page", image.NewNRGBA(image.Rect(0, 0, 8, 2))))
	exp, err := unpack.NewExporter(unpack.NewRasterRenderer(unpack.FilterNearest), unpack.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	res, err := runJob(context.Background(), exp.Start(scene, regions))
	if err != nil {
		t.Fatalf("runJob: %v", err)
	}
	if len(res.Entries) != 3 {
		t.Errorf("entries = %v, want 3", res.Entries)
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := exp.Start(scene, regions)
	job.Step()
	cancel()
	if _, err := runJob(ctx, job); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if done, _ := job.Progress(); done != 1 {
		t.Errorf("attempted = %d, want 1 (no region after cancel)", done)
	}
}
