package main

import (
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestParseLayers(t *testing.T) {
	got, err := parseLayers("1, 2,0")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []int{1, 2, 0}) {
		t.Errorf("parseLayers = %v", got)
	}
	for _, bad := range []string{"", "x", "32", "-1", "1,,2"} {
		if _, err := parseLayers(bad); err == nil {
			t.Errorf("parseLayers(%q) succeeded", bad)
		}
	}
}

func TestRunWritesCapture(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "layercap.toml")
	cfg := "[viewport]\nwidth = 64\nheight = 48\n\n[capture]\nbackground = \"#000000\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}

	o := options{
		config: cfgPath,
		output: filepath.Join(dir, "capture.png"),
		view:   filepath.Join(dir, "view.png"),
		layers: "1",
		frames: 3,
	}
	if err := run(o); err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := os.Open(o.output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	c, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	// Default capture size: half the viewport width, full height.
	if c.Width != 32 || c.Height != 48 {
		t.Errorf("capture size = %dx%d, want 32x48", c.Width, c.Height)
	}

	v, err := os.Open(o.view)
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()
	vc, err := png.DecodeConfig(v)
	if err != nil {
		t.Fatal(err)
	}
	if vc.Width != 64 || vc.Height != 48 {
		t.Errorf("view size = %dx%d, want 64x48", vc.Width, vc.Height)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		o    options
	}{
		{"missing config", options{config: filepath.Join(dir, "none.toml"), frames: 1}},
		{"bad layers", options{layers: "99", frames: 1}},
		{"zero frames", options{frames: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.o.output = filepath.Join(dir, "out.png")
			if err := run(tt.o); err == nil {
				t.Error("run succeeded")
			}
		})
	}
}
