package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thesyncim/mpegdec"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func genFile(t *testing.T, pattern string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.mpg2")
	if _, err := runCommand(t, "gen", path, "--pattern", pattern, "--payload", "256"); err != nil {
		t.Fatalf("gen: %v", err)
	}
	return path
}

func TestGen(t *testing.T) {
	path := genFile(t, "IPBP")

	s, err := mpegdec.OpenStream(path, 4)
	if err != nil {
		t.Fatalf("OpenStream: %v", err)
	}
	want := []mpegdec.PictureCodingType{
		mpegdec.PictureIntra, mpegdec.PicturePredicted, mpegdec.PictureBidirectional, mpegdec.PicturePredicted,
	}
	for i, ct := range s.CodingTypes() {
		if ct != want[i] {
			t.Errorf("picture %d type = %v, want %v", i, ct, want[i])
		}
	}
	if s.Width != 720 || s.Height != 576 || s.Profile != mpegdec.ProfileMPEG2Main {
		t.Errorf("header = %dx%d %v", s.Width, s.Height, s.Profile)
	}
	if s.PayloadBytes() != 4*256 {
		t.Errorf("PayloadBytes() = %d", s.PayloadBytes())
	}
}

func TestGen_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{"bad pattern", []string{"--pattern", "IXP"}},
		{"bad profile", []string{"--profile", "h264"}},
		{"bad size", []string{"--width", "0"}},
		{"tiny payload", []string{"--payload", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"gen", filepath.Join(dir, tt.name)}, tt.args...)
			if _, err := runCommand(t, args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestInfo(t *testing.T) {
	path := genFile(t, "IPBP")

	out, err := runCommand(t, "info", path)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, want := range []string{"720x576", "MPEG2 Main", "Display order: [0 2 1 3]"} {
		if !strings.Contains(out, want) {
			t.Errorf("info output missing %q:\n%s", want, out)
		}
	}
}

func TestStream(t *testing.T) {
	path := genFile(t, "IPBP")

	out, err := runCommand(t, "stream", path, "--device", "fake", "--count", "8")
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if !strings.Contains(out, "decoded=8 failed=0 bytes=2048 windows=2") {
		t.Errorf("unexpected stream output:\n%s", out)
	}
}

func TestBatch(t *testing.T) {
	path := genFile(t, "IPBP")

	out, err := runCommand(t, "batch", path, "--device", "fake")
	if err != nil {
		t.Fatalf("batch: %v", err)
	}

	var order []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) > 2 && strings.HasPrefix(fields[2], "surface=") {
			order = append(order, fields[1])
		}
	}
	if got := strings.Join(order, ""); got != "IBPP" {
		t.Errorf("display order types = %q, want IBPP\n%s", got, out)
	}
}

func TestBatch_DecodeOnlyWindowTooLarge(t *testing.T) {
	path := genFile(t, "IPBP")

	if _, err := runCommand(t, "batch", path, "--device", "fake", "--decode-only"); err == nil {
		t.Fatal("expected error for a 4 picture window on 3 surfaces")
	}
}

func TestBench(t *testing.T) {
	path := genFile(t, "IPBP")

	out, err := runCommand(t, "bench", path, "--device", "fake", "--duration", "50ms", "--parallel", "2")
	if err != nil {
		t.Fatalf("bench: %v", err)
	}
	if !strings.Contains(out, "session 1:") || !strings.Contains(out, "pictures/s") {
		t.Errorf("unexpected bench output:\n%s", out)
	}
}

func TestUnknownDevice(t *testing.T) {
	path := genFile(t, "IPBP")

	if _, err := runCommand(t, "stream", path, "--device", "quantum"); err == nil {
		t.Fatal("expected error for unknown device")
	}
}

func TestConfigFile(t *testing.T) {
	path := genFile(t, "IPB")
	cfg := filepath.Join(t.TempDir(), "mpegdec.yaml")
	if err := os.WriteFile(cfg, []byte("device: fake\npictures: 3\ndecode-only: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCommand(t, "batch", path, "--config", cfg)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if !strings.Contains(out, "decoded=3") {
		t.Errorf("unexpected batch output:\n%s", out)
	}
}

func TestConfigFile_QuotedNullDevice(t *testing.T) {
	path := genFile(t, "IPBP")
	cfg := filepath.Join(t.TempDir(), "mpegdec.yaml")
	if err := os.WriteFile(cfg, []byte("device: \"null\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCommand(t, "batch", path, "--config", cfg); err != nil {
		t.Fatalf("batch: %v", err)
	}
}

func TestConfigEnv(t *testing.T) {
	path := genFile(t, "IPBP")
	t.Setenv("MPEGDEC_DEVICE", "null")

	if _, err := runCommand(t, "stream", path); err != nil {
		t.Fatalf("stream with MPEGDEC_DEVICE=null: %v", err)
	}
}
