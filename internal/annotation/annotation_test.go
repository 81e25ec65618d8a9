package annotation_test

import (
	"strings"
	"testing"

	"hkxshift/internal/annotation"
)

const marker = "SCAR_ActionData"

func TestParseLine(t *testing.T) {
	tests := []struct {
		body    string
		kind    annotation.Kind
		offset  float64
		payload string
	}{
		{"1.500000 SoundPlay.WPNSwing", annotation.KindTimed, 1.5, "SoundPlay.WPNSwing"},
		{"  0.25\tweaponSwing  ", annotation.KindTimed, 0.25, "weaponSwing"},
		{"-1e-2 x", annotation.KindTimed, -0.01, "x"},
		{"0.5 SCAR_ActionData{...}", annotation.KindProtected, 0, ""},
		{"# numOriginalFrames: 38", annotation.KindOpaque, 0, ""},
		{"1.0", annotation.KindOpaque, 0, ""},
		{"1.0   ", annotation.KindOpaque, 0, ""},
		{"", annotation.KindOpaque, 0, ""},
		{"nan event", annotation.KindOpaque, 0, ""},
		{"inf event", annotation.KindOpaque, 0, ""},
		{"0x1p-2 event", annotation.KindOpaque, 0, ""},
		{"1_0 event", annotation.KindOpaque, 0, ""},
		{". event", annotation.KindOpaque, 0, ""},
		{"1e event", annotation.KindOpaque, 0, ""},
		{"1e999 event", annotation.KindOpaque, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			line := annotation.ParseLine(tt.body, marker)
			if line.Kind != tt.kind {
				t.Fatalf("kind = %s, want %s", line.Kind, tt.kind)
			}
			if line.Kind != annotation.KindTimed {
				return
			}
			if line.Offset != tt.offset || line.Payload != tt.payload {
				t.Fatalf("got offset=%v payload=%q, want %v %q", line.Offset, line.Payload, tt.offset, tt.payload)
			}
		})
	}
}

func TestRescaleFormatsSixDigits(t *testing.T) {
	out, stats := annotation.Rescale("1.500000 SoundPlay.WPNSwing\n", 0.8, marker)
	if out != "1.200000 SoundPlay.WPNSwing\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if stats.Timed != 1 || stats.Lines != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	out, _ = annotation.Rescale("1 a", 1.25, marker)
	if out != "1.250000 a" {
		t.Fatalf("unexpected unterminated output %q", out)
	}
}

func TestRescaleKeepsProtectedAndOpaqueLines(t *testing.T) {
	protected := "0.500000 SCAR_ActionData{\"a\":1}  \r\n"
	opaque := "# numAnnotations: 3\n"
	input := protected + opaque + "2.0 HitFrame\n"

	out, stats := annotation.Rescale(input, 0.5, marker)
	if !strings.HasPrefix(out, protected+opaque) {
		t.Fatalf("protected/opaque lines changed: %q", out)
	}
	if !strings.HasSuffix(out, "1.000000 HitFrame\n") {
		t.Fatalf("timed line not rescaled: %q", out)
	}
	if stats.Protected != 1 || stats.Opaque != 1 || stats.Timed != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestRescaleWithoutMarkerRewritesMarkerLines(t *testing.T) {
	out, stats := annotation.Rescale("1.0 SCAR_ActionData\n", 2, "")
	if out != "2.000000 SCAR_ActionData\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if stats.Protected != 0 {
		t.Fatalf("expected no protected lines, got %d", stats.Protected)
	}
}

func TestRescalePreservesLineCountAndTerminators(t *testing.T) {
	input := "a\r\n1.0 x\r\n\n\n0.1 y"
	out, stats := annotation.Rescale(input, 1.1, marker)
	if stats.Lines != 5 {
		t.Fatalf("expected 5 lines, got %d", stats.Lines)
	}
	if strings.Count(out, "\n") != strings.Count(input, "\n") || strings.Count(out, "\r\n") != 2 {
		t.Fatalf("terminators changed: %q", out)
	}
	if !strings.HasSuffix(out, "0.110000 y") {
		t.Fatalf("final line not rescaled: %q", out)
	}
}

func TestRescaleIdentityOnlyAtOne(t *testing.T) {
	input := "1.000000 a\n"
	once, _ := annotation.Rescale(input, 1, marker)
	if once != input {
		t.Fatalf("scale 1 changed canonical input: %q", once)
	}
	first, _ := annotation.Rescale(input, 0.5, marker)
	second, _ := annotation.Rescale(first, 0.5, marker)
	if first == second {
		t.Fatal("expected repeated rescale to compound")
	}
}

func TestSplitRoundTrip(t *testing.T) {
	input := "x\n  1.0 a  \r\nSCAR_ActionData\nlast"
	var b strings.Builder
	for _, line := range annotation.Split(input, marker) {
		b.WriteString(line.Raw + line.Terminator)
	}
	if b.String() != input {
		t.Fatalf("split did not round trip: %q", b.String())
	}
}

func TestContainsMarker(t *testing.T) {
	if !annotation.ContainsMarker("0.1 SCAR_ActionData", marker) {
		t.Fatal("expected marker to be found")
	}
	if annotation.ContainsMarker("anything", "") {
		t.Fatal("empty marker should never match")
	}
}
