package topology

import "testing"

func TestStyleFor(t *testing.T) {
	tests := []struct {
		typ    NodeType
		radius float64
		color  string
	}{
		{NodeTypePort, 4, "#aec7e8"},
		{NodeTypeRouter, 10, "#ff7f0e"},
		{NodeTypeNetwork, 15, "#ffbb78"},
		{NodeTypeNC, 8, "#2ca02c"},
		{NodeTypeNCEP, 6, "#98df8a"},
		{NodeTypeNCPool, 12, "#ff9896"},
		{"LOADBALANCER", 3, "#d62728"},
		{"", 3, "#d62728"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			s := StyleFor(tt.typ)
			if s.Radius != tt.radius {
				t.Errorf("Radius = %v, want %v", s.Radius, tt.radius)
			}
			if got := s.Color(); got != tt.color {
				t.Errorf("Color() = %q, want %q", got, tt.color)
			}
		})
	}
}

func TestKnown(t *testing.T) {
	for _, typ := range KnownNodeTypes {
		if !typ.Known() {
			t.Errorf("%s.Known() = false", typ)
		}
	}
	if NodeType("port").Known() {
		t.Error("lowercase type should not be known")
	}
}

func TestStyleColorWraps(t *testing.T) {
	s := Style{PaletteIndex: 21}
	if got := s.Color(); got != Palette[1] {
		t.Errorf("Color() = %q, want %q", got, Palette[1])
	}
}
