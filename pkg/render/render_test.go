package render

import (
	"context"
	"reflect"
	"testing"

	"github.com/matzehuels/topochart/pkg/errors"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{"", []string{"svg"}, false},
		{"svg", []string{"svg"}, false},
		{"SVG, png,svg", []string{"svg", "png"}, false},
		{"json,dot,pdf", []string{"json", "dot", "pdf"}, false},
		{"svg,gif", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormats(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormats(%q) err = %v", tt.in, err)
			}
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidFormat) {
					t.Errorf("expected invalid format code, got %v", err)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestContentType(t *testing.T) {
	for _, f := range Formats {
		if ContentType(f) == "application/octet-stream" {
			t.Errorf("ContentType(%q) not mapped", f)
		}
	}
	if NeedsConverter(FormatSVG) || !NeedsConverter(FormatPDF) {
		t.Error("NeedsConverter mismatch")
	}
}

func TestConvertMissingTool(t *testing.T) {
	old := rsvgBinary
	rsvgBinary = "rsvg-convert-does-not-exist"
	defer func() { rsvgBinary = old }()

	_, err := ToPNG(context.Background(), []byte("<svg/>"), 1)
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPNG without rsvg-convert = %v, want unsupported", err)
	}
}
