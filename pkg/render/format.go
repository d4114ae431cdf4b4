package render

import (
	"slices"
	"strings"

	"github.com/matzehuels/topochart/pkg/errors"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// Formats lists every supported output format.
var Formats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatDOT}

// ParseFormats splits a comma separated list ("svg,png"), lowercases and
// deduplicates it, and rejects unknown formats. An empty list yields svg.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(out, f) {
			continue
		}
		if !slices.Contains(Formats, f) {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want one of %s)", f, strings.Join(Formats, ", "))
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		out = []string{FormatSVG}
	}
	return out, nil
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	}
	return "application/octet-stream"
}

// NeedsConverter reports whether format goes through rsvg-convert.
func NeedsConverter(format string) bool {
	return format == FormatPNG || format == FormatPDF
}
