package scene

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// WriteXML serializes the element and its descendants. Attributes are
// written in insertion order after class and style, so output is
// deterministic. Elements without content are self-closed.
func (e *Element) WriteXML(w io.Writer) error {
	bw := bufio.NewWriter(w)
	e.writeTo(bw, 0)
	return bw.Flush()
}

// XML returns the serialized element.
func (e *Element) XML() []byte {
	var buf bytes.Buffer
	_ = e.WriteXML(&buf)
	return buf.Bytes()
}

func (e *Element) writeTo(w *bufio.Writer, depth int) {
	indent := strings.Repeat("  ", depth)
	w.WriteString(indent)
	w.WriteByte('<')
	w.WriteString(e.Tag)

	if len(e.classes) > 0 {
		writeAttr(w, "class", strings.Join(e.classes, " "))
	}
	if len(e.styles) > 0 {
		parts := make([]string, len(e.styles))
		for i, s := range e.styles {
			parts[i] = s.Name + ": " + s.Value
		}
		writeAttr(w, "style", strings.Join(parts, "; "))
	}
	for _, a := range e.attrs {
		writeAttr(w, a.Name, a.Value)
	}

	if e.Text == "" && e.Raw == "" && len(e.children) == 0 {
		w.WriteString("/>\n")
		return
	}
	w.WriteByte('>')
	if e.Text != "" {
		xml.EscapeText(w, []byte(e.Text))
	}
	w.WriteString(e.Raw)
	if len(e.children) > 0 {
		w.WriteByte('\n')
		for _, c := range e.children {
			c.writeTo(w, depth+1)
		}
		w.WriteString(indent)
	}
	w.WriteString("</")
	w.WriteString(e.Tag)
	w.WriteString(">\n")
}

func writeAttr(w *bufio.Writer, name, value string) {
	w.WriteByte(' ')
	w.WriteString(name)
	w.WriteString(`="`)
	xml.EscapeText(w, []byte(value))
	w.WriteByte('"')
}
