// Package xmltree renders a tree of named elements into XML text.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Attr is an element attribute. Attributes render in slice order.
type Attr struct {
	Name  string
	Value string
}

// Node is an element with attributes and either text or children.
type Node struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []Node
}

// Element creates a node with the given children.
func Element(name string, children ...Node) Node {
	return Node{Name: name, Children: children}
}

// Text creates a leaf node holding text.
func Text(name, text string) Node {
	return Node{Name: name, Text: text}
}

// WithAttr returns a copy of n with an extra attribute.
func (n Node) WithAttr(name, value string) Node {
	attrs := make([]Attr, len(n.Attrs), len(n.Attrs)+1)
	copy(attrs, n.Attrs)
	n.Attrs = append(attrs, Attr{Name: name, Value: value})
	return n
}

// Append returns a copy of n with extra children.
func (n Node) Append(children ...Node) Node {
	out := make([]Node, 0, len(n.Children)+len(children))
	out = append(out, n.Children...)
	n.Children = append(out, children...)
	return n
}

// Header is the XML declaration written before the root element.
const Header = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// Render writes the declaration and root to w. Text and attribute values are
// escaped; names are written as given.
func Render(w io.Writer, root Node) error {
	if _, err := io.WriteString(w, Header); err != nil {
		return fmt.Errorf("write xml header: %w", err)
	}
	enc := xml.NewEncoder(w)
	if err := encodeNode(enc, root); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("flush xml: %w", err)
	}
	return nil
}

// RenderString renders root into a string.
func RenderString(root Node) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func encodeNode(enc *xml.Encoder, n Node) error {
	if n.Name == "" {
		return fmt.Errorf("xml element without a name")
	}
	start := xml.StartElement{Name: xml.Name{Local: n.Name}}
	for _, a := range n.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	if err := enc.EncodeToken(start); err != nil {
		return fmt.Errorf("encode <%s>: %w", n.Name, err)
	}
	if n.Text != "" {
		if err := enc.EncodeToken(xml.CharData(n.Text)); err != nil {
			return fmt.Errorf("encode <%s> text: %w", n.Name, err)
		}
	}
	for _, c := range n.Children {
		if err := encodeNode(enc, c); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return fmt.Errorf("encode </%s>: %w", n.Name, err)
	}
	return nil
}
