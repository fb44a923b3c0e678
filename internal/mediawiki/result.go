package mediawiki

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Node is one element of the parsed result tree
type Node struct {
	Name       string
	Attributes map[string]string
	Value      string
	Children   []*Node
}

// GetAttribute returns an attribute value, empty if absent
func (n *Node) GetAttribute(name string) string {
	return n.Attributes[name]
}

// HasAttribute reports whether the attribute is present
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.Attributes[name]
	return ok
}

// Result is the structured payload of a completed query: a node tree
// queryable by element name, plus the raw text for diagnostics.
type Result struct {
	Root *Node
	Data string
}

// ParseResult parses an action-API XML payload into a result tree
func ParseResult(data []byte) (*Result, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	root := &Node{Name: "", Attributes: map[string]string{}}
	stack := []*Node{root}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse api response: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{
				Name:       t.Name.Local,
				Attributes: make(map[string]string, len(t.Attr)),
			}
			for _, a := range t.Attr {
				node.Attributes[a.Name.Local] = a.Value
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
			stack = append(stack, node)
		case xml.CharData:
			stack[len(stack)-1].Value += string(t)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if len(root.Children) == 0 {
		return nil, fmt.Errorf("parse api response: no elements")
	}

	return &Result{Root: root, Data: string(data)}, nil
}

// GetNode returns the first node with the given name, depth-first
func (r *Result) GetNode(name string) *Node {
	return findFirst(r.Root, name)
}

// GetNodes returns all nodes with the given name, depth-first order
func (r *Result) GetNodes(name string) []*Node {
	var out []*Node
	collect(r.Root, name, &out)
	return out
}

func findFirst(n *Node, name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
		if found := findFirst(c, name); found != nil {
			return found
		}
	}
	return nil
}

func collect(n *Node, name string, out *[]*Node) {
	for _, c := range n.Children {
		if c.Name == name {
			*out = append(*out, c)
		}
		collect(c, name, out)
	}
}

// Revision is the flattened view of one "rev" node
type Revision struct {
	ID      int64
	HasID   bool
	User    string
	HasUser bool
	Time    string
	Content string
}

// Revisions extracts all "rev" nodes into flattened revisions
func Revisions(r *Result) []Revision {
	nodes := r.GetNodes("rev")
	revs := make([]Revision, 0, len(nodes))
	for _, n := range nodes {
		rev := Revision{
			Time:    n.GetAttribute("timestamp"),
			Content: n.Value,
		}
		if n.HasAttribute("revid") {
			if id, err := parseRevID(n.GetAttribute("revid")); err == nil {
				rev.ID = id
				rev.HasID = true
			}
		}
		if n.HasAttribute("user") {
			rev.User = n.GetAttribute("user")
			rev.HasUser = true
		}
		revs = append(revs, rev)
	}
	return revs
}

func parseRevID(s string) (int64, error) {
	var id int64
	_, err := fmt.Sscanf(s, "%d", &id)
	return id, err
}
