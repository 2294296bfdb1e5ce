package telegraph

import (
	"encoding/json"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node is one element of Telegraph's page content tree. A node with an
// empty Tag is a bare text node and marshals as a plain JSON string, which
// is what the createPage API expects.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Children []Node
	Text     string
}

func (n Node) MarshalJSON() ([]byte, error) {
	if n.Tag == "" {
		return json.Marshal(n.Text)
	}
	return json.Marshal(struct {
		Tag      string            `json:"tag"`
		Attrs    map[string]string `json:"attrs,omitempty"`
		Children []Node            `json:"children,omitempty"`
	}{
		Tag:      n.Tag,
		Attrs:    n.Attrs,
		Children: n.Children,
	})
}

// ParseNodes converts an HTML fragment into Telegraph content nodes. It
// supports nested tags and bare text; markup it cannot make sense of
// degrades to flat text nodes. It never fails.
func ParseNodes(content string) []Node {
	container := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	}

	fragments, err := html.ParseFragment(strings.NewReader(content), container)
	if err != nil {
		return []Node{{Text: content}}
	}

	var nodes []Node
	for _, fragment := range fragments {
		nodes = append(nodes, convertNode(fragment)...)
	}
	if len(nodes) == 0 && content != "" {
		nodes = []Node{{Text: content}}
	}
	return nodes
}

func convertNode(n *html.Node) []Node {
	switch n.Type {
	case html.TextNode:
		if n.Data == "" {
			return nil
		}
		return []Node{{Text: n.Data}}

	case html.ElementNode:
		node := Node{Tag: n.Data}
		if len(n.Attr) > 0 {
			node.Attrs = make(map[string]string, len(n.Attr))
			for _, attr := range n.Attr {
				node.Attrs[attr.Key] = attr.Val
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			node.Children = append(node.Children, convertNode(child)...)
		}
		return []Node{node}

	default:
		// comments, doctypes and the like carry nothing publishable
		return nil
	}
}
