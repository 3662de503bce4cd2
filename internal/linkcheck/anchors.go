package linkcheck

import (
	"strings"

	"golang.org/x/net/html"
)

// CollectAnchors parses rendered HTML and returns every element id, the
// targets that fragment links can point at.
func CollectAnchors(rendered string) (map[string]bool, error) {
	doc, err := html.Parse(strings.NewReader(rendered))
	if err != nil {
		return nil, err
	}

	anchors := make(map[string]bool)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				if attr.Key == "id" && attr.Val != "" {
					anchors[attr.Val] = true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return anchors, nil
}
