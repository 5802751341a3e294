package facet

import (
	"sort"
	"strings"
)

// BuildIndustryTree aggregates raw defendant-industry values into a tree.
// Values are "/"-delimited paths of one to three segments
// (industry/sub-industry/specialty). A node's count includes the cases
// terminating exactly at it plus every deeper descendant, so a value adds
// one to each of its path prefixes. Empty values are skipped.
func BuildIndustryTree(values []string) []Node {
	root := newTreeBuilder()

	for _, raw := range values {
		segments := splitIndustryPath(raw)
		if len(segments) == 0 {
			continue
		}
		node := root
		for _, seg := range segments {
			node = node.child(seg)
			node.count++
		}
	}

	return root.build()
}

// splitIndustryPath splits a raw industry value into trimmed, non-empty
// path segments, keeping at most three levels.
func splitIndustryPath(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			segments = append(segments, t)
		}
	}
	if len(segments) > 3 {
		segments = segments[:3]
	}
	return segments
}

// treeBuilder accumulates counts before the ordered Node tree is emitted.
type treeBuilder struct {
	count    int
	children map[string]*treeBuilder
}

func newTreeBuilder() *treeBuilder {
	return &treeBuilder{children: map[string]*treeBuilder{}}
}

func (b *treeBuilder) child(label string) *treeBuilder {
	c, ok := b.children[label]
	if !ok {
		c = newTreeBuilder()
		b.children[label] = c
	}
	return c
}

// build emits the children of b as Nodes sorted by label.
func (b *treeBuilder) build() []Node {
	if len(b.children) == 0 {
		return nil
	}
	labels := make([]string, 0, len(b.children))
	for l := range b.children {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	nodes := make([]Node, 0, len(labels))
	for _, l := range labels {
		c := b.children[l]
		nodes = append(nodes, Node{
			Label:    l,
			Count:    c.count,
			Children: c.build(),
		})
	}
	return nodes
}
