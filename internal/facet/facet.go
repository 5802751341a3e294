// Package facet builds the count-annotated hierarchies that populate the
// filter UI: industry paths, federal districts with their regions, and
// statute articles with their parts. Builders are pure functions over the
// corpus values, so rebuilding on an unchanged corpus yields identical
// trees.
package facet

// Node is one element of a facet hierarchy.
type Node struct {
	Label    string `json:"label"`
	Count    int    `json:"count"`
	Children []Node `json:"children,omitempty"`
}
