package facet

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// statuteRefRe captures part (optional) and statute numbers from one
// listed reference. Subpoint-level citations never reach this pattern:
// upstream extraction projects them to their part form.
var statuteRefRe = regexp.MustCompile(`(?i)(?:ч\.\s*(\d+)\s*)?ст\.\s*(\d+)`)

// BuildStatuteTree groups statute references into a two-level hierarchy:
// one node per article, with its cited parts as children. An article's
// count is its direct "ст. N" citations plus the sum of its part
// children; parts sort numerically within an article, articles sort
// numerically by number. refs holds extracted reference strings of the
// form "ст. N" or "ч. M ст. N" (one element per citation occurrence).
func BuildStatuteTree(refs []string) []Node {
	type article struct {
		direct int
		parts  map[int]int
	}
	articles := map[int]*article{}

	for _, ref := range refs {
		m := statuteRefRe.FindStringSubmatch(ref)
		if m == nil {
			continue
		}
		statute, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		a, ok := articles[statute]
		if !ok {
			a = &article{parts: map[int]int{}}
			articles[statute] = a
		}
		if m[1] == "" {
			a.direct++
			continue
		}
		part, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		a.parts[part]++
	}

	numbers := make([]int, 0, len(articles))
	for n := range articles {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	var out []Node
	for _, n := range numbers {
		a := articles[n]

		partNums := make([]int, 0, len(a.parts))
		for p := range a.parts {
			partNums = append(partNums, p)
		}
		sort.Ints(partNums)

		count := a.direct
		children := make([]Node, 0, len(partNums))
		for _, p := range partNums {
			children = append(children, Node{
				Label: fmt.Sprintf("ч. %d", p),
				Count: a.parts[p],
			})
			count += a.parts[p]
		}

		out = append(out, Node{
			Label:    fmt.Sprintf("ст. %d", n),
			Count:    count,
			Children: children,
		})
	}
	return out
}
