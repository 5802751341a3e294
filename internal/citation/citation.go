// Package citation parses references to provisions of the advertising law
// as they appear in FAS decision texts and in filter values.
//
// A reference names a statute article and may narrow it to a part and a
// subpoint: "ст. 5", "ч. 2 ст. 5", "п. 1 ч. 2 ст. 5".
package citation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Citation is a structured reference to a statute article, optionally
// narrowed to a part ("ч.") and a subpoint ("п."). Zero means the level
// is not specified.
type Citation struct {
	Statute  int
	Part     int
	Subpoint int
}

var (
	// citationRe matches one complete citation string.
	citationRe = regexp.MustCompile(`(?i)^\s*(?:п\.\s*(\d+)\s*)?(?:ч\.\s*(\d+)\s*)?ст\.\s*(\d+)\s*$`)

	// embeddedRe finds citations inside free text.
	embeddedRe = regexp.MustCompile(`(?i)(?:п\.\s*(\d+)\s*)?(?:ч\.\s*(\d+)\s*)?ст\.\s*(\d+)`)

	// refRe is the surface pattern for listing citable articles. The
	// subpoint level is deliberately not part of the listed form.
	refRe = regexp.MustCompile(`(?i)ст\.\s*\d+|ч\.\s*\d+\s*ст\.\s*\d+`)
)

// Parse parses a single citation string such as "ч. 2 ст. 5".
func Parse(s string) (Citation, error) {
	m := citationRe.FindStringSubmatch(s)
	if m == nil {
		return Citation{}, fmt.Errorf("not a statute citation: %q", s)
	}
	return fromMatch(m), nil
}

// ParseAll extracts every citation embedded in free text, in order of
// appearance. Returns nil when the text contains none.
func ParseAll(text string) []Citation {
	ms := embeddedRe.FindAllStringSubmatch(text, -1)
	if ms == nil {
		return nil
	}
	out := make([]Citation, 0, len(ms))
	for _, m := range ms {
		out = append(out, fromMatch(m))
	}
	return out
}

// ExtractRefs returns the citable article strings found in text as they
// appear ("ст. 5", "ч. 2 ст. 5"). A subpointed reference is listed by
// its part form.
func ExtractRefs(text string) []string {
	refs := refRe.FindAllString(text, -1)
	for i, r := range refs {
		refs[i] = strings.TrimSpace(r)
	}
	return refs
}

func fromMatch(m []string) Citation {
	var c Citation
	if m[1] != "" {
		c.Subpoint, _ = strconv.Atoi(m[1])
	}
	if m[2] != "" {
		c.Part, _ = strconv.Atoi(m[2])
	}
	c.Statute, _ = strconv.Atoi(m[3])
	return c
}

// Matches reports whether a stored citation satisfies the filter
// citation f. The statute must agree, every level the filter specifies
// must agree, and levels the filter omits match any stored value.
func (f Citation) Matches(stored Citation) bool {
	if f.Statute != stored.Statute {
		return false
	}
	if f.Part != 0 && stored.Part != f.Part {
		return false
	}
	if f.Subpoint != 0 && stored.Subpoint != f.Subpoint {
		return false
	}
	return true
}

// String renders the citation in the conventional short form.
func (c Citation) String() string {
	var sb strings.Builder
	if c.Subpoint != 0 {
		fmt.Fprintf(&sb, "п. %d ", c.Subpoint)
	}
	if c.Part != 0 {
		fmt.Fprintf(&sb, "ч. %d ", c.Part)
	}
	fmt.Fprintf(&sb, "ст. %d", c.Statute)
	return sb.String()
}
