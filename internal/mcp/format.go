package mcp

import (
	"fmt"
	"strings"

	"github.com/fascase/fascase/internal/facet"
	"github.com/fascase/fascase/internal/search"
)

const snippetLimit = 400

// FormatSearchResults renders a search response as markdown.
func FormatSearchResults(query string, resp *search.Response) string {
	if len(resp.Results) == 0 {
		msg := fmt.Sprintf("No cases found for \"%s\"", query)
		if resp.Message != "" {
			msg += "\n\n> " + resp.Message
		}
		return msg
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Cases matching \"%s\"\n\n", query)
	fmt.Fprintf(&sb, "Found %d of %d cases", len(resp.Results), resp.TotalCases)
	if !resp.Filters.Empty() {
		sb.WriteString(" (filters active)")
	}
	sb.WriteString("\n\n")
	if resp.Message != "" {
		sb.WriteString("> " + resp.Message + "\n\n")
	}

	for i, r := range resp.Results {
		formatResult(&sb, i+1, r)
	}
	return sb.String()
}

func formatResult(sb *strings.Builder, rank int, r search.Result) {
	fmt.Fprintf(sb, "### %d. Case #%d (score %.4f)\n\n", rank, r.Index, r.Score)

	c := r.Case
	if c == nil {
		sb.WriteString("\n")
		return
	}

	var meta []string
	if d := deref(c.DocumentDate); d != "" {
		meta = append(meta, d)
	}
	if reg := deref(c.FASDivision); reg != "" {
		meta = append(meta, reg)
	}
	if ind := deref(c.DefendantIndustry); ind != "" {
		meta = append(meta, ind)
	}
	if len(meta) > 0 {
		sb.WriteString("**" + strings.Join(meta, " · ") + "**\n\n")
	}

	if v := deref(c.ViolationSummary); v != "" {
		sb.WriteString(truncate(v) + "\n\n")
	} else if a := deref(c.FASArguments); a != "" {
		sb.WriteString(truncate(a) + "\n\n")
	}
	if p := deref(c.LegalProvisions); p != "" {
		fmt.Fprintf(sb, "Cited: `%s`\n\n", p)
	}
}

// FormatFilterOptions renders the facet values as markdown lists.
func FormatFilterOptions(opts *search.FilterOptions) string {
	var sb strings.Builder
	sb.WriteString("## Available filters\n\n")

	if len(opts.Years) > 0 {
		sb.WriteString("**Years:** ")
		parts := make([]string, len(opts.Years))
		for i, y := range opts.Years {
			parts[i] = fmt.Sprintf("%d", y)
		}
		sb.WriteString(strings.Join(parts, ", ") + "\n\n")
	}

	formatTree(&sb, "Regions", opts.RegionHierarchy)
	formatTree(&sb, "Industries", opts.IndustryHierarchy)
	formatTree(&sb, "Statutes", opts.ArticleHierarchy)

	return sb.String()
}

func formatTree(sb *strings.Builder, title string, nodes []facet.Node) {
	if len(nodes) == 0 {
		return
	}
	fmt.Fprintf(sb, "**%s:**\n\n", title)
	for _, n := range nodes {
		fmt.Fprintf(sb, "- %s (%d)\n", n.Label, n.Count)
		for _, child := range n.Children {
			fmt.Fprintf(sb, "  - %s (%d)\n", child.Label, child.Count)
		}
	}
	sb.WriteString("\n")
}

// FormatStatus renders the health payload as markdown.
func FormatStatus(st ServiceStatusOutput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Service status: %s\n\n", st.Status)
	fmt.Fprintf(&sb, "- Index loaded: %t (%d cases)\n", st.DataLoaded, st.TotalCases)
	fmt.Fprintf(&sb, "- Embedding backend: %s (active: %t, dimension %d)\n",
		st.EmbeddingModel, st.ModelLoaded, st.EmbeddingDimension)
	fmt.Fprintf(&sb, "- Version: %s\n", st.Version)
	return sb.String()
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= snippetLimit {
		return s
	}
	return string(runes[:snippetLimit]) + "…"
}
