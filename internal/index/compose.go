package index

import (
	"strings"

	"github.com/fascase/fascase/internal/store"
)

// thesisMarker starts the condensed legal thesis inside FAS_arguments;
// thesisEnd starts the verbose legal analysis that follows it.
const (
	thesisMarker = "Ключевой тезис:"
	thesisEnd    = "Юридическое"
	thesisLimit  = 500
)

// extractThesis returns the key thesis from an FAS_arguments text: the
// span between the thesis marker and the legal-analysis header when the
// marker is present, else the first 500 runes.
func extractThesis(args string) string {
	if idx := strings.Index(args, thesisMarker); idx >= 0 {
		rest := args[idx+len(thesisMarker):]
		if end := strings.Index(rest, thesisEnd); end >= 0 {
			rest = rest[:end]
		}
		return strings.TrimSpace(rest)
	}

	runes := []rune(args)
	if len(runes) > thesisLimit {
		return string(runes[:thesisLimit])
	}
	return args
}

// stripProvisionList removes the list punctuation the dataset carries in
// legal_provisions values ("['ч. 7 ст. 24']" style).
func stripProvisionList(legal string) string {
	r := strings.NewReplacer("[", "", "]", "", "'", "")
	return r.Replace(legal)
}

// ComposeDocumentText builds the combined text embedded for first-stage
// retrieval: labeled sections for every populated field, "Нет данных"
// when the record has none of them.
func ComposeDocumentText(c *store.Case) string {
	var parts []string
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, label+": "+value)
		}
	}

	add("Реклама", deref(c.AdContentCited))
	add("Описание рекламы", deref(c.AdDescription))
	add("Нарушение", deref(c.ViolationSummary))
	if args := deref(c.FASArguments); args != "" {
		add("Обоснование ФАС", extractThesis(args))
	}
	if legal := deref(c.LegalProvisions); legal != "" {
		add("Нарушенные статьи", stripProvisionList(legal))
	}
	add("Теги", deref(c.ThematicTags))
	add("Отрасль", deref(c.DefendantIndustry))
	add("Платформа", deref(c.AdPlatform))
	if vt := deref(c.ViolationType); vt != "" {
		if vt == "substance" {
			add("Тип", "нарушение содержания")
		} else {
			add("Тип", "нарушение размещения")
		}
	}

	if len(parts) == 0 {
		return "Нет данных"
	}
	return strings.Join(parts, " ")
}

// FieldText returns the text embedded for one per-field rerank table.
// Absent fields embed as "" (a zero vector).
func FieldText(c *store.Case, field string) string {
	switch field {
	case store.FieldFASArguments:
		if args := deref(c.FASArguments); args != "" {
			return extractThesis(args)
		}
		return ""
	case store.FieldViolationSummary:
		return deref(c.ViolationSummary)
	case store.FieldAdDescription:
		return deref(c.AdDescription)
	default:
		return ""
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
