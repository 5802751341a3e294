package store

// Case is one FAS advertising-violation decision record from cases.json.
// Optional fields are pointers so that absent values survive a JSON round
// trip as null, matching the source dataset.
type Case struct {
	Index             int     `json:"index"`
	DocID             *string `json:"docId"`
	ViolationType     *string `json:"Violation_Type"`
	DocumentDate      *string `json:"document_date"`
	FASDBLink         *string `json:"FASbd_link"`
	FASDivision       *string `json:"FAS_division"`
	ViolationFound    *string `json:"violation_found"`
	DefendantName     *string `json:"defendant_name"`
	DefendantIndustry *string `json:"defendant_industry"`
	AdDescription     *string `json:"ad_description"`
	AdContentCited    *string `json:"ad_content_cited"`
	AdPlatform        *string `json:"ad_platform"`
	ViolationSummary  *string `json:"violation_summary"`
	FASArguments      *string `json:"FAS_arguments"`
	LegalProvisions   *string `json:"legal_provisions"`
	ThematicTags      *string `json:"thematic_tags"`
}

// Text returns the named field's value, or "" when the field is absent
// or the name is not a text field of the record.
func (c *Case) Text(field string) string {
	var p *string
	switch field {
	case "docId":
		p = c.DocID
	case "Violation_Type":
		p = c.ViolationType
	case "document_date":
		p = c.DocumentDate
	case "FASbd_link":
		p = c.FASDBLink
	case "FAS_division":
		p = c.FASDivision
	case "violation_found":
		p = c.ViolationFound
	case "defendant_name":
		p = c.DefendantName
	case "defendant_industry":
		p = c.DefendantIndustry
	case FieldAdDescription:
		p = c.AdDescription
	case FieldAdContentCited:
		p = c.AdContentCited
	case "ad_platform":
		p = c.AdPlatform
	case FieldViolationSummary:
		p = c.ViolationSummary
	case FieldFASArguments:
		p = c.FASArguments
	case FieldLegalProvisions:
		p = c.LegalProvisions
	case "thematic_tags":
		p = c.ThematicTags
	}
	if p == nil {
		return ""
	}
	return *p
}
