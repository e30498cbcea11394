package factcheck

var explanations = map[Label]string{
	LabelTrue:       "This content appears to be factually accurate based on our analysis. The information aligns with verified sources and contains credible information patterns.",
	LabelFalse:      "This content appears to contain false information based on our analysis. The text shows patterns consistent with known misinformation and lacks credible source indicators.",
	LabelMisleading: "This content contains some accurate information but presents it in a potentially misleading way. The context or framing may lead to misinterpretation.",
	LabelUnverified: "We cannot confidently verify this information at this time. The content contains insufficient context or verification signals.",
}

// Explain returns the canned rationale for a label. Unknown labels get the
// unverified text.
func Explain(label Label) string {
	if text, ok := explanations[label]; ok {
		return text
	}
	return explanations[LabelUnverified]
}
