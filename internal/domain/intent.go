package domain

// Intent classifies what the user is asking for in their latest message.
type Intent string

const (
	IntentDestination Intent = "destination_recommendation"
	IntentActivity    Intent = "activity_recommendation"
	IntentPacking     Intent = "packing_recommendation"
	IntentFood        Intent = "food_recommendation"
	IntentUnknown     Intent = "unknown"
)

// ParseIntent maps a raw label to an Intent, falling back to IntentUnknown
// for anything outside the enumeration.
func ParseIntent(s string) Intent {
	switch Intent(s) {
	case IntentDestination, IntentActivity, IntentPacking, IntentFood:
		return Intent(s)
	default:
		return IntentUnknown
	}
}

// IntentClassification is the structured result of the intent classifier.
// It is transient: only the gated Intent is kept on conversation state.
type IntentClassification struct {
	Intent     string  `json:"user_query_intent"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}
