package core

// IntentType is the coarse classification of a user utterance.
type IntentType string

const (
	IntentQuery         IntentType = "query"
	IntentCommand       IntentType = "command"
	IntentClarification IntentType = "clarification"
	IntentConfirmation  IntentType = "confirmation"
	IntentChat          IntentType = "chat"
)

// Intent is the structured interpretation of a single user message.
// It is produced once per message and never mutated afterwards.
type Intent struct {
	Type       IntentType     `json:"type"`
	Action     string         `json:"action,omitempty"`
	Target     string         `json:"target,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Confidence float64        `json:"confidence"`
	RawMessage string         `json:"raw_message"`
}

// Param returns the named parameter, if present.
func (i Intent) Param(name string) (any, bool) {
	if i.Parameters == nil {
		return nil, false
	}
	v, ok := i.Parameters[name]
	return v, ok
}
