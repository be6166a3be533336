package models

// KnowledgeBaseEntry is one question/answer pair the automated agent can draw on
type KnowledgeBaseEntry struct {
	ID          string   `json:"id"`
	KeyQuestion string   `json:"key_question"`
	Answer      string   `json:"answer"`
	Active      bool     `json:"active"`
	Tags        []string `json:"tags,omitempty"`
}
