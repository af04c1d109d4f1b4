package domain

import "time"

// ChatRequest is one student turn. ThreadID keeps context across turns and
// is generated when absent.
type ChatRequest struct {
	ThreadID string `json:"thread_id,omitempty"`
	Text     string `json:"text"`
}

type ChatResponse struct {
	ThreadID  string           `json:"thread_id"`
	Answer    string           `json:"answer"`
	Retrieval RetrievalContext `json:"retrieval"`
	ImagePath string           `json:"image_path,omitempty"`
	AudioPath string           `json:"audio_path,omitempty"`
}

// QueryExtraction is the structured object the language model returns when
// asked to pull the chemical entity out of a free-form student question.
type QueryExtraction struct {
	SearchQuery string `json:"search_query"`
	IsChemistry bool   `json:"is_chemistry_question"`
}

type ConversationMessage struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
