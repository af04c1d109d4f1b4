package domain

// NotFoundMessage is the user-facing fallback when nothing in the corpus
// matched. The product surface is Vietnamese.
const NotFoundMessage = "Không tìm thấy thông tin trong cơ sở dữ liệu"

// ScoredResult is a corpus document plus a [0,1] confidence for one query.
// It lives only for the duration of the call that produced it.
type ScoredResult struct {
	ChemDocument
	Score float64 `json:"score"`
}

// PrimaryResult is the full payload of the best match.
type PrimaryResult struct {
	DocID      string       `json:"doc_id"`
	Name       string       `json:"name"`
	Formula    string       `json:"formula"`
	Type       DocumentType `json:"type"`
	ImagePath  string       `json:"image_path,omitempty"`
	AudioPath  string       `json:"audio_path,omitempty"`
	Confidence float64      `json:"confidence"`
}

// RelatedResult is a deliberately trimmed view of a non-primary match.
// Related items are context for a downstream summarizer, not full records.
type RelatedResult struct {
	Name    string       `json:"name"`
	Formula string       `json:"formula"`
	Type    DocumentType `json:"type"`
	Score   float64      `json:"score"`
}

// RetrievalContext is the shaped response handed to the conversational
// layer. "Nothing matched" is a first-class state here, not an error.
type RetrievalContext struct {
	Found        bool            `json:"found"`
	Query        string          `json:"query"`
	Message      string          `json:"message,omitempty"`
	Primary      *PrimaryResult  `json:"primary,omitempty"`
	Related      []RelatedResult `json:"related,omitempty"`
	TotalResults int             `json:"total_results,omitempty"`
}
