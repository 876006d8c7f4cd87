package dto

// DocumentPage is one page of extracted text. Uploads may send pages
// instead of a flat content string so chunks keep page provenance.
type DocumentPage struct {
	PageNumber int    `json:"page_number" validate:"min=1"`
	Content    string `json:"content" validate:"required"`
}

type UploadDocumentRequest struct {
	SessionID string         `json:"session_id"`
	Filename  string         `json:"filename" validate:"required"`
	Content   string         `json:"content" validate:"required_without=Pages"`
	Pages     []DocumentPage `json:"pages" validate:"omitempty,dive"`
}

type UploadDocumentResponse struct {
	SessionID  string `json:"session_id"`
	IndexName  string `json:"index_name"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
}

type ClearDocumentsRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

type ClearDocumentsResponse struct {
	SessionID string `json:"session_id"`
	IndexName string `json:"index_name"`
}

type CleanupSessionRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// EmbedChunk is one chunk awaiting embedding. PageNumber is set when
// the upload carried per-page texts.
type EmbedChunk struct {
	Content    string `json:"content"`
	PageNumber *int   `json:"page_number,omitempty"`
}

// PublishEmbedChunksMessage carries a split document to the async
// embedding consumer. Chunk texts travel in the payload because rows
// are only written once their vectors exist.
type PublishEmbedChunksMessage struct {
	SessionID  string       `json:"session_id"`
	IndexName  string       `json:"index_name"`
	Generation int          `json:"generation"`
	Filename   string       `json:"filename"`
	Chunks     []EmbedChunk `json:"chunks"`
}
