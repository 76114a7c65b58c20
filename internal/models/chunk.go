package models

// Segment is a unit of loaded text with its position in the source file.
// Loaders emit one segment per page (PDF), per message part (email) or a
// single segment for flat text formats.
type Segment struct {
	Text string `json:"text"`
	Page int    `json:"page"` // 1-based page or part number, 0 when not applicable
}

// Chunk is a bounded span of a document's text carrying origin metadata.
// Chunks are immutable once produced by the chunker.
type Chunk struct {
	Text       string `json:"text"`
	DocumentID string `json:"document_id"`
	Page       int    `json:"page"`
	Sequence   int    `json:"sequence"` // chunk order within the document
}

// ScoredChunk is a retrieval result: a chunk with its similarity score
// and the name of the owning document for citation assembly.
type ScoredChunk struct {
	Chunk        Chunk   `json:"chunk"`
	DocumentName string  `json:"document_name"`
	Score        float64 `json:"score"`
}
