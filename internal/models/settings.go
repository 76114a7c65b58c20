package models

// RagSettings is the process-wide retrieval configuration. Consumers read
// it at the time of use; changing a value never re-chunks existing indices.
type RagSettings struct {
	ChunkSize    int     `json:"chunk_size" validate:"min=100,max=8000"`
	ChunkOverlap int     `json:"chunk_overlap" validate:"min=0,max=500"`
	RetrievalK   int     `json:"retrieval_k" validate:"min=1,max=20"`
	Temperature  float32 `json:"temperature" validate:"min=0,max=2"`
	Model        string  `json:"model" validate:"required"`
}

// DefaultRagSettings returns the settings used until the user saves their own.
func DefaultRagSettings() RagSettings {
	return RagSettings{
		ChunkSize:    1000,
		ChunkOverlap: 200,
		RetrievalK:   4,
		Temperature:  0,
		Model:        "gpt-3.5-turbo-0125",
	}
}
