package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/rogo/internal/models"
)

// formatAnswer formats an assistant message with its citations as markdown
func formatAnswer(msg *models.ChatMessage) string {
	var sb strings.Builder
	sb.WriteString(msg.Content)
	sb.WriteString("\n")

	if len(msg.Sources) > 0 {
		sb.WriteString("\n## Sources\n\n")
		for i, source := range msg.Sources {
			sb.WriteString(fmt.Sprintf("### %d. %s (relevance %.2f)\n", i+1, source.DocumentName, source.RelevanceScore))
			for _, excerpt := range source.Excerpts {
				sb.WriteString(fmt.Sprintf("> %s\n\n", excerpt))
			}
		}
	}

	sb.WriteString(fmt.Sprintf("\n---\n_Session: %s_\n", msg.SessionID))
	return sb.String()
}

// formatDocumentList formats document records as a markdown table
func formatDocumentList(docs []*models.Document) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Documents (%d)\n\n", len(docs)))

	if len(docs) == 0 {
		sb.WriteString("No documents found.\n")
		return sb.String()
	}

	sb.WriteString("| ID | Name | Status | Selected | Chunks | Uploaded |\n")
	sb.WriteString("|----|------|--------|----------|--------|----------|\n")
	for _, doc := range docs {
		selected := ""
		if doc.Selected {
			selected = "yes"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d | %s |\n",
			doc.ID, doc.Name, doc.Status, selected, doc.ChunkCount,
			doc.UploadedAt.Format(time.RFC3339)))
	}

	return sb.String()
}

// formatDocument formats a single document record as markdown
func formatDocument(doc *models.Document) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", doc.Name))
	sb.WriteString(fmt.Sprintf("**ID:** %s\n", doc.ID))
	sb.WriteString(fmt.Sprintf("**Type:** %s\n", doc.MediaType))
	sb.WriteString(fmt.Sprintf("**Size:** %d bytes\n", doc.Size))
	sb.WriteString(fmt.Sprintf("**Status:** %s\n", doc.Status))
	if doc.StatusReason != "" {
		sb.WriteString(fmt.Sprintf("**Status reason:** %s\n", doc.StatusReason))
	}
	sb.WriteString(fmt.Sprintf("**Selected:** %t\n", doc.Selected))
	sb.WriteString(fmt.Sprintf("**Chunks:** %d\n", doc.ChunkCount))
	sb.WriteString(fmt.Sprintf("**Uploaded:** %s\n", doc.UploadedAt.Format(time.RFC3339)))

	return sb.String()
}
