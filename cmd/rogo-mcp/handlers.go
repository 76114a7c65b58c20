package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/interfaces"
)

// handleAskDocuments implements the ask_documents tool
func handleAskDocuments(chatService interfaces.ChatService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil || question == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: question parameter is required"),
				},
			}, nil
		}

		sessionID := request.GetString("session_id", "")

		msg, err := chatService.Ask(ctx, &interfaces.AskRequest{
			Message:   question,
			SessionID: sessionID,
		})
		if err != nil {
			logger.Error().Err(err).Msg("Ask failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Chat error: %v", err)),
				},
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(formatAnswer(msg)),
			},
		}, nil
	}
}

// handleListDocuments implements the list_documents tool
func handleListDocuments(documents interfaces.DocumentStorage, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		statusFilter := request.GetString("status", "")
		selectedOnly := request.GetBool("selected_only", false)

		docs, err := documents.List()
		if err != nil {
			logger.Error().Err(err).Msg("List failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("List error: %v", err)),
				},
			}, nil
		}

		filtered := docs[:0:0]
		for _, doc := range docs {
			if statusFilter != "" && string(doc.Status) != statusFilter {
				continue
			}
			if selectedOnly && !doc.Selected {
				continue
			}
			filtered = append(filtered, doc)
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(formatDocumentList(filtered)),
			},
		}, nil
	}
}

// handleGetDocument implements the get_document tool
func handleGetDocument(documents interfaces.DocumentStorage, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docID, err := request.RequireString("document_id")
		if err != nil || docID == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: document_id parameter is required"),
				},
			}, nil
		}

		doc, err := documents.Get(docID)
		if err != nil {
			logger.Error().Err(err).Str("doc_id", docID).Msg("Get failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Document not found: %v", err)),
				},
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(formatDocument(doc)),
			},
		}, nil
	}
}
