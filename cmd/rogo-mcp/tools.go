package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createAskDocumentsTool returns the ask_documents tool definition
func createAskDocumentsTool() mcp.Tool {
	return mcp.NewTool("ask_documents",
		mcp.WithDescription("Ask a question answered from the currently selected documents, with per-document source citations"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer from the selected documents"),
		),
		mcp.WithString("session_id",
			mcp.Description("Chat session to continue; a new session is created when omitted"),
		),
	)
}

// createListDocumentsTool returns the list_documents tool definition
func createListDocumentsTool() mcp.Tool {
	return mcp.NewTool("list_documents",
		mcp.WithDescription("List uploaded documents with their ingestion status and selection state"),
		mcp.WithString("status",
			mcp.Description("Filter by status: pending, processing, completed, error"),
		),
		mcp.WithBoolean("selected_only",
			mcp.Description("Only list documents in the current chat selection"),
		),
	)
}

// createGetDocumentTool returns the get_document tool definition
func createGetDocumentTool() mcp.Tool {
	return mcp.NewTool("get_document",
		mcp.WithDescription("Retrieve one document record by its unique ID"),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("Document ID (format: doc_{uuid})"),
		),
	)
}
