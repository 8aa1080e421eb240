package api

import (
	"github.com/starford/outliner/internal/models"
	"github.com/starford/outliner/internal/workspace"
)

// WritePageRequest is the request body for replacing a page.
type WritePageRequest struct {
	Content string `json:"content"`
}

// UpdateBlockRequest is the request body for replacing one block.
type UpdateBlockRequest struct {
	Markdown string `json:"markdown"`
}

// RenameRequest is the request body for renaming a page.
type RenameRequest struct {
	NewName string `json:"newName"`
}

// RenameResponse lists the pages rewritten by a rename.
type RenameResponse struct {
	Changed []models.PageID `json:"changed"`
}

// InsertTemplateRequest is the request body for inserting a template.
type InsertTemplateRequest struct {
	Template   string `json:"template"`
	Target     string `json:"target"`
	Kind       string `json:"kind"`
	BlockIndex int    `json:"blockIndex"`
}

// QueryRequest is the request body for rendering one query.
type QueryRequest struct {
	Query string `json:"query"`
}

// PageDetail is the full page response type (aliased from the domain layer).
type PageDetail = workspace.PageDetail

// PageListResponse wraps page listings.
type PageListResponse struct {
	Pages []models.PageMetadata `json:"pages"`
}

// AssetUploadResponse is returned after a successful asset upload.
type AssetUploadResponse struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
	Markdown string `json:"markdown"`
}
