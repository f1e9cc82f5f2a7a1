package mcp

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/charsheet/internal/config"
	"github.com/hpungsan/charsheet/internal/errors"
	"github.com/hpungsan/charsheet/internal/manager"
	"github.com/hpungsan/charsheet/internal/transfer"
	"github.com/hpungsan/charsheet/internal/upload"
)

// Deps are the collaborators the tools operate on. View must be the Surface
// Manager renders to; Records must be the Repository it was built on.
type Deps struct {
	Manager *manager.Manager
	View    *manager.StateSurface
	Records transfer.Repository
	Config  *config.Config
	BaseDir string
}

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	deps Deps
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps Deps) *Handlers {
	if deps.Config == nil {
		deps.Config = config.DefaultConfig()
	}
	return &Handlers{deps: deps}
}

// Request types for each tool

// SelectRequest represents the arguments for select.
type SelectRequest struct {
	ID string `json:"id"`
}

// SubmitRequest represents the arguments for submit. Field names match the HTML form.
type SubmitRequest struct {
	FirstName fieldText `json:"firstName"`
	LastName  fieldText `json:"lastName"`
	Age       fieldText `json:"age"`
	Height    fieldText `json:"height"`
	Weight    fieldText `json:"weight"`
	Str       fieldText `json:"str"`
	Dex       fieldText `json:"dex"`
	Con       fieldText `json:"con"`
	Int       fieldText `json:"int"`
	Wis       fieldText `json:"wis"`
	Cha       fieldText `json:"cha"`
}

func (r SubmitRequest) form() manager.FormValues {
	return manager.FormValues{
		FirstName: string(r.FirstName),
		LastName:  string(r.LastName),
		Age:       string(r.Age),
		Height:    string(r.Height),
		Weight:    string(r.Weight),
		Str:       string(r.Str),
		Dex:       string(r.Dex),
		Con:       string(r.Con),
		Int:       string(r.Int),
		Wis:       string(r.Wis),
		Cha:       string(r.Cha),
	}
}

// DeleteRequest represents the arguments for delete.
type DeleteRequest struct {
	Confirm bool `json:"confirm"`
}

// UploadImageRequest represents the arguments for upload_image.
type UploadImageRequest struct {
	Data     string `json:"data"`
	Filename string `json:"filename,omitempty"`
}

// ExportRequest represents the arguments for export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// Response types

// ListItem is one entry of the list result.
type ListItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListResult is the result of list.
type ListResult struct {
	Items     []ListItem `json:"items"`
	CurrentID string     `json:"current_id,omitempty"`
}

// DeleteResult is the result of delete.
type DeleteResult struct {
	Deleted bool   `json:"deleted"`
	Prompt  string `json:"prompt,omitempty"`
	Message string `json:"message,omitempty"`
}

// Handler implementations

// HandleList handles the list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chars := h.deps.Manager.Characters()
	result := ListResult{Items: make([]ListItem, 0, len(chars))}
	for _, c := range chars {
		result.Items = append(result.Items, ListItem{ID: c.ID, Name: c.FullName()})
	}
	if cur, ok := h.deps.Manager.Current(); ok {
		result.CurrentID = cur.ID
	}
	return successResult(result)
}

// HandleView handles the view tool call.
func (h *Handlers) HandleView(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.deps.View.Snapshot())
}

// HandleSelect handles the select tool call.
func (h *Handlers) HandleSelect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SelectRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.deps.Manager.Select(ctx, input.ID)
	return successResult(h.deps.View.Snapshot())
}

// HandleSubmit handles the submit tool call.
func (h *Handlers) HandleSubmit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SubmitRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.deps.Manager.Submit(ctx, input.form())
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDelete handles the delete tool call. The confirmation answers the
// prompt for whichever character is current when the call arrives.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	prompt, ok := h.deps.Manager.DeletePrompt()
	if !ok {
		return successResult(DeleteResult{Message: "no character selected"})
	}
	if !input.Confirm {
		return successResult(DeleteResult{Prompt: prompt, Message: "call again with confirm=true to delete"})
	}

	deleted, err := h.deps.Manager.Delete(manager.WithAnswer(ctx, prompt, true))
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(DeleteResult{Deleted: deleted, Prompt: prompt})
}

// HandleClear handles the clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.deps.Manager.Clear()
	return successResult(h.deps.View.Snapshot())
}

// HandleUploadImage handles the upload_image tool call. It waits for the
// decode to finish so the result reflects the new picture.
func (h *Handlers) HandleUploadImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UploadImageRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	data, err := imageBytes(input.Data)
	if err != nil {
		return errorResult(err), nil
	}
	if limit := h.deps.Config.MaxImageBytes; limit > 0 && int64(len(data)) > limit {
		return errorResult(errors.NewImageTooLarge(limit, int64(len(data)))), nil
	}

	name := input.Filename
	if name == "" {
		name = "upload"
	}
	h.deps.Manager.UploadImage(ctx, upload.NewBytesFile(name, data))
	h.deps.Manager.Wait()

	cur, _ := h.deps.Manager.Current()
	return successResult(map[string]any{
		"id":        cur.ID,
		"persisted": cur.HasName(),
		"view":      h.deps.View.Snapshot(),
	})
}

// HandleExport handles the export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := transfer.Export(ctx, h.deps.Records, h.deps.Config, h.deps.BaseDir, transfer.ExportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// imageBytes accepts a data URL or bare base64.
func imageBytes(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.NewInvalidRequest("data is required")
	}
	if strings.HasPrefix(s, "data:") {
		_, data, err := upload.DecodeDataURL(s)
		return data, err
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.NewInvalidRequest("data must be base64 or a data URL")
	}
	return data, nil
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var sErr *errors.SheetError
	if stderrors.As(err, &sErr) {
		errorObj := map[string]any{
			"code":    sErr.Code,
			"message": sErr.Message,
			"status":  sErr.Status,
		}
		if sErr.Code != errors.ErrInternal && sErr.Details != nil {
			errorObj["details"] = sErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
