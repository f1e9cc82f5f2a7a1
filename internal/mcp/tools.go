package mcp

import "github.com/mark3labs/mcp-go/mcp"

var listToolDef = mcp.NewTool("character_list",
	mcp.WithDescription("List stored characters in order, with the id of the current one."),
)

var viewToolDef = mcp.NewTool("character_view",
	mcp.WithDescription("Show the current character sheet: list, read-only display, form inputs and picture preview."),
)

var selectToolDef = mcp.NewTool("character_select",
	mcp.WithDescription("Make a character current. An empty or unknown id clears the selection."),
	mcp.WithString("id", mcp.Description("Character id; empty for no selection")),
)

var submitToolDef = mcp.NewTool("character_submit",
	mcp.WithDescription("Save the form as the current character, or as a new one if none is selected, then select it. "+
		"Numeric fields that are empty or not numbers are left unset. The current picture is kept."),
	mcp.WithString("firstName", mcp.Required(), mcp.Description("First name")),
	mcp.WithString("lastName", mcp.Required(), mcp.Description("Last name")),
	mcp.WithString("age", mcp.Description("Age (integer)")),
	mcp.WithString("height", mcp.Description("Height (decimal)")),
	mcp.WithString("weight", mcp.Description("Weight (decimal)")),
	mcp.WithString("str", mcp.Description("Strength")),
	mcp.WithString("dex", mcp.Description("Dexterity")),
	mcp.WithString("con", mcp.Description("Constitution")),
	mcp.WithString("int", mcp.Description("Intelligence")),
	mcp.WithString("wis", mcp.Description("Wisdom")),
	mcp.WithString("cha", mcp.Description("Charisma")),
)

var deleteToolDef = mcp.NewTool("character_delete",
	mcp.WithDescription("Delete the current character. Without confirm=true, returns the confirmation prompt and deletes nothing."),
	mcp.WithBoolean("confirm", mcp.Description("Set to true to confirm the deletion")),
)

var clearToolDef = mcp.NewTool("character_clear",
	mcp.WithDescription("Blank the form inputs and picture preview. The selection and stored characters are unchanged."),
)

var uploadImageToolDef = mcp.NewTool("character_upload_image",
	mcp.WithDescription("Attach a picture to the current character, or to a new unnamed one if none is selected. "+
		"Unnamed characters are kept in memory until character_submit supplies both names."),
	mcp.WithString("data", mcp.Required(), mcp.Description("Image bytes as base64 or a data: URL")),
	mcp.WithString("filename", mcp.Description("Original file name")),
)

var exportToolDef = mcp.NewTool("character_export",
	mcp.WithDescription("Export all stored characters to a JSONL file."),
	mcp.WithString("path", mcp.Description("Output .jsonl path; defaults to the exports directory")),
)
