package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// jsonResult serializes v as the tool's text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// requireID reads a required uuid argument.
func requireID(request mcp.CallToolRequest, name string) (uuid.UUID, *mcp.CallToolResult) {
	raw, err := request.RequireString(name)
	if err != nil || raw == "" {
		return uuid.Nil, mcp.NewToolResultError(fmt.Sprintf("'%s' parameter is required and must be a non-empty string.", name))
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError(fmt.Sprintf("'%s' is not a valid UUID: %v", name, err))
	}
	return id, nil
}

// optionalID reads an optional uuid argument; an absent or empty value is nil.
func optionalID(request mcp.CallToolRequest, name string) (*uuid.UUID, *mcp.CallToolResult) {
	raw := request.GetString(name, "")
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("'%s' is not a valid UUID: %v", name, err))
	}
	return &id, nil
}

// optionalFloat reads a numeric argument that may be absent. An explicit null
// counts as absent.
func optionalFloat(request mcp.CallToolRequest, name string) *float64 {
	if v, ok := request.GetArguments()[name]; !ok || v == nil {
		return nil
	}
	v := request.GetFloat(name, 0)
	return &v
}

// optionalString reads a string argument that may be absent.
func optionalString(request mcp.CallToolRequest, name string) *string {
	v := request.GetString(name, "")
	if v == "" {
		return nil
	}
	return &v
}

// splitList turns "a, b" into ["a", "b"], dropping empty items.
func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
