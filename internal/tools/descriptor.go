// Package tools discovers callable tools from an external capability
// provider, parses the routing metadata embedded in tool descriptions,
// and partitions tools per specialist agent.
package tools

import (
	"encoding/json"
	"regexp"
	"strings"
)

// AgentUnknown is assigned to tools whose description carries no parseable
// metadata header. Such tools are kept, never dropped.
const AgentUnknown = "unknown"

// Meta is the routing metadata embedded at the head of a tool description.
type Meta struct {
	// Agent names the specialist this tool belongs to ("product",
	// "order", ...). AgentUnknown when the header was absent or invalid.
	Agent string `json:"agent"`

	// Category groups tools within an agent ("search", "cart", ...).
	Category string `json:"category"`

	// RequiresAuth marks tools that need the caller's credential.
	RequiresAuth bool `json:"requires_auth"`
}

// Descriptor is one discovered tool: its name, the human-readable
// description with the metadata header stripped, and the parsed metadata.
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Meta        Meta   `json:"meta"`
}

// metaHeaderRe matches the description convention: a JSON object
// (non-greedy), a pipe separator, then the real description (greedy,
// across newlines), with optional whitespace around both.
var metaHeaderRe = regexp.MustCompile(`(?s)^\s*(\{.*?\})\s*\|\s*(.*)$`)

// ParseDescription splits a raw tool description into metadata and clean
// description. A missing or malformed header yields agent "unknown" with
// the original description verbatim; a metadata-parsing failure must
// never cost us a tool.
func ParseDescription(raw string) (Meta, string) {
	unknown := Meta{Agent: AgentUnknown}

	match := metaHeaderRe.FindStringSubmatch(raw)
	if match == nil {
		return unknown, raw
	}

	var meta Meta
	if err := json.Unmarshal([]byte(match[1]), &meta); err != nil {
		return unknown, raw
	}
	if strings.TrimSpace(meta.Agent) == "" {
		meta.Agent = AgentUnknown
	}
	return meta, match[2]
}
