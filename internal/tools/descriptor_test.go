package tools

import "testing"

func TestParseDescription(t *testing.T) {
	tests := []struct {
		name            string
		raw             string
		wantAgent       string
		wantCategory    string
		wantAuth        bool
		wantDescription string
	}{
		{
			name:            "full header",
			raw:             `{"agent":"product","category":"search"} | Search for products by name`,
			wantAgent:       "product",
			wantCategory:    "search",
			wantDescription: "Search for products by name",
		},
		{
			name:            "requires auth",
			raw:             `{"agent":"order","category":"cart","requires_auth":true}|Add an item to the cart`,
			wantAgent:       "order",
			wantCategory:    "cart",
			wantAuth:        true,
			wantDescription: "Add an item to the cart",
		},
		{
			name:            "whitespace and multiline description",
			raw:             "  {\"agent\":\"product\"}  |  Search products.\nSupports filters.",
			wantAgent:       "product",
			wantDescription: "Search products.\nSupports filters.",
		},
		{
			name:            "no header",
			raw:             "Just a plain description",
			wantAgent:       AgentUnknown,
			wantDescription: "Just a plain description",
		},
		{
			name:            "malformed JSON keeps original verbatim",
			raw:             `{"agent": | broken`,
			wantAgent:       AgentUnknown,
			wantDescription: `{"agent": | broken`,
		},
		{
			name:            "header without agent field",
			raw:             `{"category":"search"} | Find things`,
			wantAgent:       AgentUnknown,
			wantCategory:    "search",
			wantDescription: "Find things",
		},
		{
			name:            "empty description after header",
			raw:             `{"agent":"general"} | `,
			wantAgent:       "general",
			wantDescription: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, description := ParseDescription(tt.raw)
			if meta.Agent != tt.wantAgent {
				t.Errorf("agent = %q, want %q", meta.Agent, tt.wantAgent)
			}
			if meta.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", meta.Category, tt.wantCategory)
			}
			if meta.RequiresAuth != tt.wantAuth {
				t.Errorf("requires_auth = %v, want %v", meta.RequiresAuth, tt.wantAuth)
			}
			if description != tt.wantDescription {
				t.Errorf("description = %q, want %q", description, tt.wantDescription)
			}
		})
	}
}
