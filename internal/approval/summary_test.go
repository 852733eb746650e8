package approval

import "testing"

func TestSummarize_KnownTools(t *testing.T) {
	tests := []struct {
		name  string
		tool  string
		input map[string]any
		want  string
	}{
		{"bash command", "bash", map[string]any{"command": "ls"}, "command: ls"},
		{"read path", "read", map[string]any{"path": "/etc/hosts"}, "path: /etc/hosts"},
		{"write path", "write", map[string]any{"path": "out.txt", "content": "x"}, "path: out.txt"},
		{"edit path", "edit", map[string]any{"path": "main.go"}, "path: main.go"},
		{"missing field", "bash", map[string]any{}, "missing command"},
		{"non-string field", "bash", map[string]any{"command": 42}, "missing command"},
		{"nil input", "read", nil, "missing path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := summarize(tt.tool, tt.input); got != tt.want {
				t.Errorf("summarize(%q, %v) = %q, want %q", tt.tool, tt.input, got, tt.want)
			}
		})
	}
}

func TestSummarize_UnknownTool(t *testing.T) {
	got := summarize("webfetch", map[string]any{"x": 1})
	want := "{\n  \"x\": 1\n}"
	if got != want {
		t.Errorf("summarize(webfetch) = %q, want %q", got, want)
	}
}

func TestSummarize_UnknownTool_StableKeyOrder(t *testing.T) {
	input := map[string]any{"url": "https://example.com", "method": "GET", "body": ""}
	want := "{\n  \"body\": \"\",\n  \"method\": \"GET\",\n  \"url\": \"https://example.com\"\n}"
	if got := summarize("webfetch", input); got != want {
		t.Errorf("summarize() = %q, want keys sorted: %q", got, want)
	}
}
