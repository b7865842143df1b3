package openai

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			"bare object",
			`{"member_id":"u2"}`,
			`{"member_id":"u2"}`,
		},
		{
			"markdown fence",
			"```json\n{\"member_id\":\"u2\"}\n```",
			`{"member_id":"u2"}`,
		},
		{
			"prose around object",
			`Sure! Here is my pick: {"member_id":"u2","reason":"same position"} Hope that helps.`,
			`{"member_id":"u2","reason":"same position"}`,
		},
		{
			"nested braces",
			`{"outer":{"inner":1}}`,
			`{"outer":{"inner":1}}`,
		},
		{
			"brace inside string",
			`{"reason":"covers the {morning} shift"}`,
			`{"reason":"covers the {morning} shift"}`,
		},
		{
			"no json",
			"I cannot decide.",
			"",
		},
		{
			"unterminated object",
			`{"member_id":"u2"`,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.content); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestRenderTemplate(t *testing.T) {
	got, err := renderTemplate("Shift on {{.Date}} for {{.UserName}}", promptData{
		Date:     "2025-03-10",
		UserName: "Ana",
	})
	if err != nil {
		t.Fatalf("renderTemplate() error = %v", err)
	}
	if got != "Shift on 2025-03-10 for Ana" {
		t.Errorf("renderTemplate() = %q", got)
	}

	if _, err := renderTemplate("{{.Broken", nil); err == nil {
		t.Error("expected error for malformed template")
	}
}
