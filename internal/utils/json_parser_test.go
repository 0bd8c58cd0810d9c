package utils

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseAIJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]interface{}
		wantErr bool
	}{
		{
			name:  "pure JSON",
			input: `{"intent": "events_in_cities", "confidence": 0.9}`,
			want: map[string]interface{}{
				"intent":     "events_in_cities",
				"confidence": 0.9,
			},
		},
		{
			name:  "JSON in markdown code block",
			input: "```json\n" + `{"status": "OK"}` + "\n```",
			want:  map[string]interface{}{"status": "OK"},
		},
		{
			name:  "JSON in bare code block",
			input: "```\n" + `{"status": "OK"}` + "\n```",
			want:  map[string]interface{}{"status": "OK"},
		},
		{
			name:  "JSON with surrounding prose",
			input: `Here is the result: {"status": "OK", "count": 5} hope that helps!`,
			want: map[string]interface{}{
				"status": "OK",
				"count":  float64(5),
			},
		},
		{
			name:  "trailing comma",
			input: `{"city": "Brussels",}`,
			want:  map[string]interface{}{"city": "Brussels"},
		},
		{
			name:  "unquoted keys",
			input: `{intent: "unclear"}`,
			want:  map[string]interface{}{"intent": "unclear"},
		},
		{
			name:  "nested braces inside strings",
			input: `{"message": "use {braces} freely", "ok": true}`,
			want: map[string]interface{}{
				"message": "use {braces} freely",
				"ok":      true,
			},
		},
		{
			name:  "byte order mark prefix",
			input: "\ufeff" + `{"status": "OK",}`,
			want:  map[string]interface{}{"status": "OK"},
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			input:   "   \n\t",
			wantErr: true,
		},
		{
			name:    "no JSON at all",
			input:   "I could not produce a structured answer.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]interface{}
			err := ParseAIJSON(tt.input, &got)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parsed JSON mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseAIJSONIntoStruct(t *testing.T) {
	var out struct {
		Intent     string   `json:"intent"`
		Cities     []string `json:"cities"`
		Confidence float64  `json:"confidence"`
	}

	input := "The classification is:\n```json\n" +
		`{"intent": "events_in_cities", "cities": ["Brussels", "Antwerp"], "confidence": 0.85}` +
		"\n```"

	if err := ParseAIJSON(input, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Intent != "events_in_cities" {
		t.Errorf("intent = %q, want events_in_cities", out.Intent)
	}
	if diff := cmp.Diff([]string{"Brussels", "Antwerp"}, out.Cities); diff != "" {
		t.Errorf("cities mismatch (-want +got):\n%s", diff)
	}
}
