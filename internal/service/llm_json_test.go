package service

import "testing"

func TestCleanLLMJSONResponseStripsFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"whitespace", "  \n{\"a\": 1}\n  ", `{"a": 1}`},
		{"byte order mark", "\uFEFF{\"a\": 1}", `{"a": 1}`},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		if got := cleanLLMJSONResponse(tc.in); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestExtractFirstJSONObject(t *testing.T) {
	in := `Here you go: {"recommended_film_ids": ["a", "b"]} hope it helps`
	want := `{"recommended_film_ids": ["a", "b"]}`
	if got := extractFirstJSONObject(in); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExtractFirstJSONObjectNested(t *testing.T) {
	in := `{"outer": {"inner": "}"}} trailing {"second": 1}`
	want := `{"outer": {"inner": "}"}}`
	if got := extractFirstJSONObject(in); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExtractFirstJSONObjectHandlesEscapes(t *testing.T) {
	in := `{"quote": "she said \"{\" loudly"}`
	if got := extractFirstJSONObject(in); got != in {
		t.Fatalf("expected %q, got %q", in, got)
	}
}

func TestExtractFirstJSONObjectNoObject(t *testing.T) {
	if got := extractFirstJSONObject("no json here"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
	if got := extractFirstJSONObject(`{"unclosed": 1`); got != "" {
		t.Fatalf("expected empty string for unbalanced object, got %q", got)
	}
}
