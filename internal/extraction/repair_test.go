package extraction

import (
	"encoding/json"
	"testing"
)

func TestRepairEscapes_ValidJSONUntouched(t *testing.T) {
	inputs := []string{
		`{"questions": [{"question_label": "1", "text": "plain"}]}`,
		`{"text": "quoted \"word\" and newline\n"}`,
		`{"text": "unicode \u00e9 and slash \/ and tab\t"}`,
		`{"path": "C:\\Users\\scan"}`,
	}
	for _, in := range inputs {
		if got := RepairEscapes(in); got != in {
			t.Errorf("valid input modified:\n in: %s\nout: %s", in, got)
		}
	}
}

func TestRepairEscapes_LatexSequences(t *testing.T) {
	in := `{"text": "evaluate \lim_{h \cdot 0} \sqrt{\sin h}"}`

	out := RepairEscapes(in)
	if !json.Valid([]byte(out)) {
		t.Fatalf("repaired output is not valid JSON: %s", out)
	}

	var doc struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("unmarshal repaired output: %v", err)
	}
	want := `evaluate \lim_{h \cdot 0} \sqrt{\sin h}`
	if doc.Text != want {
		t.Errorf("expected %q, got %q", want, doc.Text)
	}
}

func TestRepairEscapes_BackslashOutsideString(t *testing.T) {
	in := `{"a": 1} \x {"b": 2}`
	if got := RepairEscapes(in); got != in {
		t.Errorf("backslash outside string literal modified: %q -> %q", in, got)
	}
}

func TestRepairEscapes_TrailingBackslash(t *testing.T) {
	in := `{"text": "dangling \`
	if got := RepairEscapes(in); got != in {
		t.Errorf("trailing backslash modified: %q -> %q", in, got)
	}
}

func TestRepairEscapes_MixedValidAndInvalid(t *testing.T) {
	in := `{"text": "first line\nthen \alpha"}`
	want := `{"text": "first line\nthen \\alpha"}`

	if got := RepairEscapes(in); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if !json.Valid([]byte(RepairEscapes(in))) {
		t.Error("repaired output is not valid JSON")
	}
}

func TestRepairEscapes_Empty(t *testing.T) {
	if got := RepairEscapes(""); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}
