package domain

import (
	"encoding/json"
	"testing"
)

func TestAnswerValueDecodesStringsAndLists(t *testing.T) {
	var answers []Answer
	raw := `[
		{"questionId": "1", "question": "Colour?", "answer": "blue"},
		{"questionId": "2", "question": "Pets?", "answer": ["cat", "dog"]},
		{"questionId": "3", "question": "Skipped?", "answer": null}
	]`
	if err := json.Unmarshal([]byte(raw), &answers); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if a := answers[0].Answer; a.IsList() || a.String() != "blue" {
		t.Fatalf("unexpected single answer %+v", a)
	}
	if a := answers[1].Answer; !a.IsList() || a.String() != "cat, dog" {
		t.Fatalf("unexpected list answer %+v", a)
	}
	if !answers[2].Answer.IsEmpty() {
		t.Fatalf("null answer should be empty")
	}

	out, err := json.Marshal(answers[:2])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[{"questionId":"1","question":"Colour?","answer":"blue"},{"questionId":"2","question":"Pets?","answer":["cat","dog"]}]`
	if string(out) != want {
		t.Fatalf("shape not preserved:\n got %s\nwant %s", out, want)
	}
}

func TestAnswerValueRejectsOtherShapes(t *testing.T) {
	var a AnswerValue
	if err := json.Unmarshal([]byte(`42`), &a); err == nil {
		t.Fatalf("expected error for number")
	}
	if err := json.Unmarshal([]byte(`[1, 2]`), &a); err == nil {
		t.Fatalf("expected error for non-string list")
	}
}

func TestAnswerValueHelpers(t *testing.T) {
	list := ListAnswer("a", " ")
	vals := list.Values()
	vals[0] = "changed"
	if list.Values()[0] != "a" {
		t.Fatalf("Values must return a copy")
	}
	if ListAnswer(" ", "").IsEmpty() != true || TextAnswer("x").IsEmpty() {
		t.Fatalf("unexpected IsEmpty results")
	}
	if out, _ := json.Marshal(ListAnswer()); string(out) != "[]" {
		t.Fatalf("empty list should encode as [], got %s", out)
	}
}
