package models

import (
	"encoding/json"
	"testing"
)

func TestStudyRequestDecodesStringsAndNumbers(t *testing.T) {
	payload := `{"school":"Acme High","grade":10,"subject":"Math","topic":"Algebra","format":"MCQ","notes_pages":"2","papers_pages":1.5,"email":"student@example.com"}`

	var req StudyRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if req.Grade != "10" {
		t.Errorf("grade = %q, want 10", req.Grade)
	}
	if req.NotesPages != "2" {
		t.Errorf("notes_pages = %q, want 2", req.NotesPages)
	}
	if req.PapersPages != "1.5" {
		t.Errorf("papers_pages = %q, want 1.5", req.PapersPages)
	}
}

func TestFlexStringRejectsOtherTypes(t *testing.T) {
	cases := []string{`true`, `{"a":1}`, `[1]`}
	for _, raw := range cases {
		var f FlexString
		if err := json.Unmarshal([]byte(raw), &f); err == nil {
			t.Errorf("expected error for %s, got value %q", raw, f)
		}
	}
}

func TestFlexStringNull(t *testing.T) {
	req := StudyRequest{Grade: "9"}
	if err := json.Unmarshal([]byte(`{"grade":null}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Grade != "" {
		t.Errorf("grade = %q, want empty", req.Grade)
	}
}

func TestNormalizeTrimsWhitespace(t *testing.T) {
	req := StudyRequest{
		School:     "  Acme High ",
		Grade:      " 9 ",
		Subject:    "\tBiology\n",
		Topic:      "   ",
		NotesPages: " 3",
		Email:      " student@example.com ",
	}
	req.Normalize()

	if req.School != "Acme High" || req.Grade != "9" || req.Subject != "Biology" {
		t.Errorf("unexpected normalized values: %+v", req)
	}
	if req.Topic != "" {
		t.Errorf("blank topic should normalize to empty, got %q", req.Topic)
	}
	if req.Email != "student@example.com" {
		t.Errorf("email = %q", req.Email)
	}
}
