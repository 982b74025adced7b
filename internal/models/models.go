package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexString accepts either a JSON string or a JSON number. Form posts from the
// frontend send grade and page counts as strings, scripted clients send numbers.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// StudyRequest is the form payload posted to /api/generate. It lives for a
// single request and is never stored. Values longer than the max tag are
// rejected, never shortened.
type StudyRequest struct {
	School      string     `json:"school" validate:"required,max=200"`
	Grade       FlexString `json:"grade" validate:"required,max=200"`
	Subject     string     `json:"subject" validate:"required,max=200"`
	Topic       string     `json:"topic" validate:"required,max=200"`
	Format      string     `json:"format" validate:"required,max=200"`
	NotesPages  FlexString `json:"notes_pages" validate:"required,max=200"`
	PapersPages FlexString `json:"papers_pages" validate:"required,max=200"`
	Email       string     `json:"email" validate:"required,max=254"`
}

// Normalize trims surrounding whitespace so that blank values count as missing.
func (r *StudyRequest) Normalize() {
	r.School = strings.TrimSpace(r.School)
	r.Grade = FlexString(strings.TrimSpace(string(r.Grade)))
	r.Subject = strings.TrimSpace(r.Subject)
	r.Topic = strings.TrimSpace(r.Topic)
	r.Format = strings.TrimSpace(r.Format)
	r.NotesPages = FlexString(strings.TrimSpace(string(r.NotesPages)))
	r.PapersPages = FlexString(strings.TrimSpace(string(r.PapersPages)))
	r.Email = strings.TrimSpace(r.Email)
}

// Response styles for a successful /api/generate call.
const (
	ResponseStyleFlag    = "flag"    // {"success":true}
	ResponseStyleMessage = "message" // {"message":"Study material sent to <email>"}
)

// Mail body formats. HTML mail still carries the plain text part.
const (
	BodyFormatText = "text"
	BodyFormatHTML = "html"
)

// ModelConfig selects the model and output budget for one generation call.
type ModelConfig struct {
	Model     string
	MaxTokens int
}

// MailMessage is the outbound email built from a StudyRequest and the
// generated content.
type MailMessage struct {
	From     string
	To       []string
	Bcc      []string
	Subject  string
	TextBody string
	HTMLBody string
}

// StudyResult is what a successful pipeline run reports back to the transport.
type StudyResult struct {
	Recipient string
	Content   string
}
