package services

import (
	"fmt"
	"strings"
	"text/template"

	"study-gen/internal/models"
)

const unspecifiedValue = "unspecified"

// PromptData is the value the prompt template is executed against.
type PromptData struct {
	School      string
	Grade       string
	Subject     string
	Topic       string
	Format      string
	NotesPages  string
	PapersPages string
	Model       string
}

// PromptRenderer renders the study prompt from a request.
type PromptRenderer struct {
	tmpl *template.Template
}

// NewPromptRenderer parses the template and checks that it uses the model and
// every request field, so a misconfigured profile fails at startup rather than
// per request.
func NewPromptRenderer(text string) (*PromptRenderer, error) {
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	r := &PromptRenderer{tmpl: tmpl}

	probe := PromptData{
		School:      "__school__",
		Grade:       "__grade__",
		Subject:     "__subject__",
		Topic:       "__topic__",
		Format:      "__format__",
		NotesPages:  "__notes_pages__",
		PapersPages: "__papers_pages__",
		Model:       "__model__",
	}
	out, err := r.execute(probe)
	if err != nil {
		return nil, fmt.Errorf("execute prompt template: %w", err)
	}
	var missing []string
	for _, v := range []string{probe.School, probe.Grade, probe.Subject, probe.Topic, probe.Format, probe.NotesPages, probe.PapersPages, probe.Model} {
		if !strings.Contains(out, v) {
			missing = append(missing, strings.Trim(v, "_"))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("prompt template does not reference: %s", strings.Join(missing, ", "))
	}
	return r, nil
}

// Render builds the prompt for req. Field values are inserted as given apart
// from surrounding whitespace; blank fields are rendered as "unspecified".
func (r *PromptRenderer) Render(req models.StudyRequest, model string) (string, error) {
	data := PromptData{
		School:      promptValue(req.School),
		Grade:       promptValue(req.Grade.String()),
		Subject:     promptValue(req.Subject),
		Topic:       promptValue(req.Topic),
		Format:      promptValue(req.Format),
		NotesPages:  promptValue(req.NotesPages.String()),
		PapersPages: promptValue(req.PapersPages.String()),
		Model:       model,
	}
	return r.execute(data)
}

func (r *PromptRenderer) execute(data PromptData) (string, error) {
	var b strings.Builder
	if err := r.tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func promptValue(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return unspecifiedValue
	}
	return v
}
