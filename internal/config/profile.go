package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"study-gen/internal/models"
)

const (
	ProfileClassic  = "classic"
	ProfileFrontend = "frontend"
)

// Profile parameterizes the study request handler. The two built-in profiles
// correspond to the two deployed frontends; operators can supply their own as YAML.
type Profile struct {
	Name                           string   `yaml:"name"`
	PromptTemplate                 string   `yaml:"prompt_template"`
	Model                          string   `yaml:"model"`      // empty: provider default
	MaxTokens                      int      `yaml:"max_tokens"` // default: 2000
	StrictValidation               bool     `yaml:"strict_validation"`
	ResponseStyle                  string   `yaml:"response_style"` // "flag" or "message"
	MonitorRecipients              []string `yaml:"monitor_recipients"`
	BodyFormat                     string   `yaml:"body_format"` // "text" or "html"
	ReturnContentOnDeliveryFailure bool     `yaml:"return_content_on_delivery_failure"`
}

const classicPrompt = `
You are an educational assistant ({{.Model}}).

A student from {{.School}}, Grade {{.Grade}}, has requested help with:
- Subject: {{.Subject}}
- Topic: {{.Topic}}
- Question format: {{.Format}}
- Number of pages: {{.NotesPages}} for notes, {{.PapersPages}} for questions.

Please:
1. Generate clear, well-structured study notes (suitable for Grade {{.Grade}}) in about {{.NotesPages}} pages.
2. Generate {{.PapersPages}} pages of questions in the formats specified.

Make it concise, helpful, and student-friendly.
`

const frontendPrompt = `
Create study material for a Grade {{.Grade}} student at {{.School}}.

Subject: {{.Subject}}
Topic: {{.Topic}}

Section 1 - Study Notes: write about {{.NotesPages}} page(s) of structured notes covering the key ideas of {{.Topic}}.
Section 2 - Practice Paper: write about {{.PapersPages}} page(s) of practice questions using these formats: {{.Format}}. Put the answers at the end.

Match the difficulty of both sections to Grade {{.Grade}}.
Model: {{.Model}}
`

// BuiltinProfile returns one of the shipped profiles by name.
func BuiltinProfile(name string) (Profile, bool) {
	switch name {
	case ProfileClassic:
		return Profile{
			Name:             ProfileClassic,
			PromptTemplate:   classicPrompt,
			MaxTokens:        DefaultMaxTokens,
			StrictValidation: true,
			ResponseStyle:    models.ResponseStyleFlag,
			BodyFormat:       models.BodyFormatText,
		}, true
	case ProfileFrontend:
		return Profile{
			Name:             ProfileFrontend,
			PromptTemplate:   frontendPrompt,
			MaxTokens:        DefaultMaxTokens,
			StrictValidation: true,
			ResponseStyle:    models.ResponseStyleMessage,
			BodyFormat:       models.BodyFormatHTML,
		}, true
	}
	return Profile{}, false
}

// LoadProfile resolves a built-in profile name or reads a YAML profile file.
// Fields missing from the file are taken from the classic profile.
func LoadProfile(nameOrPath string) (Profile, error) {
	if p, ok := BuiltinProfile(nameOrPath); ok {
		return p, nil
	}

	data, err := os.ReadFile(nameOrPath)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile %s: %w", nameOrPath, err)
	}

	p, _ := BuiltinProfile(ProfileClassic)
	p.Name = nameOrPath
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", nameOrPath, err)
	}
	return p, nil
}
