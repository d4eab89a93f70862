package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/auth/credentials"
	"google.golang.org/genai"

	creds "github.com/nguyentantai21042004/media-flow/internal/credentials"
	"github.com/nguyentantai21042004/media-flow/internal/logger"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("empty response from Gemini")

// generator is the part of genai.Models used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type implSummarizer struct {
	models generator
	model  string
	logger logger.Logger
}

// Connect picks the Vertex AI backend when a project is known, and the
// Gemini API backend with an API key otherwise.
func (c *implConnector) Connect(ctx context.Context, secret creds.Secret, project creds.Project) (Summarizer, error) {
	cc := &genai.ClientConfig{}

	switch {
	case secret.APIKey != "":
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = secret.APIKey
	case project.ID != "":
		cc.Backend = genai.BackendVertexAI
		cc.Project = project.ID
		cc.Location = project.Region

		if len(secret.ServiceAccountJSON) > 0 {
			authCreds, err := credentials.DetectDefault(&credentials.DetectOptions{
				Scopes:          []string{cloudPlatformScope},
				CredentialsJSON: secret.ServiceAccountJSON,
			})
			if err != nil {
				return nil, fmt.Errorf("load service account: %w", err)
			}
			cc.Credentials = authCreds
		}
	default:
		return nil, errors.New("no api key or project configured")
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	c.logger.Debug(ctx, "Gemini client ready (backend=%v, model=%s)", cc.Backend, c.model)
	return newSummarizer(client.Models, c.model, c.logger), nil
}

func newSummarizer(models generator, model string, log logger.Logger) *implSummarizer {
	return &implSummarizer{
		models: models,
		model:  model,
		logger: log,
	}
}

// Summarize sends the prompt once. Failures are returned as is, without retry.
func (s *implSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	result, err := s.models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := responseText(result)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}

	s.logger.Info(ctx, "Gemini returned %d chars in %s", len(text), time.Since(start).Round(time.Millisecond))
	return text, nil
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
