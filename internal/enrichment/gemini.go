package enrichment

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kartikfr/card-genius/internal/domain"
	"google.golang.org/genai"
)

// GeminiSearcher calls generateContent with the Google Search tool enabled.
type GeminiSearcher struct {
	client *genai.Client
	model  string
}

// NewGeminiSearcher builds a Gemini API client. An empty baseURL uses the
// public endpoint. The key is sent as a request header, never in the URL.
func NewGeminiSearcher(ctx context.Context, httpClient *http.Client, baseURL, model, apiKey string) (*GeminiSearcher, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiSearcher{client: client, model: model}, nil
}

func (g *GeminiSearcher) Search(ctx context.Context, prompt string) (*SearchResult, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	result := &SearchResult{}
	if len(resp.Candidates) == 0 {
		return result, nil
	}

	candidate := resp.Candidates[0]
	if candidate.Content != nil {
		var text strings.Builder
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			text.WriteString(part.Text)
		}
		result.Text = strings.TrimSpace(text.String())
	}

	if candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}
			result.Sources = append(result.Sources, domain.UpdateSource{URI: chunk.Web.URI, Title: chunk.Web.Title})
		}
	}
	return result, nil
}
