package gemini

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/envoy/internal/briefing"
	"google.golang.org/genai"
)

// Generate asks the model for a briefing.
func (c *Client) Generate(ctx context.Context, req briefing.Request) (briefing.Briefing, error) {
	if err := req.Validate(); err != nil {
		return briefing.Briefing{}, err
	}
	req.Detail, _ = briefing.ParseDetailLevel(string(req.Detail))

	config := &genai.GenerateContentConfig{}
	if c.cfg.Grounding {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	log.Debug("Generating briefing", "model", c.cfg.Model, "country", req.Country, "detail", req.Detail)
	resp, err := c.models.GenerateContent(ctx, c.cfg.Model, genai.Text(BuildPrompt(req)), config)
	if err != nil {
		log.Error("Error generating summary with Gemini API", "err", err)
		return briefing.Briefing{}, classify(err)
	}

	summary := strings.TrimSpace(responseText(resp))
	if summary == "" {
		return briefing.Briefing{}, ErrEmptyResponse
	}
	return briefing.Briefing{
		Request: req,
		Summary: summary,
		Sources: responseSources(resp),
	}, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// responseSources lists grounding web pages, deduplicated by URI.
func responseSources(resp *genai.GenerateContentResponse) []briefing.Source {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var sources []briefing.Source
	seen := map[string]bool{}
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true
		title := chunk.Web.Title
		if title == "" {
			title = chunk.Web.URI
		}
		sources = append(sources, briefing.Source{Title: title, URI: chunk.Web.URI})
	}
	return sources
}
