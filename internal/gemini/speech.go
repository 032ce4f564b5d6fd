package gemini

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"google.golang.org/genai"
)

// Synthesize returns 24 kHz mono s16le speech for text. A failure is
// returned immediately; callers decide whether to give up.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("speech request not sent: %w", err)
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.cfg.Voice},
			},
		},
	}

	resp, err := c.models.GenerateContent(ctx, c.cfg.SpeechModel, genai.Text(text), config)
	if err != nil {
		log.Debug("Speech request failed", "model", c.cfg.SpeechModel, "err", err)
		return nil, classify(err)
	}

	if data := inlineAudio(resp); len(data) > 0 {
		return data, nil
	}
	return nil, ErrNoAudio
}

func inlineAudio(resp *genai.GenerateContentResponse) []byte {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data
		}
	}
	return nil
}
