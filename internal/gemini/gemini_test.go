package gemini

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dgnsrekt/envoy/internal/briefing"
	"google.golang.org/genai"
)

type fakeModels struct {
	resp *genai.GenerateContentResponse
	err  error

	models  []string
	prompts []string
	configs []*genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.models = append(f.models, model)
	f.configs = append(f.configs, config)
	var b strings.Builder
	for _, c := range contents {
		for _, p := range c.Parts {
			b.WriteString(p.Text)
		}
	}
	f.prompts = append(f.prompts, b.String())
	return f.resp, f.err
}

func textResponse(text string, chunks ...*genai.GroundingChunk) *genai.GenerateContentResponse {
	cand := &genai.Candidate{
		Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
	}
	if len(chunks) > 0 {
		cand.GroundingMetadata = &genai.GroundingMetadata{GroundingChunks: chunks}
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{cand}}
}

func web(title, uri string) *genai.GroundingChunk {
	return &genai.GroundingChunk{Web: &genai.GroundingChunkWeb{Title: title, URI: uri}}
}

var testRequest = briefing.Request{Country: "Brazil", Topic: "Climate finance"}

func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		name    string
		req     briefing.Request
		want    []string
		notWant []string
	}{
		{
			name:    "standard",
			req:     testRequest,
			want:    []string{"Country: Brazil", `"Climate finance"`, "### Country's Stance", "### Recent Actions and Statements", "formal tone"},
			notWant: []string{"Historical Background", "150 words"},
		},
		{
			name: "concise",
			req:  briefing.Request{Country: "Brazil", Topic: "Climate finance", Detail: briefing.Concise},
			want: []string{"150 words"},
		},
		{
			name: "detailed with history",
			req:  briefing.Request{Country: "Brazil", Topic: "Climate finance", Detail: briefing.Detailed, IncludeHistory: true},
			want: []string{"exhaustive", "### Relevant Historical Background"},
		},
		{
			name: "trims input",
			req:  briefing.Request{Country: "  Chad ", Topic: " Water  "},
			want: []string{"Country: Chad\n", `"Water"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildPrompt(tt.req)
			for _, s := range tt.want {
				if !strings.Contains(got, s) {
					t.Errorf("prompt missing %q", s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(got, s) {
					t.Errorf("prompt should not contain %q", s)
				}
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	fake := &fakeModels{resp: textResponse("  ### Country's Stance\nBrazil supports it.\n",
		web("UN", "https://un.org"),
		web("", "https://example.com"),
		web("UN again", "https://un.org"),
		&genai.GroundingChunk{},
	)}
	c := newClient(Config{Grounding: true}, fake)

	got, err := c.Generate(context.Background(), testRequest)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got.Summary != "### Country's Stance\nBrazil supports it." {
		t.Errorf("Summary = %q", got.Summary)
	}
	if got.Detail != briefing.Standard {
		t.Errorf("Detail = %q, want standard", got.Detail)
	}
	want := []briefing.Source{
		{Title: "UN", URI: "https://un.org"},
		{Title: "https://example.com", URI: "https://example.com"},
	}
	if len(got.Sources) != len(want) {
		t.Fatalf("Sources = %v, want %v", got.Sources, want)
	}
	for i := range want {
		if got.Sources[i] != want[i] {
			t.Errorf("Sources[%d] = %v, want %v", i, got.Sources[i], want[i])
		}
	}
	if fake.models[0] != DefaultModel {
		t.Errorf("model = %q, want %q", fake.models[0], DefaultModel)
	}
	if len(fake.configs[0].Tools) != 1 || fake.configs[0].Tools[0].GoogleSearch == nil {
		t.Error("expected the Google Search tool")
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		req  briefing.Request
		resp *genai.GenerateContentResponse
		err  error
		want error
	}{
		{name: "missing topic", req: briefing.Request{Country: "Peru"}, want: briefing.ErrMissingInput},
		{name: "bad key", req: testRequest, err: errors.New("Error 400: API key not valid. Please pass a valid API key."), want: ErrInvalidAPIKey},
		{name: "network", req: testRequest, err: errors.New("dial tcp: lookup generativelanguage.googleapis.com: no such host"), want: ErrNetwork},
		{name: "other", req: testRequest, err: errors.New("Error 503: overloaded"), want: ErrUnavailable},
		{name: "cancelled", req: testRequest, err: context.Canceled, want: context.Canceled},
		{name: "empty", req: testRequest, resp: textResponse("   "), want: ErrEmptyResponse},
		{name: "no candidates", req: testRequest, resp: &genai.GenerateContentResponse{}, want: ErrEmptyResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(Config{}, &fakeModels{resp: tt.resp, err: tt.err})
			_, err := c.Generate(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Generate() error = %v, want %v", err, tt.want)
			}
			if tt.err != nil && tt.err != tt.want && !errors.Is(err, tt.err) {
				t.Errorf("cause %v not wrapped", tt.err)
			}
		})
	}
}

func TestSynthesize(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	fake := &fakeModels{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{
			{Text: "ignored"},
			{InlineData: &genai.Blob{MIMEType: "audio/L16;rate=24000", Data: pcm}},
		}},
	}}}}
	c := newClient(Config{Voice: "Puck"}, fake)

	got, err := c.Synthesize(context.Background(), "Hello delegates")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !bytes.Equal(got, pcm) {
		t.Errorf("Synthesize() = %v, want %v", got, pcm)
	}
	if fake.models[0] != DefaultSpeechModel {
		t.Errorf("model = %q", fake.models[0])
	}
	if fake.prompts[0] != "Hello delegates" {
		t.Errorf("text = %q", fake.prompts[0])
	}
	cfg := fake.configs[0]
	if len(cfg.ResponseModalities) != 1 || cfg.ResponseModalities[0] != "AUDIO" {
		t.Errorf("modalities = %v", cfg.ResponseModalities)
	}
	if v := cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName; v != "Puck" {
		t.Errorf("voice = %q, want Puck", v)
	}
}

func TestSynthesizeErrors(t *testing.T) {
	t.Run("no audio", func(t *testing.T) {
		c := newClient(Config{}, &fakeModels{resp: textResponse("sorry")})
		if _, err := c.Synthesize(context.Background(), "hi"); !errors.Is(err, ErrNoAudio) {
			t.Fatalf("error = %v, want ErrNoAudio", err)
		}
	})

	t.Run("api failure", func(t *testing.T) {
		c := newClient(Config{}, &fakeModels{err: errors.New("fetch failed")})
		if _, err := c.Synthesize(context.Background(), "hi"); !errors.Is(err, ErrNetwork) {
			t.Fatalf("error = %v, want ErrNetwork", err)
		}
	})

	t.Run("cancelled while waiting for quota", func(t *testing.T) {
		fake := &fakeModels{resp: textResponse("x")}
		c := newClient(Config{SpeechRequestsPerMinute: 1}, fake)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := c.Synthesize(ctx, "hi"); err == nil {
			t.Fatal("expected an error")
		}
		if len(fake.models) != 0 {
			t.Error("request sent despite cancelled context")
		}
	})
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(context.Background(), Config{}); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("New() error = %v, want ErrNoAPIKey", err)
	}
}
