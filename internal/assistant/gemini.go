// Package assistant talks to Gemini to turn spoken sentences into
// transaction candidates for the voice service.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"finboard/internal/core"
	"finboard/internal/services"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

const transcribePrompt = "Transcribe this audio recording word for word in English. " +
	"Return only the transcript text, without quotes or commentary."

const extractInstruction = `You are a financial assistant that extracts transaction details from voice input.

Extract the following information from the user's voice input:
- amount: The monetary amount (as a number, no currency symbols)
- description: A brief description of the transaction
- transaction_type: "expense" or "income"
- category: One of these categories based on the description:
  - Food & Dining (for restaurants, groceries, food delivery)
  - Transportation (for gas, uber, taxi, parking)
  - Shopping (for retail purchases, online shopping)
  - Entertainment (for movies, games, streaming)
  - Bills & Utilities (for rent, electricity, internet)
  - Healthcare (for medical, pharmacy, doctor)
  - Travel (for hotels, flights, vacation)
  - Education (for school, courses, books)
  - Personal Care (for haircuts, beauty, gym)
  - Home & Garden (for home improvement, cleaning)
  - Salary (for income from work)
  - Business (for business income)
  - Investments (for investment returns)
  - Other (if none of the above fit)

Respond with JSON only in this exact format:
{
    "amount": number,
    "description": "string",
    "transaction_type": "expense|income",
    "category": "category_name",
    "confidence": number_between_0_and_1
}

If you cannot extract clear transaction information, set confidence to 0.
Do NOT wrap the response in code fences.`

// model is the single Gemini call the assistant needs. It is an interface
// so tests can script answers.
type model interface {
	generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error)
}

type geminiModel struct {
	client *genai.Client
	name   string
}

func (m geminiModel) generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.name, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

// Gemini implements both services.Transcriber and services.Extractor.
type Gemini struct {
	model model
}

var (
	_ services.Transcriber = (*Gemini)(nil)
	_ services.Extractor   = (*Gemini)(nil)
)

// New creates a Gemini API client. An empty modelName selects DefaultModel.
func New(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{model: geminiModel{client: client, name: modelName}}, nil
}

// Transcribe sends the recording inline and returns the model's transcript.
func (g *Gemini) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("empty audio")
	}
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: transcribePrompt},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: audio}},
		},
	}}

	text, err := g.model.generate(ctx, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("empty transcript from model")
	}
	return text, nil
}

// Extract asks the model for a JSON transaction candidate.
func (g *Gemini) Extract(ctx context.Context, transcript string) (services.VoiceCandidate, error) {
	contents := genai.Text("Extract transaction details from: " + transcript)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(extractInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.1),
	}

	raw, err := g.model.generate(ctx, contents, cfg)
	if err != nil {
		return services.VoiceCandidate{}, err
	}
	return parseCandidate(raw)
}

type candidateJSON struct {
	Amount          core.Money `json:"amount"`
	Description     string     `json:"description"`
	TransactionType string     `json:"transaction_type"`
	Category        string     `json:"category"`
	Confidence      float64    `json:"confidence"`
}

// parseCandidate decodes the model's answer. Anything that is not the
// expected JSON object wraps services.ErrUnreadableCandidate.
func parseCandidate(raw string) (services.VoiceCandidate, error) {
	clean := cleanModelJSON(raw)
	var c candidateJSON
	if err := json.Unmarshal([]byte(clean), &c); err != nil {
		return services.VoiceCandidate{}, fmt.Errorf("%w: %v (raw response: %q)", services.ErrUnreadableCandidate, err, raw)
	}
	return services.VoiceCandidate{
		Amount:          c.Amount,
		Description:     strings.TrimSpace(c.Description),
		TransactionType: core.TransactionType(strings.ToLower(strings.TrimSpace(c.TransactionType))),
		Category:        strings.TrimSpace(c.Category),
		Confidence:      c.Confidence,
	}, nil
}

// cleanModelJSON strips Markdown fences and any text around the JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return s
}
