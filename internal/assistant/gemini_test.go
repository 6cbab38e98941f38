package assistant

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"

	"finboard/internal/core"
	"finboard/internal/services"
)

type scriptedModel struct {
	answer string
	err    error

	gotContents []*genai.Content
	gotConfig   *genai.GenerateContentConfig
}

func (m *scriptedModel) generate(_ context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	m.gotContents = contents
	m.gotConfig = cfg
	return m.answer, m.err
}

func TestParseCandidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    services.VoiceCandidate
		wantErr bool
	}{
		{
			name: "plain json",
			raw:  `{"amount": 15, "description": "Lunch", "transaction_type": "expense", "category": "Food & Dining", "confidence": 0.92}`,
			want: services.VoiceCandidate{Amount: core.Money{Cents: 1500}, Description: "Lunch",
				TransactionType: core.Expense, Category: "Food & Dining", Confidence: 0.92},
		},
		{
			name: "fenced with prose",
			raw:  "```json\n{\"amount\": 2500.5, \"description\": \" Salary \", \"transaction_type\": \"Income\", \"category\": \"Salary\", \"confidence\": 1}\n```",
			want: services.VoiceCandidate{Amount: core.Money{Cents: 250050}, Description: "Salary",
				TransactionType: core.Income, Category: "Salary", Confidence: 1},
		},
		{
			name: "amount as string",
			raw:  `Here you go: {"amount": "8.00", "description": "Coffee", "transaction_type": "expense", "category": "Food", "confidence": 0.7}`,
			want: services.VoiceCandidate{Amount: core.Money{Cents: 800}, Description: "Coffee",
				TransactionType: core.Expense, Category: "Food", Confidence: 0.7},
		},
		{
			name:    "not json",
			raw:     "I could not understand that.",
			wantErr: true,
		},
		{
			name:    "bad amount",
			raw:     `{"amount": "lots", "confidence": 0.9}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCandidate(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, services.ErrUnreadableCandidate) {
					t.Errorf("parseCandidate() error = %v, want ErrUnreadableCandidate", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCandidate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parseCandidate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGemini_Extract(t *testing.T) {
	m := &scriptedModel{answer: `{"amount": 50, "description": "Gas", "transaction_type": "expense", "category": "Transportation", "confidence": 0.8}`}
	g := &Gemini{model: m}

	got, err := g.Extract(context.Background(), "Paid $50 for gas at Shell station")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Amount.Cents != 5000 || got.Category != "Transportation" {
		t.Errorf("Extract() = %+v", got)
	}
	if m.gotConfig == nil || m.gotConfig.ResponseMIMEType != "application/json" || m.gotConfig.SystemInstruction == nil {
		t.Errorf("Extract() config = %+v, want JSON response with a system instruction", m.gotConfig)
	}
	if len(m.gotContents) != 1 || m.gotContents[0].Parts[0].Text != "Extract transaction details from: Paid $50 for gas at Shell station" {
		t.Errorf("Extract() contents = %+v", m.gotContents)
	}
}

func TestGemini_Transcribe(t *testing.T) {
	m := &scriptedModel{answer: "  I spent $15 on lunch \n"}
	g := &Gemini{model: m}

	got, err := g.Transcribe(context.Background(), []byte{1, 2, 3}, "audio/wav")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if got != "I spent $15 on lunch" {
		t.Errorf("Transcribe() = %q", got)
	}
	parts := m.gotContents[0].Parts
	if len(parts) != 2 || parts[1].InlineData == nil || parts[1].InlineData.MIMEType != "audio/wav" {
		t.Errorf("Transcribe() parts = %+v, want prompt plus inline audio", parts)
	}

	if _, err := g.Transcribe(context.Background(), nil, "audio/wav"); err == nil {
		t.Error("Transcribe(empty) error = nil, want error")
	}

	m.answer = "   "
	if _, err := g.Transcribe(context.Background(), []byte{1}, ""); err == nil {
		t.Error("Transcribe() with blank answer error = nil, want error")
	}
	if got := m.gotContents[0].Parts[1].InlineData.MIMEType; got != "audio/webm" {
		t.Errorf("default mime type = %q, want audio/webm", got)
	}

	m.err = errors.New("boom")
	if _, err := g.Transcribe(context.Background(), []byte{1}, "audio/wav"); err == nil {
		t.Error("Transcribe() model error = nil, want error")
	}
}
