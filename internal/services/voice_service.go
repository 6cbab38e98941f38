package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finboard/internal/core"
	"finboard/internal/log"
)

// MinVoiceConfidence is the extraction confidence below which nothing is stored.
const MinVoiceConfidence = 0.6

// ErrUnreadableCandidate is returned by an Extractor whose model answer
// could not be decoded.
var ErrUnreadableCandidate = errors.New("unreadable transaction candidate")

// VoiceCandidate is what the language model read out of a transcript.
type VoiceCandidate struct {
	Amount          core.Money
	Description     string
	TransactionType core.TransactionType
	Category        string
	Confidence      float64
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

type Extractor interface {
	Extract(ctx context.Context, transcript string) (VoiceCandidate, error)
}

// VoiceTransaction is the short view of the stored transaction.
type VoiceTransaction struct {
	ID          int64                `json:"id"`
	Amount      core.Money           `json:"amount"`
	Description string               `json:"description"`
	Type        core.TransactionType `json:"type"`
	Category    string               `json:"category"`
	Account     string               `json:"account"`
	Date        core.Date            `json:"date"`
}

// VoiceResult is always returned, successful or not; collaborator errors
// become a message rather than an error.
type VoiceResult struct {
	Success      bool              `json:"success"`
	Message      string            `json:"message"`
	Transcript   string            `json:"transcript,omitempty"`
	Confidence   *float64          `json:"confidence,omitempty"`
	Transaction  *VoiceTransaction `json:"transaction,omitempty"`
	BudgetAlert  bool              `json:"budget_alert"`
	BudgetAlerts []string          `json:"budget_alerts,omitempty"`
}

var voiceSuggestions = []string{
	"I spent $15 on lunch at McDonald's",
	"Paid $50 for gas at Shell station",
	"Received $2500 salary from work",
	"Bought groceries for $120 at Walmart",
	"Paid $35 for Netflix and Spotify subscriptions",
	"Got $25 cash back from return at Target",
	"Spent $8 on coffee at Starbucks",
	"Paid $150 for electric bill",
	"Earned $300 from freelance project",
	"Bought clothes for $80 at the mall",
}

// VoiceSuggestions returns example phrases for the voice assistant.
func VoiceSuggestions() []string {
	return append([]string(nil), voiceSuggestions...)
}

// VoiceService turns a spoken sentence into a ledger transaction.
type VoiceService struct {
	transcriber  Transcriber
	extractor    Extractor
	store        Store
	transactions *TransactionService
	now          func() time.Time
}

func NewVoiceService(transcriber Transcriber, extractor Extractor, store Store, transactions *TransactionService) *VoiceService {
	return &VoiceService{
		transcriber:  transcriber,
		extractor:    extractor,
		store:        store,
		transactions: transactions,
		now:          time.Now,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *VoiceService) WithClock(now func() time.Time) *VoiceService {
	s.now = now
	return s
}

func (s *VoiceService) ProcessAudio(ctx context.Context, user core.User, audio []byte, mimeType string) VoiceResult {
	logger := log.FromContext(ctx).WithComponent(log.ComponentVoice)

	transcript, err := s.transcriber.Transcribe(ctx, audio, mimeType)
	if err != nil {
		logger.ErrorContext(ctx, "Transcription failed", log.FieldUserID, user.ID, log.FieldError, err)
		return VoiceResult{Message: fmt.Sprintf("Error transcribing audio: %v", err)}
	}

	result := s.ProcessTranscript(ctx, user, transcript)
	result.Transcript = transcript
	return result
}

// ProcessTranscript runs extraction and persistence for an already
// transcribed sentence.
func (s *VoiceService) ProcessTranscript(ctx context.Context, user core.User, transcript string) VoiceResult {
	logger := log.FromContext(ctx).WithComponent(log.ComponentVoice)

	candidate, err := s.extractor.Extract(ctx, transcript)
	if err != nil {
		logger.ErrorContext(ctx, "Transaction extraction failed", log.FieldUserID, user.ID, log.FieldError, err)
		if errors.Is(err, ErrUnreadableCandidate) {
			return VoiceResult{Message: "Error processing voice input. Please try again."}
		}
		return VoiceResult{Message: fmt.Sprintf("Error processing transaction: %v", err)}
	}

	confidence := candidate.Confidence
	if confidence < MinVoiceConfidence {
		logger.InfoContext(ctx, "Voice input declined for low confidence",
			log.FieldUserID, user.ID, "confidence", confidence)
		return VoiceResult{
			Message:    "Could not understand the transaction details clearly. Please try again.",
			Confidence: &confidence,
		}
	}

	account, ok, err := s.pickAccount(ctx, user.ID)
	if err != nil {
		return VoiceResult{Message: fmt.Sprintf("Error processing transaction: %v", err)}
	}
	if !ok {
		return VoiceResult{Message: "No active accounts found. Please add an account first."}
	}
	category, err := s.pickCategory(ctx, user.ID, candidate)
	if err != nil {
		return VoiceResult{Message: fmt.Sprintf("Error processing transaction: %v", err)}
	}

	created, err := s.transactions.Create(ctx, user, core.Transaction{
		AccountID:     account.ID,
		CategoryID:    &category.ID,
		Amount:        candidate.Amount,
		Description:   candidate.Description,
		Type:          candidate.TransactionType,
		Date:          core.DateOf(s.now()),
		PaymentMethod: core.VoiceInput,
		Notes:         fmt.Sprintf("Added via voice assistant (confidence: %.1f%%)", confidence*100),
	})
	if err != nil {
		logger.ErrorContext(ctx, "Voice transaction rejected", log.FieldUserID, user.ID, log.FieldError, err)
		return VoiceResult{Message: fmt.Sprintf("Error processing transaction: %v", err)}
	}

	tx := created.Transaction
	return VoiceResult{
		Success: true,
		Message: fmt.Sprintf("Transaction added: %s of $%s for %s", tx.Type, tx.Amount, tx.Description),
		Transaction: &VoiceTransaction{
			ID:          tx.ID,
			Amount:      tx.Amount,
			Description: tx.Description,
			Type:        tx.Type,
			Category:    category.Name,
			Account:     account.Name,
			Date:        tx.Date,
		},
		Confidence:   &confidence,
		BudgetAlert:  len(created.BudgetAlerts) > 0,
		BudgetAlerts: created.BudgetAlerts,
	}
}

// pickAccount prefers the first active checking account over the first
// active account of any type.
func (s *VoiceService) pickAccount(ctx context.Context, userID string) (core.Account, bool, error) {
	accounts, err := s.store.ListAccounts(ctx, userID, true)
	if err != nil || len(accounts) == 0 {
		return core.Account{}, false, err
	}
	for _, a := range accounts {
		if a.Type == core.Checking {
			return a, true, nil
		}
	}
	return accounts[0], true, nil
}

// pickCategory matches the model's category name against the user's and
// the system categories, falling back to the catch-all system category.
func (s *VoiceService) pickCategory(ctx context.Context, userID string, c VoiceCandidate) (core.Category, error) {
	typ := core.CategoryType(c.TransactionType)
	if !typ.IsValid() {
		return core.Category{}, core.ErrInvalidTransactionType
	}
	if c.Category != "" {
		found, err := s.store.FindCategory(ctx, userID, c.Category, typ)
		if err == nil {
			return found, nil
		}
		if !errors.Is(err, core.ErrNotFound) {
			return core.Category{}, err
		}
	}
	fallback := "Other"
	if typ == core.IncomeCategory {
		fallback = "Other Income"
	}
	return s.store.FindSystemCategory(ctx, fallback, typ)
}
