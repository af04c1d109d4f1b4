package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chemi-labs/chemtutor/internal/core/domain"
	"github.com/chemi-labs/chemtutor/internal/core/ports"
)

const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

var errEmptyQuestion = errors.New("empty question")

// TutorUseCase runs one student turn: extract the chemical entity from the
// question, retrieve grounding context, generate the answer, persist the
// exchange. Persistence is best effort and never fails the turn.
type TutorUseCase struct {
	searcher      ports.Searcher
	generator     ports.AnswerGenerator
	conversations ports.ConversationStore
	logger        *slog.Logger
}

// NewTutorUseCase accepts a nil conversations store for stateless
// deployments.
func NewTutorUseCase(
	searcher ports.Searcher,
	generator ports.AnswerGenerator,
	conversations ports.ConversationStore,
	logger *slog.Logger,
) *TutorUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &TutorUseCase{
		searcher:      searcher,
		generator:     generator,
		conversations: conversations,
		logger:        logger,
	}
}

func (t *TutorUseCase) Ask(ctx context.Context, request domain.ChatRequest) (domain.ChatResponse, error) {
	question := strings.TrimSpace(request.Text)
	if question == "" {
		return domain.ChatResponse{}, domain.WrapError(domain.ErrInvalidInput, "tutor_ask", errEmptyQuestion)
	}

	threadID := request.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	query := t.resolveSearchQuery(ctx, question)
	retrieval := t.searcher.SearchWithContext(ctx, query)

	answer, err := t.generator.GenerateAnswer(ctx, question, retrieval)
	if err != nil {
		return domain.ChatResponse{}, domain.WrapError(domain.ErrTemporary, "tutor_ask", err)
	}

	t.persistTurn(ctx, threadID, question, answer)

	response := domain.ChatResponse{
		ThreadID:  threadID,
		Answer:    answer,
		Retrieval: retrieval,
	}
	if retrieval.Found && retrieval.Primary != nil {
		response.ImagePath = retrieval.Primary.ImagePath
		response.AudioPath = retrieval.Primary.AudioPath
	}
	return response, nil
}

// History returns the recent turns of a thread in chronological order.
func (t *TutorUseCase) History(ctx context.Context, threadID string, limit int) ([]domain.ConversationMessage, error) {
	if t.conversations == nil {
		return nil, nil
	}
	return t.conversations.ListRecentMessages(ctx, threadID, limit)
}

// resolveSearchQuery asks the model to pull the chemical entity out of the
// question. Extraction failure is not fatal, the raw question still makes a
// workable retrieval query.
func (t *TutorUseCase) resolveSearchQuery(ctx context.Context, question string) string {
	extraction, err := t.generator.ExtractSearchQuery(ctx, question)
	if err != nil {
		t.logger.Warn("query_extraction_failed", "error", err)
		return question
	}
	if !extraction.IsChemistry || strings.TrimSpace(extraction.SearchQuery) == "" {
		return question
	}
	return extraction.SearchQuery
}

func (t *TutorUseCase) persistTurn(ctx context.Context, threadID, question, answer string) {
	if t.conversations == nil {
		return
	}
	// The answer gets a strictly later timestamp so the turn reads back
	// question first from any store that orders by time alone.
	now := time.Now().UTC()
	messages := []domain.ConversationMessage{
		{ID: uuid.NewString(), ThreadID: threadID, Role: roleUser, Content: question, CreatedAt: now},
		{ID: uuid.NewString(), ThreadID: threadID, Role: roleAssistant, Content: answer, CreatedAt: now.Add(time.Microsecond)},
	}
	for _, message := range messages {
		if err := t.conversations.AppendMessage(ctx, message); err != nil {
			t.logger.Warn("conversation_persist_failed", "thread_id", threadID, "role", message.Role, "error", err)
		}
	}
}
