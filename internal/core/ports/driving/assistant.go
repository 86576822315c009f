package driving

import (
	"context"

	"github.com/recallmind/recallmind/internal/core/domain"
)

// AssistantService answers natural-language questions from indexed notes.
type AssistantService interface {
	// Answer embeds the question, retrieves the most relevant chunks and
	// generates a grounded answer with citations. When retrieval yields
	// nothing, the insufficient-context sentinel is returned without a
	// generation call. Generation failures surface as
	// domain.ErrGenerationUnavailable.
	Answer(ctx context.Context, question string) (*domain.Answer, error)
}
