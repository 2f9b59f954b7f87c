package agents

import (
	"context"

	"github.com/google/uuid"
)

// System defines the interface for agent storage and retrieval operations.
// Get fetches for display without an ownership check; GetOwned additionally
// requires the requesting user to be the agent's creator and is the gate for
// every mutation.
type System interface {
	List(ctx context.Context) ([]AgentWithCreator, error)
	ConversationLinks(ctx context.Context, userID uuid.UUID) ([]ConversationLink, error)
	Get(ctx context.Context, id uuid.UUID) (*AgentWithCreator, error)
	GetOwned(ctx context.Context, id, userID uuid.UUID) (*AgentWithCreator, error)
	Create(ctx context.Context, creatorID uuid.UUID, cmd Command) (*Agent, error)
	Update(ctx context.Context, id uuid.UUID, cmd Command) (*Agent, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
