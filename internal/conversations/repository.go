package conversations

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/incontext-app/incontext/pkg/logging"
	"github.com/incontext-app/incontext/pkg/repository"
)

// System defines the interface for conversation storage and retrieval
// operations. GetOwned requires the requesting user to be the creator and
// gates every mutation.
type System interface {
	List(ctx context.Context, userID uuid.UUID) ([]Conversation, error)
	GetOwned(ctx context.Context, id, userID uuid.UUID) (*Conversation, error)
	Create(ctx context.Context, creatorID uuid.UUID, name string) (*Conversation, error)
	Agents(ctx context.Context, conversationID uuid.UUID) ([]LinkedAgent, error)
	LinkAgent(ctx context.Context, conversationID, agentID uuid.UUID) error
	UnlinkAgent(ctx context.Context, conversationID, agentID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a conversations repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logging.WithSystem(logger, "conversations"),
	}
}

func scanConversation(s repository.Scanner) (Conversation, error) {
	var c Conversation
	err := s.Scan(&c.ID, &c.Name, &c.CreatorID, &c.Created)
	return c, err
}

func scanLinkedAgent(s repository.Scanner) (LinkedAgent, error) {
	var a LinkedAgent
	err := s.Scan(&a.AgentID, &a.Name, &a.Model)
	return a, err
}

func (r *repo) List(ctx context.Context, userID uuid.UUID) ([]Conversation, error) {
	q := `
		SELECT id, name, creator_id, created
		FROM conversations
		WHERE creator_id = $1
		ORDER BY created DESC`

	results, err := repository.QueryMany(ctx, r.db, q, []any{userID}, scanConversation)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return results, nil
}

func (r *repo) GetOwned(ctx context.Context, id, userID uuid.UUID) (*Conversation, error) {
	q := `
		SELECT id, name, creator_id, created
		FROM conversations
		WHERE id = $1`

	c, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanConversation)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, nil)
	}
	if c.CreatorID != userID {
		return nil, ErrForbidden
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, creatorID uuid.UUID, name string) (*Conversation, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	q := `
		INSERT INTO conversations (name, creator_id)
		VALUES ($1, $2)
		RETURNING id, name, creator_id, created`

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Conversation, error) {
		return repository.QueryOne(ctx, tx, q, []any{name, creatorID}, scanConversation)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, nil)
	}

	r.logger.Info("conversation created", "id", c.ID, "name", c.Name)
	return &c, nil
}

func (r *repo) Agents(ctx context.Context, conversationID uuid.UUID) ([]LinkedAgent, error) {
	q := `
		SELECT a.id, a.name, a.model
		FROM conversation_agent_relations r
		JOIN agents a ON r.agent_id = a.id
		WHERE r.conversation_id = $1
		ORDER BY a.name`

	agents, err := repository.QueryMany(ctx, r.db, q, []any{conversationID}, scanLinkedAgent)
	if err != nil {
		return nil, fmt.Errorf("list conversation agents: %w", err)
	}
	return agents, nil
}

func (r *repo) LinkAgent(ctx context.Context, conversationID, agentID uuid.UUID) error {
	q := `
		INSERT INTO conversation_agent_relations (agent_id, conversation_id)
		VALUES ($1, $2)`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		_, err := tx.ExecContext(ctx, q, agentID, conversationID)
		return struct{}{}, err
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("agent linked", "conversation", conversationID, "agent", agentID)
	return nil
}

func (r *repo) UnlinkAgent(ctx context.Context, conversationID, agentID uuid.UUID) error {
	q := "DELETE FROM conversation_agent_relations WHERE conversation_id = $1 AND agent_id = $2"

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		err := repository.ExecExpectOne(ctx, tx, q, conversationID, agentID)
		return struct{}{}, err
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, nil)
	}

	r.logger.Info("agent unlinked", "conversation", conversationID, "agent", agentID)
	return nil
}

// Delete removes a conversation; its agent relations go with it via the
// schema's ON DELETE CASCADE.
func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		err := repository.ExecExpectOne(ctx, tx, "DELETE FROM conversations WHERE id = $1", id)
		return struct{}{}, err
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, nil)
	}

	r.logger.Info("conversation deleted", "id", id)
	return nil
}
