package agents

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/incontext-app/incontext/pkg/logging"
	"github.com/incontext-app/incontext/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates an agents repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logging.WithSystem(logger, "agents"),
	}
}

func scanAgent(s repository.Scanner) (AgentWithCreator, error) {
	var a AgentWithCreator
	err := s.Scan(
		&a.ID, &a.Model, &a.Name, &a.Role, &a.Instructions,
		&a.Vendor, &a.Created, &a.CreatorID, &a.Username,
	)
	return a, err
}

func scanRow(s repository.Scanner) (Agent, error) {
	var a Agent
	err := s.Scan(
		&a.ID, &a.Model, &a.Name, &a.Role, &a.Instructions,
		&a.Vendor, &a.Created, &a.CreatorID,
	)
	return a, err
}

func scanLink(s repository.Scanner) (ConversationLink, error) {
	var l ConversationLink
	err := s.Scan(&l.AgentID, &l.ConversationID, &l.ConversationName)
	return l, err
}

func (r *repo) List(ctx context.Context) ([]AgentWithCreator, error) {
	q := `
		SELECT a.id, a.model, a.name, a.role, a.instructions,
		       a.vendor, a.created, a.creator_id, u.username
		FROM agents a
		JOIN users u ON a.creator_id = u.id
		ORDER BY a.created DESC`

	results, err := repository.QueryMany(ctx, r.db, q, nil, scanAgent)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return results, nil
}

func (r *repo) ConversationLinks(ctx context.Context, userID uuid.UUID) ([]ConversationLink, error) {
	q := `
		SELECT r.agent_id, r.conversation_id, c.name
		FROM conversation_agent_relations r
		JOIN conversations c ON r.conversation_id = c.id
		WHERE c.creator_id = $1
		ORDER BY c.name`

	links, err := repository.QueryMany(ctx, r.db, q, []any{userID}, scanLink)
	if err != nil {
		return nil, fmt.Errorf("list conversation links: %w", err)
	}
	return links, nil
}

func (r *repo) Get(ctx context.Context, id uuid.UUID) (*AgentWithCreator, error) {
	q := `
		SELECT a.id, a.model, a.name, a.role, a.instructions,
		       a.vendor, a.created, a.creator_id, u.username
		FROM agents a
		JOIN users u ON a.creator_id = u.id
		WHERE a.id = $1`

	a, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanAgent)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, nil)
	}
	return &a, nil
}

func (r *repo) GetOwned(ctx context.Context, id, userID uuid.UUID) (*AgentWithCreator, error) {
	a, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.CreatorID != userID {
		return nil, ErrForbidden
	}
	return a, nil
}

func (r *repo) Create(ctx context.Context, creatorID uuid.UUID, cmd Command) (*Agent, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO agents (model, name, role, instructions, creator_id, vendor)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, model, name, role, instructions, vendor, created, creator_id`

	args := []any{cmd.Model, cmd.Name, cmd.Role, cmd.Instructions, creatorID, VendorFor(cmd.Model)}

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Agent, error) {
		return repository.QueryOne(ctx, tx, q, args, scanRow)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, nil)
	}

	r.logger.Info("agent created", "id", a.ID, "name", a.Name, "vendor", a.Vendor)
	return &a, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd Command) (*Agent, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := `
		UPDATE agents
		SET model = $1, name = $2, role = $3, instructions = $4, vendor = $5
		WHERE id = $6
		RETURNING id, model, name, role, instructions, vendor, created, creator_id`

	args := []any{cmd.Model, cmd.Name, cmd.Role, cmd.Instructions, VendorFor(cmd.Model), id}

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Agent, error) {
		return repository.QueryOne(ctx, tx, q, args, scanRow)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, nil)
	}

	r.logger.Info("agent updated", "id", a.ID, "name", a.Name, "vendor", a.Vendor)
	return &a, nil
}

// Delete removes an agent unless conversations still reference it. The
// relation count and the delete run in one transaction so a relation present
// when the transaction starts always blocks the delete.
func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		var count int
		countQ := "SELECT COUNT(id) FROM conversation_agent_relations WHERE agent_id = $1"
		if err := tx.QueryRowContext(ctx, countQ, id).Scan(&count); err != nil {
			return struct{}{}, fmt.Errorf("count relations: %w", err)
		}
		if count > 0 {
			return struct{}{}, &LinkedError{Count: count}
		}

		err := repository.ExecExpectOne(ctx, tx, "DELETE FROM agents WHERE id = $1", id)
		return struct{}{}, err
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, nil)
	}

	r.logger.Info("agent deleted", "id", id)
	return nil
}
