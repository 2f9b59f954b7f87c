// Package agents provides the domain system for managing AI agent
// configurations: the model, name, role, and instructions a conversation
// participant is built from.
package agents

import (
	"time"

	"github.com/google/uuid"
)

// Agent represents an AI agent configuration stored in the database.
type Agent struct {
	ID           uuid.UUID
	Model        string
	Name         string
	Role         string
	Instructions string
	Vendor       string
	CreatorID    uuid.UUID
	Created      time.Time
}

// AgentWithCreator is an Agent joined with its creator's username for display.
type AgentWithCreator struct {
	Agent
	Username string
}

// ConversationLink ties an agent to a conversation the requesting user owns,
// so the listing can link to conversations the agent participates in.
type ConversationLink struct {
	AgentID          uuid.UUID
	ConversationID   uuid.UUID
	ConversationName string
}

// Command contains the user-supplied fields for creating or updating an
// agent. Vendor is never part of the command; it is derived from Model on
// every write.
type Command struct {
	Model        string
	Name         string
	Role         string
	Instructions string
}

// Validate checks that every required field is present.
func (c Command) Validate() error {
	if c.Model == "" || c.Name == "" || c.Role == "" || c.Instructions == "" {
		return ErrValidation
	}
	return nil
}
