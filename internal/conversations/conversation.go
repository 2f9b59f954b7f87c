// Package conversations provides the domain system for conversations and
// their links to agents.
package conversations

import (
	"time"

	"github.com/google/uuid"
)

// Conversation represents a conversation owned by a user.
type Conversation struct {
	ID        uuid.UUID
	Name      string
	CreatorID uuid.UUID
	Created   time.Time
}

// LinkedAgent is an agent joined into a conversation for display.
type LinkedAgent struct {
	AgentID uuid.UUID
	Name    string
	Model   string
}
