package agents_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/incontext-app/incontext/internal/agents"
)

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", agents.ErrNotFound, http.StatusNotFound},
		{"forbidden", agents.ErrForbidden, http.StatusForbidden},
		{"validation", agents.ErrValidation, http.StatusBadRequest},
		{"linked", agents.ErrLinked, http.StatusConflict},
		{"linked error value", &agents.LinkedError{Count: 3}, http.StatusConflict},
		{"wrapped not found", fmt.Errorf("get agent: %w", agents.ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"nil", nil, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, agents.MapHTTPStatus(tc.err))
		})
	}
}

func TestLinkedError(t *testing.T) {
	err := &agents.LinkedError{Count: 2}

	assert.Equal(t, "agent is linked to 2 conversation(s)", err.Error())
	assert.ErrorIs(t, err, agents.ErrLinked)

	var linked *agents.LinkedError
	assert.ErrorAs(t, fmt.Errorf("delete agent: %w", err), &linked)
	assert.Equal(t, 2, linked.Count)
}

func TestCommandValidate(t *testing.T) {
	valid := agents.Command{
		Model:        "gpt-4.1",
		Name:         "Summarizer",
		Role:         "assistant",
		Instructions: "Summarize the conversation.",
	}

	assert.NoError(t, valid.Validate())

	for _, tc := range []struct {
		name   string
		mutate func(*agents.Command)
	}{
		{"missing model", func(c *agents.Command) { c.Model = "" }},
		{"missing name", func(c *agents.Command) { c.Name = "" }},
		{"missing role", func(c *agents.Command) { c.Role = "" }},
		{"missing instructions", func(c *agents.Command) { c.Instructions = "" }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cmd := valid
			tc.mutate(&cmd)
			assert.ErrorIs(t, cmd.Validate(), agents.ErrValidation)
		})
	}
}
