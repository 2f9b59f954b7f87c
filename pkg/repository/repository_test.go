package repository_test

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/incontext-app/incontext/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func TestMapError(t *testing.T) {
	otherErr := errors.New("some other error")
	otherPg := &pgconn.PgError{Code: "12345"}
	uniquePg := &pgconn.PgError{Code: "23505"}

	tests := []struct {
		name string
		err  error
		dup  error
		want error
	}{
		{"nil error", nil, errDuplicate, nil},
		{"no rows", sql.ErrNoRows, errDuplicate, errNotFound},
		{"unique violation", uniquePg, errDuplicate, errDuplicate},
		{"unique violation without duplicate target", uniquePg, nil, uniquePg},
		{"other pg error", otherPg, errDuplicate, otherPg},
		{"other error", otherErr, errDuplicate, otherErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, errNotFound, tt.dup)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}
