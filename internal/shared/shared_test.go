package shared

import (
	"errors"
	"net/url"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapPgError(t *testing.T) {
	assert.NoError(t, MapPgError("op", nil))
	assert.ErrorIs(t, MapPgError("op", pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, MapPgError("op", &pgconn.PgError{Code: "23505"}), ErrConflict)
	assert.ErrorIs(t, MapPgError("op", &pgconn.PgError{Code: "23503"}), ErrValidation)

	other := errors.New("boom")
	err := MapPgError("projects: create", other)
	assert.ErrorIs(t, err, other)
	assert.Contains(t, err.Error(), "projects: create")
}

func TestPageFromQueryClamps(t *testing.T) {
	p := PageFromQuery(url.Values{"page": {"-3"}, "perPage": {"1000"}})
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PerPage)
	assert.Equal(t, 0, p.Offset())

	p = PageFromQuery(url.Values{"page": {"3"}, "perPage": {"10"}})
	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, 10, p.Limit())
}

func TestNewPageNeverNil(t *testing.T) {
	page := NewPage[int](nil, PageRequest{Page: 1, PerPage: 20}, 41)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 3, page.Pagination.TotalPages)
}
