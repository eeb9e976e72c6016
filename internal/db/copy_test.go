package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "leads", []string{"a", "b"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"run_id", "place_id"}
	mock.ExpectCopyFrom(pgx.Identifier{"leads"}, cols).WillReturnResult(2)

	n, err := CopyFrom(context.TODO(), mock, "leads", cols, [][]any{
		{"run-1", "place-a"},
		{"run-1", "place-b"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"run_id"}
	mock.ExpectCopyFrom(pgx.Identifier{"leads"}, cols).WillReturnError(assert.AnError)

	_, err = CopyFrom(context.TODO(), mock, "leads", cols, [][]any{{"run-1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO leads")
}
