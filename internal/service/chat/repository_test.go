package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/makebyjordan/chatbot-crm/internal/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockRepository(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), database.GormConfig())
	require.NoError(t, err)

	return NewGormRepository(&database.Database{SQL: gormDB}), mock
}

func TestGormListBySessionFiltersAndOrdersByInsertion(t *testing.T) {
	repo, mock := newMockRepository(t)
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	// Both rows share a timestamp; seq decides their order.
	rows := sqlmock.NewRows([]string{"id", "session_id", "user_message", "intent", "platform", "created_at", "seq"}).
		AddRow("ffffffff-0000-0000-0000-000000000000", "sess-1", "hola", "greeting", "webchat", at, 1).
		AddRow("00000000-0000-0000-0000-00000000000f", "sess-1", "precio?", "pricing", "webchat", at, 2)
	mock.ExpectQuery(`SELECT \* FROM "conversations" WHERE session_id = \$1 ORDER BY created_at ASC,seq ASC LIMIT`).
		WillReturnRows(rows)

	page, err := repo.ListBySession(context.Background(), "sess-1", 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "hola", page[0].UserMessage)
	require.Equal(t, "precio?", page[1].UserMessage)
	require.Equal(t, "sess-1", *page[0].SessionID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormListBySessionPagesWithOffset(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT \* FROM "conversations" WHERE session_id = \$1 ORDER BY created_at ASC,seq ASC LIMIT .* OFFSET`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	page, err := repo.ListBySession(context.Background(), "sess-1", 50, 100)
	require.NoError(t, err)
	require.Empty(t, page)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormListBySessionPropagatesErrors(t *testing.T) {
	repo, mock := newMockRepository(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery(`SELECT \* FROM "conversations"`).WillReturnError(boom)

	_, err := repo.ListBySession(context.Background(), "sess-1", 10, 0)
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
