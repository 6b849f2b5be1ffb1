package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"eventlottery/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestStore_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    string
		errIs   error
		wantErr bool
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT body\s+FROM documents`).
					WithArgs("events", "1").
					WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow([]byte(`{"info":{"id":1}}`)))
			},
			want: `{"info":{"id":1}}`,
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT body\s+FROM documents`).
					WithArgs("events", "1").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: true,
			errIs:   domain.ErrNotFound,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT body\s+FROM documents`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
			errIs:   sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			got, err := NewStore(db).Get(ctx, "events", "1")
			if tt.wantErr {
				require.ErrorIs(t, err, tt.errIs)
				require.Nil(t, got)
			} else {
				require.NoError(t, err)
				require.JSONEq(t, tt.want, string(got))
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_Put(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO documents \(collection, id, body, updated_at\)`).
		WithArgs("entrants", "7", `{"id":7}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewStore(db).Put(context.Background(), "entrants", "7", []byte(`{"id":7}`)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		rows  int64
		errIs error
	}{
		{name: "success", rows: 1},
		{name: "not found zero rows affected", rows: 0, errIs: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec(`DELETE FROM documents WHERE collection = \$1 AND id = \$2`).
				WithArgs("events", "3").
				WillReturnResult(sqlmock.NewResult(0, tt.rows))

			err = NewStore(db).Delete(ctx, "events", "3")
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT body\s+FROM documents\s+WHERE collection = \$1\s+ORDER BY id`).
		WithArgs("logs").
		WillReturnRows(sqlmock.NewRows([]string{"body"}).
			AddRow([]byte(`{"id":"a"}`)).
			AddRow([]byte(`{"id":"b"}`)))

	docs, err := NewStore(db).List(context.Background(), "logs")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.JSONEq(t, `{"id":"b"}`, string(docs[1]))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT body`).WithArgs("logs").WillReturnRows(sqlmock.NewRows([]string{"body"}))

	docs, err := NewStore(db).List(context.Background(), "logs")
	require.NoError(t, err)
	require.NotNil(t, docs)
	require.Empty(t, docs)
}

func TestStore_NextID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    int
		wantErr bool
	}{
		{
			name: "first id on empty collection",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO counters \(collection, value\)\s+VALUES \(\$1, 1\)\s+ON CONFLICT \(collection\) DO UPDATE SET value = counters.value \+ 1\s+RETURNING value`).
					WithArgs("entrants").
					WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(1))
			},
			want: 1,
		},
		{
			name: "increments",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO counters`).
					WithArgs("entrants").
					WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(42))
			},
			want: 42,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO counters`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			got, err := NewStore(db).NextID(ctx, "entrants")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_Clear(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM documents WHERE collection = \$1`).
		WithArgs("test_events").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM counters WHERE collection = \$1`).
		WithArgs("test_events").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewStore(db).Clear(context.Background(), "test_events"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ClearRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM documents`).WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	require.ErrorIs(t, NewStore(db).Clear(context.Background(), "events"), sql.ErrConnDone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Migrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS documents`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewStore(db).Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
