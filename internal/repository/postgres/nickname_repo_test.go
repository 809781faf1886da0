package postgres

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/Jasujung99/echo-note-whisper-app/internal/errs"
	"github.com/Jasujung99/echo-note-whisper-app/internal/model"
)

func TestNicknameRepo_GetByTargets_SingleQuery(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNicknameRepo(db)
	ctx := context.Background()

	assigner := uuid.Must(uuid.NewV4())
	t1 := uuid.Must(uuid.NewV4())
	t2 := uuid.Must(uuid.NewV4())
	t3 := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT target_id, nickname FROM user_nicknames\s+WHERE assigner_id=\$1 AND target_id = ANY\(\$2\)`).
		WithArgs(assigner, []uuid.UUID{t1, t2, t3}).
		WillReturnRows(pgxmock.NewRows([]string{"target_id", "nickname"}).
			AddRow(t1, "수줍은 여우").
			AddRow(t3, "빛나는 파도"))

	got, err := r.GetByTargets(ctx, assigner, []uuid.UUID{t1, t2, t3})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "수줍은 여우", got[t1])
	require.NotContains(t, got, t2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNicknameRepo_GetByTargets_EmptyInput_NoQuery(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNicknameRepo(db)

	got, err := r.GetByTargets(context.Background(), uuid.Must(uuid.NewV4()), nil)
	require.NoError(t, err)
	require.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNicknameRepo_InsertBatch_SingleStatement(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNicknameRepo(db)
	ctx := context.Background()

	assigner := uuid.Must(uuid.NewV4())
	t1 := uuid.Must(uuid.NewV4())
	t2 := uuid.Must(uuid.NewV4())
	as := []model.NicknameAssignment{
		{AssignerID: assigner, TargetID: t1, Nickname: "먼 산"},
		{AssignerID: assigner, TargetID: t2, Nickname: "푸른 강"},
	}

	mock.ExpectExec(`INSERT INTO user_nicknames \(assigner_id, target_id, nickname\) VALUES \(\$1, \$2, \$3\), \(\$4, \$5, \$6\)`).
		WithArgs(assigner, t1, "먼 산", assigner, t2, "푸른 강").
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	require.NoError(t, r.InsertBatch(ctx, as))

	// a concurrent assignment collides on the (assigner, target) key
	mock.ExpectExec(`INSERT INTO user_nicknames`).
		WithArgs(assigner, t1, "먼 산", assigner, t2, "푸른 강").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, r.InsertBatch(ctx, as), errs.ErrAlreadyExists)
}

func TestNicknameRepo_InsertBatch_EmptyInput_NoQuery(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNicknameRepo(db)

	require.NoError(t, r.InsertBatch(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNicknameRepo_DeleteByUser_BothDirections(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNicknameRepo(db)
	userID := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`DELETE FROM user_nicknames WHERE assigner_id=\$1 OR target_id=\$1`).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	require.NoError(t, r.DeleteByUser(context.Background(), userID))
}
