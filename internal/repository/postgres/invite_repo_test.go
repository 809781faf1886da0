package postgres

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/Jasujung99/echo-note-whisper-app/internal/errs"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func TestInviteRepo_Create_OK_and_UniqueViolation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewInviteRepo(db)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO invite_codes \(code, nickname\)\s+VALUES \(\$1, \$2\)`).
		WithArgs("ABCD2345", "용감한 고래").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, "ABCD2345", "용감한 고래"))

	mock.ExpectExec(`INSERT INTO invite_codes \(code, nickname\)\s+VALUES \(\$1, \$2\)`).
		WithArgs("ABCD2345", "용감한 고래").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	err := r.Create(ctx, "ABCD2345", "용감한 고래")
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestInviteRepo_Redeem_ConsumesOnce(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewInviteRepo(db)
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())

	const redeemRE = `UPDATE invite_codes\s+SET is_used=true, used_by=\$2, used_at=now\(\)\s+WHERE code=\$1 AND is_used=false\s+RETURNING nickname`

	// first redeemer wins
	mock.ExpectQuery(redeemRE).
		WithArgs("ABCD2345", userID).
		WillReturnRows(pgxmock.NewRows([]string{"nickname"}).AddRow("조용한 바람"))
	nick, err := r.Redeem(ctx, "ABCD2345", userID)
	require.NoError(t, err)
	require.Equal(t, "조용한 바람", nick)

	// second redeemer hits is_used=true: zero rows back
	mock.ExpectQuery(redeemRE).
		WithArgs("ABCD2345", userID).
		WillReturnRows(pgxmock.NewRows([]string{"nickname"}))
	_, err = r.Redeem(ctx, "ABCD2345", userID)
	require.ErrorIs(t, err, errs.ErrInviteUnavailable)
}

func TestInviteRepo_List(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewInviteRepo(db)
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT code, nickname, is_used, used_by, used_at\s+FROM invite_codes ORDER BY is_used, code`).
		WillReturnRows(pgxmock.NewRows([]string{"code", "nickname", "is_used", "used_by", "used_at"}).
			AddRow("AAAA2222", "웃는 달", false, (*uuid.UUID)(nil), nil).
			AddRow("BBBB3333", "작은 별", true, &userID, nil))

	codes, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, codes, 2)
	require.False(t, codes[0].IsUsed)
	require.Equal(t, uuid.Nil, codes[0].UsedBy)
	require.True(t, codes[1].IsUsed)
	require.Equal(t, userID, codes[1].UsedBy)
}
