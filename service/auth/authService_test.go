package authsvc

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/carry-jpg/LibraryDatabase/model"
	userrepo "github.com/carry-jpg/LibraryDatabase/repository/user"
	"github.com/carry-jpg/LibraryDatabase/util/hash"
)

type mockUserRepo struct {
	createFn     func(ctx context.Context, u *model.User) error
	byEmailFn    func(ctx context.Context, email string) (*model.User, error)
	byIDFn       func(ctx context.Context, id int64) (*model.User, error)
	countFn      func(ctx context.Context) (int64, error)
	listFn       func(ctx context.Context) ([]model.User, error)
	updateRoleFn func(ctx context.Context, id int64, role model.Role) (bool, error)
}

var _ userrepo.Repo = (*mockUserRepo)(nil)

func (m *mockUserRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		u.ID = 1
		return nil
	}
	return m.createFn(ctx, u)
}

func (m *mockUserRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.byEmailFn(ctx, email)
}

func (m *mockUserRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.byIDFn(ctx, id)
}

func (m *mockUserRepo) Count(ctx context.Context) (int64, error) {
	if m.countFn == nil {
		return 5, nil
	}
	return m.countFn(ctx)
}

func (m *mockUserRepo) List(ctx context.Context) ([]model.User, error) {
	if m.listFn == nil {
		return nil, nil
	}
	return m.listFn(ctx)
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id int64, role model.Role) (bool, error) {
	if m.updateRoleFn == nil {
		return true, nil
	}
	return m.updateRoleFn(ctx, id, role)
}

// --- Register ---

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()

	m := &mockUserRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			return nil
		},
	}
	svc := New(m)

	u, err := svc.Register(ctx, model.RegisterReq{
		Email:    "  USER@Example.COM ",
		Name:     "Mira",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "user@example.com", u.Email)
	require.Equal(t, model.RoleUser, u.Role)
	require.NotEmpty(t, u.PasswordHash)
	require.True(t, hash.Check(u.PasswordHash, "supersecret"))
}

func TestRegister_FirstUserBecomesAdmin(t *testing.T) {
	ctx := context.Background()

	m := &mockUserRepo{
		countFn: func(ctx context.Context) (int64, error) { return 0, nil },
	}
	svc := New(m)

	u, err := svc.Register(ctx, model.RegisterReq{
		Email:    "first@example.com",
		Name:     "First",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, u.Role)
}

func TestRegister_BadInput(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockUserRepo{})

	cases := []model.RegisterReq{
		{Email: " ", Name: "n", Password: "supersecret"},
		{Email: "a@b.com", Name: "  ", Password: "supersecret"},
		{Email: "a@b.com", Name: "n", Password: "short"},
	}
	for _, req := range cases {
		_, err := svc.Register(ctx, req)
		require.Error(t, err)
		require.Equal(t, ErrBadInput, Code(err))
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	ctx := context.Background()

	m := &mockUserRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 9, Email: email}, nil
		},
	}
	svc := New(m)

	_, err := svc.Register(ctx, model.RegisterReq{
		Email:    "taken@example.com",
		Name:     "Dup",
		Password: "supersecret",
	})
	require.Error(t, err)
	require.Equal(t, ErrEmailTaken, Code(err))
}

// A registration racing past the pre-check still maps the database's unique
// violation to the same conflict.
func TestRegister_UniqueViolationRace(t *testing.T) {
	ctx := context.Background()

	m := &mockUserRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		},
	}
	svc := New(m)

	_, err := svc.Register(ctx, model.RegisterReq{
		Email:    "race@example.com",
		Name:     "Race",
		Password: "supersecret",
	})
	require.Error(t, err)
	require.Equal(t, ErrEmailTaken, Code(err))
}

func TestRegister_CreateError(t *testing.T) {
	ctx := context.Background()

	boom := errors.New("insert failed")
	m := &mockUserRepo{
		createFn: func(ctx context.Context, u *model.User) error { return boom },
	}
	svc := New(m)

	_, err := svc.Register(ctx, model.RegisterReq{
		Email:    "x@example.com",
		Name:     "X",
		Password: "supersecret",
	})
	require.ErrorIs(t, err, boom)
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()

	hashed, err := hash.HashPassword("supersecret")
	require.NoError(t, err)

	m := &mockUserRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			require.Equal(t, "user@example.com", email)
			return &model.User{ID: 7, Email: email, PasswordHash: hashed, Role: model.RoleUser}, nil
		},
	}
	svc := New(m)

	u, err := svc.Login(ctx, model.LoginReq{Email: "User@Example.com", Password: "supersecret"})
	require.NoError(t, err)
	require.Equal(t, int64(7), u.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()

	hashed, err := hash.HashPassword("supersecret")
	require.NoError(t, err)

	m := &mockUserRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 7, Email: email, PasswordHash: hashed}, nil
		},
	}
	svc := New(m)

	_, err = svc.Login(ctx, model.LoginReq{Email: "user@example.com", Password: "nope"})
	require.Error(t, err)
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestLogin_UnknownEmail(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockUserRepo{})

	_, err := svc.Login(ctx, model.LoginReq{Email: "ghost@example.com", Password: "whatever"})
	require.Error(t, err)
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestLogin_BadInput(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockUserRepo{})

	_, err := svc.Login(ctx, model.LoginReq{Email: "", Password: "x"})
	require.Error(t, err)
	require.Equal(t, ErrBadInput, Code(err))

	_, err = svc.Login(ctx, model.LoginReq{Email: "a@b.com", Password: ""})
	require.Error(t, err)
	require.Equal(t, ErrBadInput, Code(err))
}
