package authsvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carry-jpg/LibraryDatabase/model"
	userrepo "github.com/carry-jpg/LibraryDatabase/repository/user"
	"github.com/carry-jpg/LibraryDatabase/util/hash"
)

type ErrCode string

const (
	ErrEmailTaken   ErrCode = "EMAIL_TAKEN"
	ErrBadInput     ErrCode = "BAD_INPUT"
	ErrInvalidCreds ErrCode = "INVALID_CREDS"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, error)
}

type service struct{ ur userrepo.Repo }

func New(ur userrepo.Repo) Service { return &service{ur: ur} }

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" || len(req.Password) < 8 {
		return nil, makeErr(ErrBadInput)
	}

	if existing, err := s.ur.ByEmail(ctx, email); err == nil && existing != nil {
		return nil, makeErr(ErrEmailTaken)
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	// Bootstrap rule: the first-ever account becomes admin.
	count, err := s.ur.Count(ctx)
	if err != nil {
		return nil, err
	}
	role := model.RoleUser
	if count == 0 {
		role = model.RoleAdmin
	}

	u := &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashed,
		Role:         role,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		if isUniqueViolation(err) {
			// Lost a registration race on the same email.
			return nil, makeErr(ErrEmailTaken)
		}
		return nil, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, makeErr(ErrBadInput)
	}

	u, err := s.ur.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrInvalidCreds)
		}
		return nil, err
	}
	if u == nil || !hash.Check(u.PasswordHash, req.Password) {
		return nil, makeErr(ErrInvalidCreds)
	}
	return u, nil
}
