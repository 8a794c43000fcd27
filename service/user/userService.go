package usersvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/carry-jpg/LibraryDatabase/model"
	userrepo "github.com/carry-jpg/LibraryDatabase/repository/user"
)

type ErrCode string

const (
	ErrBadRole      ErrCode = "BAD_ROLE"
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrSelfDemotion ErrCode = "SELF_DEMOTION"
	ErrNoChange     ErrCode = "NO_CHANGE"
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
	List(ctx context.Context) ([]model.User, error)
	// SetRole changes a user's role. An admin cannot strip their own admin
	// role, and a no-op change is reported as a conflict.
	SetRole(ctx context.Context, adminID, targetID int64, role model.Role) error
}

type service struct{ ur userrepo.Repo }

func New(ur userrepo.Repo) Service { return &service{ur: ur} }

func (s *service) List(ctx context.Context) ([]model.User, error) {
	return s.ur.List(ctx)
}

func (s *service) SetRole(ctx context.Context, adminID, targetID int64, role model.Role) error {
	if !role.Valid() {
		return makeErr(ErrBadRole)
	}
	if adminID == targetID && role != model.RoleAdmin {
		return makeErr(ErrSelfDemotion)
	}

	if _, err := s.ur.ByID(ctx, targetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}

	changed, err := s.ur.UpdateRole(ctx, targetID, role)
	if err != nil {
		return err
	}
	if !changed {
		return makeErr(ErrNoChange)
	}
	return nil
}
