package wishlistsvc

import (
	"context"
	"errors"
	"strings"

	"github.com/carry-jpg/LibraryDatabase/model"
	wishlistrepo "github.com/carry-jpg/LibraryDatabase/repository/wishlist"
)

type ErrCode string

const ErrBadInput ErrCode = "BAD_INPUT"

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	// Toggle adds the entry when absent and removes it when present.
	// Returns whether the book is wished after the call.
	Toggle(ctx context.Context, userID int64, req model.WishlistToggleReq) (bool, error)
	IDs(ctx context.Context, userID int64) ([]string, error)
	List(ctx context.Context, userID int64) ([]model.WishlistEntry, error)
	Summary(ctx context.Context) ([]model.WishlistSummaryRow, error)
}

type service struct{ wr wishlistrepo.Repo }

func New(wr wishlistrepo.Repo) Service { return &service{wr: wr} }

func (s *service) Toggle(ctx context.Context, userID int64, req model.WishlistToggleReq) (bool, error) {
	olid := strings.TrimSpace(req.OLID)
	if olid == "" {
		return false, codedError{code: ErrBadInput}
	}

	has, err := s.wr.Has(ctx, userID, olid)
	if err != nil {
		return false, err
	}
	if has {
		if _, err := s.wr.Remove(ctx, userID, olid); err != nil {
			return false, err
		}
		return false, nil
	}

	err = s.wr.Add(ctx, &model.WishlistEntry{
		UserID:        userID,
		OpenLibraryID: olid,
		Title:         strings.TrimSpace(req.Title),
		Author:        strings.TrimSpace(req.Author),
		CoverURL:      strings.TrimSpace(req.CoverURL),
		ReleaseYear:   req.ReleaseYear,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) IDs(ctx context.Context, userID int64) ([]string, error) {
	return s.wr.IDs(ctx, userID)
}

func (s *service) List(ctx context.Context, userID int64) ([]model.WishlistEntry, error) {
	return s.wr.ListByUser(ctx, userID)
}

func (s *service) Summary(ctx context.Context) ([]model.WishlistSummaryRow, error) {
	return s.wr.Summary(ctx)
}
