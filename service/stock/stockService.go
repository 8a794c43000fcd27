package stocksvc

import (
	"context"
	"errors"

	"github.com/carry-jpg/LibraryDatabase/model"
	bookrepo "github.com/carry-jpg/LibraryDatabase/repository/book"
	"github.com/carry-jpg/LibraryDatabase/repository/openlibrary"
	stockrepo "github.com/carry-jpg/LibraryDatabase/repository/stock"
)

type ErrCode string

const (
	ErrBadInput      ErrCode = "BAD_INPUT"
	ErrStockNotFound ErrCode = "STOCK_NOT_FOUND"
	ErrBookNotFound  ErrCode = "BOOK_NOT_FOUND"
	ErrImportFailed  ErrCode = "IMPORT_FAILED"
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
	// Set upserts a stock row. When importIfMissing is set and the catalog
	// has no such edition, the book is imported from OpenLibrary first.
	Set(ctx context.Context, olid string, quality, quantity int, importIfMissing bool) error
	List(ctx context.Context) ([]model.StockRow, error)
	Delete(ctx context.Context, stockID int64) error
}

type service struct {
	st stockrepo.Repo
	br bookrepo.Repo
	ol openlibrary.Client
}

func New(st stockrepo.Repo, br bookrepo.Repo, ol openlibrary.Client) Service {
	return &service{st: st, br: br, ol: ol}
}

func (s *service) Set(ctx context.Context, olid string, quality, quantity int, importIfMissing bool) error {
	if olid == "" || quality < 1 || quality > 5 || quantity < 0 {
		return makeErr(ErrBadInput)
	}

	exists, err := s.br.Exists(ctx, olid)
	if err != nil {
		return err
	}
	if !exists {
		if !importIfMissing {
			return makeErr(ErrBookNotFound)
		}
		edition, err := s.ol.Edition(ctx, olid)
		if err != nil {
			return makeErr(ErrImportFailed)
		}
		mapped := openlibrary.MapEdition(edition, olid)
		if mapped.Title == "" || mapped.OpenLibraryID == "" {
			return makeErr(ErrImportFailed)
		}
		if err := s.br.Upsert(ctx, &mapped.Book); err != nil {
			return err
		}
	}

	return s.st.Upsert(ctx, olid, quality, quantity)
}

func (s *service) List(ctx context.Context) ([]model.StockRow, error) {
	return s.st.ListWithBook(ctx)
}

func (s *service) Delete(ctx context.Context, stockID int64) error {
	ok, err := s.st.DeleteByID(ctx, stockID)
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrStockNotFound)
	}
	return nil
}
