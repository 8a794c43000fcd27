package booksvc

import (
	"context"
	"errors"
	"strings"

	"github.com/carry-jpg/LibraryDatabase/model"
	bookrepo "github.com/carry-jpg/LibraryDatabase/repository/book"
	"github.com/carry-jpg/LibraryDatabase/repository/openlibrary"
)

type ErrCode string

const (
	ErrBadInput     ErrCode = "BAD_INPUT"
	ErrImportFailed ErrCode = "IMPORT_FAILED"
	ErrUpstream     ErrCode = "UPSTREAM"
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
	Search(ctx context.Context, q string, limit int) (map[string]any, error)
	Edition(ctx context.Context, olid string) (map[string]any, error)
	// ResolveEditions maps a list of ISBNs to edition payloads, skipping
	// ISBNs OpenLibrary does not know.
	ResolveEditions(ctx context.Context, isbns []string) ([]map[string]any, error)
	// ImportEdition fetches an edition and upserts it into the catalog.
	ImportEdition(ctx context.Context, olid string) (*model.Book, error)
}

type service struct {
	br bookrepo.Repo
	ol openlibrary.Client
}

func New(br bookrepo.Repo, ol openlibrary.Client) Service {
	return &service{br: br, ol: ol}
}

func (s *service) Search(ctx context.Context, q string, limit int) (map[string]any, error) {
	if strings.TrimSpace(q) == "" {
		return nil, makeErr(ErrBadInput)
	}
	out, err := s.ol.Search(ctx, q, limit)
	if err != nil {
		return nil, makeErr(ErrUpstream)
	}
	return out, nil
}

func (s *service) Edition(ctx context.Context, olid string) (map[string]any, error) {
	if strings.TrimSpace(olid) == "" {
		return nil, makeErr(ErrBadInput)
	}
	out, err := s.ol.Edition(ctx, olid)
	if err != nil {
		return nil, makeErr(ErrUpstream)
	}
	return out, nil
}

func (s *service) ResolveEditions(ctx context.Context, isbns []string) ([]map[string]any, error) {
	if len(isbns) == 0 {
		return nil, makeErr(ErrBadInput)
	}

	out := []map[string]any{}
	for _, isbn := range isbns {
		entry, err := s.ol.ByISBN(ctx, isbn)
		if err != nil {
			continue
		}
		if len(entry) == 0 {
			continue
		}
		entry["isbn"] = isbn
		out = append(out, entry)
	}
	return out, nil
}

func (s *service) ImportEdition(ctx context.Context, olid string) (*model.Book, error) {
	olid = strings.TrimSpace(olid)
	if olid == "" {
		return nil, makeErr(ErrBadInput)
	}

	edition, err := s.ol.Edition(ctx, olid)
	if err != nil {
		return nil, makeErr(ErrUpstream)
	}

	mapped := openlibrary.MapEdition(edition, olid)
	if mapped.OpenLibraryID == "" || mapped.Title == "" {
		// Title and edition id are the mandatory catalog fields.
		return nil, makeErr(ErrImportFailed)
	}
	if err := s.br.Upsert(ctx, &mapped.Book); err != nil {
		return nil, err
	}
	return &mapped.Book, nil
}
