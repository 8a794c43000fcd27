package bookrepo

import (
	"context"
	"database/sql"

	"github.com/carry-jpg/LibraryDatabase/model"
)

type Repo interface {
	Exists(ctx context.Context, olid string) (bool, error)
	ByOLID(ctx context.Context, olid string) (*model.Book, error)
	Upsert(ctx context.Context, b *model.Book) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Exists(ctx context.Context, olid string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM book WHERE openlibraryid = $1`, olid,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *repo) ByOLID(ctx context.Context, olid string) (*model.Book, error) {
	b := &model.Book{}
	err := r.db.QueryRowContext(ctx, `
		SELECT openlibraryid, isbn, title, author, releaseyear, publisher, language, pages
		FROM book
		WHERE openlibraryid = $1`,
		olid,
	).Scan(&b.OpenLibraryID, &b.ISBN, &b.Title, &b.Author, &b.ReleaseYear, &b.Publisher, &b.Language, &b.Pages)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) Upsert(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO book (openlibraryid, isbn, title, author, releaseyear, publisher, language, pages)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (openlibraryid) DO UPDATE SET
			isbn = EXCLUDED.isbn,
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			releaseyear = EXCLUDED.releaseyear,
			publisher = EXCLUDED.publisher,
			language = EXCLUDED.language,
			pages = EXCLUDED.pages`
	_, err := r.db.ExecContext(ctx, q,
		b.OpenLibraryID, b.ISBN, b.Title, b.Author, b.ReleaseYear, b.Publisher, b.Language, b.Pages)
	return err
}
