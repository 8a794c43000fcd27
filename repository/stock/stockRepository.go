package stockrepo

import (
	"context"
	"database/sql"

	"github.com/carry-jpg/LibraryDatabase/model"
)

type Repo interface {
	Upsert(ctx context.Context, olid string, quality, quantity int) error
	DeleteByID(ctx context.Context, stockID int64) (bool, error)
	Exists(ctx context.Context, stockID int64) (bool, error)
	ListWithBook(ctx context.Context) ([]model.StockRow, error)

	// Transactional primitives used by the rental engine. GetForUpdate
	// takes the row-level exclusive lock; the decrement is additionally
	// guarded by quantity > 0 so quantity can never go negative even if a
	// caller skips the locked read.
	GetForUpdate(ctx context.Context, tx *sql.Tx, stockID int64) (*model.StockItem, error)
	Decrement(ctx context.Context, tx *sql.Tx, stockID int64) (bool, error)
	Increment(ctx context.Context, tx *sql.Tx, stockID int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Upsert(ctx context.Context, olid string, quality, quantity int) error {
	const q = `
		INSERT INTO stock (openlibraryid, quality, quantity)
		VALUES ($1,$2,$3)
		ON CONFLICT (openlibraryid, quality) DO UPDATE SET
			quantity = EXCLUDED.quantity`
	_, err := r.db.ExecContext(ctx, q, olid, quality, quantity)
	return err
}

func (r *repo) DeleteByID(ctx context.Context, stockID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stock WHERE stockid = $1`, stockID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff == 1, nil
}

func (r *repo) Exists(ctx context.Context, stockID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM stock WHERE stockid = $1`, stockID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *repo) ListWithBook(ctx context.Context) ([]model.StockRow, error) {
	const q = `
		SELECT
			s.stockid,
			s.openlibraryid,
			s.quality,
			s.quantity,
			b.isbn,
			b.title,
			b.author,
			b.releaseyear,
			b.publisher,
			b.language,
			b.pages,
			'https://covers.openlibrary.org/b/olid/' || s.openlibraryid || '-M.jpg?default=false' AS coverurl
		FROM stock s
		JOIN book b ON b.openlibraryid = s.openlibraryid
		ORDER BY b.title ASC, s.quality ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.StockRow
	for rows.Next() {
		var s model.StockRow
		if err := rows.Scan(
			&s.StockID, &s.OpenLibraryID, &s.Quality, &s.Quantity,
			&s.ISBN, &s.Title, &s.Author, &s.ReleaseYear,
			&s.Publisher, &s.Language, &s.Pages, &s.CoverURL,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, stockID int64) (*model.StockItem, error) {
	const q = `
		SELECT stockid, openlibraryid, quality, quantity
		FROM stock
		WHERE stockid = $1
		FOR UPDATE`
	s := &model.StockItem{}
	err := tx.QueryRowContext(ctx, q, stockID).Scan(&s.ID, &s.OpenLibraryID, &s.Quality, &s.Quantity)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *repo) Decrement(ctx context.Context, tx *sql.Tx, stockID int64) (bool, error) {
	const q = `
		UPDATE stock
		SET quantity = quantity - 1
		WHERE stockid = $1
		AND quantity > 0`
	res, err := tx.ExecContext(ctx, q, stockID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff == 1, nil
}

func (r *repo) Increment(ctx context.Context, tx *sql.Tx, stockID int64) error {
	const q = `
		UPDATE stock
		SET quantity = quantity + 1
		WHERE stockid = $1`
	_, err := tx.ExecContext(ctx, q, stockID)
	return err
}
