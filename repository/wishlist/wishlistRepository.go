package wishlistrepo

import (
	"context"
	"database/sql"

	"github.com/carry-jpg/LibraryDatabase/model"
)

type Repo interface {
	Add(ctx context.Context, e *model.WishlistEntry) error
	Remove(ctx context.Context, userID int64, olid string) (bool, error)
	Has(ctx context.Context, userID int64, olid string) (bool, error)
	IDs(ctx context.Context, userID int64) ([]string, error)
	ListByUser(ctx context.Context, userID int64) ([]model.WishlistEntry, error)
	Summary(ctx context.Context) ([]model.WishlistSummaryRow, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Add(ctx context.Context, e *model.WishlistEntry) error {
	const q = `
		INSERT INTO wishlist (userid, openlibraryid, title, author, coverurl, releaseyear)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (userid, openlibraryid) DO NOTHING`
	_, err := r.db.ExecContext(ctx, q,
		e.UserID, e.OpenLibraryID, e.Title, e.Author, e.CoverURL, e.ReleaseYear)
	return err
}

func (r *repo) Remove(ctx context.Context, userID int64, olid string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM wishlist WHERE userid = $1 AND openlibraryid = $2`,
		userID, olid)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff == 1, nil
}

func (r *repo) Has(ctx context.Context, userID int64, olid string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM wishlist WHERE userid = $1 AND openlibraryid = $2`,
		userID, olid).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *repo) IDs(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT openlibraryid FROM wishlist WHERE userid = $1 ORDER BY createdat DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var olid string
		if err := rows.Scan(&olid); err != nil {
			return nil, err
		}
		out = append(out, olid)
	}
	return out, rows.Err()
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.WishlistEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT userid, openlibraryid, title, author, coverurl, releaseyear, createdat
		FROM wishlist
		WHERE userid = $1
		ORDER BY createdat DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.WishlistEntry{}
	for rows.Next() {
		var e model.WishlistEntry
		if err := rows.Scan(&e.UserID, &e.OpenLibraryID, &e.Title, &e.Author,
			&e.CoverURL, &e.ReleaseYear, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repo) Summary(ctx context.Context) ([]model.WishlistSummaryRow, error) {
	const q = `
		SELECT openlibraryid, MAX(title), MAX(author), COUNT(*)
		FROM wishlist
		GROUP BY openlibraryid
		ORDER BY COUNT(*) DESC, openlibraryid ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.WishlistSummaryRow{}
	for rows.Next() {
		var s model.WishlistSummaryRow
		if err := rows.Scan(&s.OpenLibraryID, &s.Title, &s.Author, &s.Count); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
