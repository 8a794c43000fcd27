package rentalrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/carry-jpg/LibraryDatabase/model"
)

type Repo interface {
	Insert(ctx context.Context, userID, stockID int64, note *string) (int64, error)

	// GetForUpdate takes the row-level exclusive lock on the rental. The
	// engine always locks the rental row before the stock row.
	GetForUpdate(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error)

	// Approve and Complete are status-conditioned updates: the WHERE clause
	// re-checks the expected current status at write time, so the affected
	// row count is zero when a concurrent transaction already flipped it.
	Approve(ctx context.Context, tx *sql.Tx, rentalID int64, start, end time.Time, adminID int64, decidedAt time.Time) (bool, error)
	Complete(ctx context.Context, tx *sql.Tx, rentalID, adminID int64, returnedAt time.Time) (bool, error)

	Dismiss(ctx context.Context, rentalID, adminID int64, decidedAt time.Time) (bool, error)

	MarkOverdue(ctx context.Context, now time.Time) (int64, error)

	ListByUser(ctx context.Context, userID int64) ([]model.RentalRow, error)
	ListPending(ctx context.Context) ([]model.RentalRow, error)
	ListApproved(ctx context.Context) ([]model.RentalRow, error)
	ListActive(ctx context.Context) ([]model.RentalRow, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, userID, stockID int64, note *string) (int64, error) {
	const q = `
		INSERT INTO rentals (userid, stockid, status, note)
		VALUES ($1, $2, 'pending', $3)
		RETURNING rentalid`
	var id int64
	if err := r.db.QueryRowContext(ctx, q, userID, stockID, note).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error) {
	const q = `
		SELECT rentalid, userid, stockid, status, note, startdate, enddate,
		       createdat, decidedat, decidedby, returnedat, returnedby
		FROM rentals
		WHERE rentalid = $1
		FOR UPDATE`
	re := &model.Rental{}
	err := tx.QueryRowContext(ctx, q, rentalID).Scan(
		&re.ID, &re.UserID, &re.StockID, &re.Status, &re.Note,
		&re.StartDate, &re.EndDate, &re.CreatedAt,
		&re.DecidedAt, &re.DecidedBy, &re.ReturnedAt, &re.ReturnedBy,
	)
	if err != nil {
		return nil, err
	}
	return re, nil
}

func (r *repo) Approve(ctx context.Context, tx *sql.Tx, rentalID int64, start, end time.Time, adminID int64, decidedAt time.Time) (bool, error) {
	const q = `
		UPDATE rentals
		SET status = 'approved',
			startdate = $2,
			enddate = $3,
			decidedat = $4,
			decidedby = $5
		WHERE rentalid = $1
		AND status = 'pending'`
	res, err := tx.ExecContext(ctx, q, rentalID, start, end, decidedAt, adminID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff == 1, nil
}

func (r *repo) Complete(ctx context.Context, tx *sql.Tx, rentalID, adminID int64, returnedAt time.Time) (bool, error) {
	const q = `
		UPDATE rentals
		SET status = 'completed',
			returnedat = $2,
			returnedby = $3
		WHERE rentalid = $1
		AND status IN ('approved', 'not_returned')`
	res, err := tx.ExecContext(ctx, q, rentalID, returnedAt, adminID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff == 1, nil
}

func (r *repo) Dismiss(ctx context.Context, rentalID, adminID int64, decidedAt time.Time) (bool, error) {
	const q = `
		UPDATE rentals
		SET status = 'dismissed',
			decidedat = $2,
			decidedby = $3
		WHERE rentalid = $1
		AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, q, rentalID, decidedAt, adminID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff == 1, nil
}

func (r *repo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	const q = `
		UPDATE rentals
		SET status = 'not_returned'
		WHERE status = 'approved'
		AND enddate < $1`
	res, err := r.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

const listColumns = `
	r.rentalid, r.userid, r.stockid, r.status, r.note, r.startdate, r.enddate,
	r.createdat, r.decidedat, r.decidedby, r.returnedat, r.returnedby,
	s.openlibraryid, s.quality, b.title, b.author,
	'https://covers.openlibrary.org/b/olid/' || s.openlibraryid || '-M.jpg?default=false' AS coverurl`

const listJoins = `
	FROM rentals r
	JOIN stock s ON s.stockid = r.stockid
	JOIN book b ON b.openlibraryid = s.openlibraryid`

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.RentalRow, error) {
	q := `SELECT` + listColumns + listJoins + `
		WHERE r.userid = $1
		ORDER BY r.createdat DESC, r.rentalid DESC`
	return r.scanRows(ctx, q, false, userID)
}

func (r *repo) ListPending(ctx context.Context) ([]model.RentalRow, error) {
	// Oldest first so the longest-waiting request surfaces on top.
	q := `SELECT` + listColumns + `, u.email, u.name` + listJoins + `
		JOIN users u ON u.userid = r.userid
		WHERE r.status = 'pending'
		ORDER BY r.createdat ASC, r.rentalid ASC`
	return r.scanRows(ctx, q, true)
}

func (r *repo) ListApproved(ctx context.Context) ([]model.RentalRow, error) {
	q := `SELECT` + listColumns + `, u.email, u.name` + listJoins + `
		JOIN users u ON u.userid = r.userid
		WHERE r.status = 'approved'
		ORDER BY r.decidedat DESC, r.rentalid DESC`
	return r.scanRows(ctx, q, true)
}

func (r *repo) ListActive(ctx context.Context) ([]model.RentalRow, error) {
	// Soonest-due first so overdue and near-due items surface on top.
	q := `SELECT` + listColumns + `, u.email, u.name` + listJoins + `
		JOIN users u ON u.userid = r.userid
		WHERE r.status IN ('approved', 'not_returned')
		ORDER BY r.enddate ASC, r.rentalid ASC`
	return r.scanRows(ctx, q, true)
}

func (r *repo) scanRows(ctx context.Context, q string, withUser bool, args ...any) ([]model.RentalRow, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.RentalRow{}
	for rows.Next() {
		var row model.RentalRow
		dst := []any{
			&row.ID, &row.UserID, &row.StockID, &row.Status, &row.Note,
			&row.StartDate, &row.EndDate, &row.CreatedAt,
			&row.DecidedAt, &row.DecidedBy, &row.ReturnedAt, &row.ReturnedBy,
			&row.OpenLibraryID, &row.Quality, &row.Title, &row.Author, &row.CoverURL,
		}
		if withUser {
			dst = append(dst, &row.UserEmail, &row.UserName)
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
