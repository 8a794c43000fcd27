package rentalsvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/carry-jpg/LibraryDatabase/model"
	rentalrepo "github.com/carry-jpg/LibraryDatabase/repository/rental"
)

// errors used by controllers

type ErrCode string

const (
	ErrBadDates      ErrCode = "BAD_DATES"
	ErrNotFound      ErrCode = "NOT_FOUND"
	ErrNotPending    ErrCode = "NOT_PENDING"
	ErrStockNotFound ErrCode = "STOCK_NOT_FOUND"
	ErrNoStock       ErrCode = "NO_STOCK"
	ErrNotActive     ErrCode = "NOT_ACTIVE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Repo is the rental storage surface the engine needs.
type Repo = rentalrepo.Repo

// StockRepo is the slice of the inventory store the engine touches.
type StockRepo interface {
	Exists(ctx context.Context, stockID int64) (bool, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, stockID int64) (*model.StockItem, error)
	Decrement(ctx context.Context, tx *sql.Tx, stockID int64) (bool, error)
	Increment(ctx context.Context, tx *sql.Tx, stockID int64) error
}

type Service interface {
	// Request inserts a pending rental. Requesting never reserves a copy;
	// availability is checked at approval time.
	Request(ctx context.Context, userID, stockID int64, note string) (int64, error)

	// Approve decides a pending rental: decrements stock by one and sets
	// the rental window, atomically.
	Approve(ctx context.Context, adminID, rentalID int64, startAt, endAt string) error

	// Dismiss rejects a pending rental. No stock effect.
	Dismiss(ctx context.Context, adminID, rentalID int64) error

	// Complete returns the copy to inventory and closes the rental.
	Complete(ctx context.Context, adminID, rentalID int64) error

	ListMine(ctx context.Context, userID int64) ([]model.RentalRow, error)
	ListRequests(ctx context.Context) ([]model.RentalRow, error)
	ListApproved(ctx context.Context) ([]model.RentalRow, error)
	ListActive(ctx context.Context) ([]model.RentalRow, error)

	// SweepOverdue flips approved rentals past their end date to
	// not_returned. Idempotent; runs before every list read.
	SweepOverdue(ctx context.Context) (int64, error)
}

// ----- Service implementation -----

type service struct {
	db  *sql.DB
	r   Repo
	st  StockRepo
	now func() time.Time
}

func New(db *sql.DB, r Repo, st StockRepo) Service {
	return &service{db: db, r: r, st: st, now: func() time.Time { return time.Now().UTC() }}
}

// NewWithNow injects the time source; tests pin it.
func NewWithNow(db *sql.DB, r Repo, st StockRepo, now func() time.Time) Service {
	return &service{db: db, r: r, st: st, now: now}
}

func (s *service) Request(ctx context.Context, userID, stockID int64, note string) (int64, error) {
	ok, err := s.st.Exists(ctx, stockID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, makeErr(ErrStockNotFound)
	}

	var notePtr *string
	if n := strings.TrimSpace(note); n != "" {
		notePtr = &n
	}
	return s.r.Insert(ctx, userID, stockID, notePtr)
}

// dateLayouts are the wire formats the admin UI sends.
var dateLayouts = []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, makeErr(ErrBadDates)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, makeErr(ErrBadDates)
}

func (s *service) Approve(ctx context.Context, adminID, rentalID int64, startAt, endAt string) (err error) {
	start, err := parseDate(startAt)
	if err != nil {
		return err
	}
	end, err := parseDate(endAt)
	if err != nil {
		return err
	}
	if !end.After(start) {
		return makeErr(ErrBadDates)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Lock order is fixed: rental row first, then stock row.
	rental, err := s.r.GetForUpdate(ctx, tx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if rental.Status != model.RentalPending {
		return makeErr(ErrNotPending)
	}

	stock, err := s.st.GetForUpdate(ctx, tx, rental.StockID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrStockNotFound)
		}
		return err
	}
	if stock.Quantity <= 0 {
		return makeErr(ErrNoStock)
	}

	ok, err := s.st.Decrement(ctx, tx, rental.StockID)
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrNoStock)
	}

	// Status re-checked at write time: a racing approval that already won
	// leaves zero affected rows here.
	ok, err = s.r.Approve(ctx, tx, rentalID, start, end, adminID, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrNotPending)
	}

	return tx.Commit()
}

func (s *service) Dismiss(ctx context.Context, adminID, rentalID int64) error {
	ok, err := s.r.Dismiss(ctx, rentalID, adminID, s.now())
	if err != nil {
		return err
	}
	if !ok {
		// Single conditional update: zero rows means the rental is missing
		// or already decided.
		return makeErr(ErrNotPending)
	}
	return nil
}

func (s *service) Complete(ctx context.Context, adminID, rentalID int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rental, err := s.r.GetForUpdate(ctx, tx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if rental.Status != model.RentalApproved && rental.Status != model.RentalNotReturned {
		return makeErr(ErrNotActive)
	}

	if _, err = s.st.GetForUpdate(ctx, tx, rental.StockID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrStockNotFound)
		}
		return err
	}
	if err = s.st.Increment(ctx, tx, rental.StockID); err != nil {
		return err
	}

	ok, err := s.r.Complete(ctx, tx, rentalID, adminID, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrNotActive)
	}

	return tx.Commit()
}

func (s *service) SweepOverdue(ctx context.Context) (int64, error) {
	return s.r.MarkOverdue(ctx, s.now())
}

func (s *service) ListMine(ctx context.Context, userID int64) ([]model.RentalRow, error) {
	if _, err := s.SweepOverdue(ctx); err != nil {
		return nil, err
	}
	return s.r.ListByUser(ctx, userID)
}

func (s *service) ListRequests(ctx context.Context) ([]model.RentalRow, error) {
	if _, err := s.SweepOverdue(ctx); err != nil {
		return nil, err
	}
	return s.r.ListPending(ctx)
}

func (s *service) ListApproved(ctx context.Context) ([]model.RentalRow, error) {
	if _, err := s.SweepOverdue(ctx); err != nil {
		return nil, err
	}
	return s.r.ListApproved(ctx)
}

func (s *service) ListActive(ctx context.Context) ([]model.RentalRow, error) {
	if _, err := s.SweepOverdue(ctx); err != nil {
		return nil, err
	}
	return s.r.ListActive(ctx)
}
