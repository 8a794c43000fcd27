package rentalsvc

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/carry-jpg/LibraryDatabase/model"
)

// The engine runs inside real transactions; an in-memory database hands the
// tests genuine *sql.Tx values while the mocks below capture every call.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type mockRentalRepo struct {
	insertFn       func(ctx context.Context, userID, stockID int64, note *string) (int64, error)
	getForUpdateFn func(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error)
	approveFn      func(ctx context.Context, tx *sql.Tx, rentalID int64, start, end time.Time, adminID int64, decidedAt time.Time) (bool, error)
	completeFn     func(ctx context.Context, tx *sql.Tx, rentalID, adminID int64, returnedAt time.Time) (bool, error)
	dismissFn      func(ctx context.Context, rentalID, adminID int64, decidedAt time.Time) (bool, error)
	markOverdueFn  func(ctx context.Context, now time.Time) (int64, error)
	listByUserFn   func(ctx context.Context, userID int64) ([]model.RentalRow, error)
	listPendingFn  func(ctx context.Context) ([]model.RentalRow, error)
	listApprovedFn func(ctx context.Context) ([]model.RentalRow, error)
	listActiveFn   func(ctx context.Context) ([]model.RentalRow, error)
}

var _ Repo = (*mockRentalRepo)(nil)

func (m *mockRentalRepo) Insert(ctx context.Context, userID, stockID int64, note *string) (int64, error) {
	if m.insertFn == nil {
		return 1, nil
	}
	return m.insertFn(ctx, userID, stockID, note)
}

func (m *mockRentalRepo) GetForUpdate(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error) {
	if m.getForUpdateFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.getForUpdateFn(ctx, tx, rentalID)
}

func (m *mockRentalRepo) Approve(ctx context.Context, tx *sql.Tx, rentalID int64, start, end time.Time, adminID int64, decidedAt time.Time) (bool, error) {
	if m.approveFn == nil {
		return true, nil
	}
	return m.approveFn(ctx, tx, rentalID, start, end, adminID, decidedAt)
}

func (m *mockRentalRepo) Complete(ctx context.Context, tx *sql.Tx, rentalID, adminID int64, returnedAt time.Time) (bool, error) {
	if m.completeFn == nil {
		return true, nil
	}
	return m.completeFn(ctx, tx, rentalID, adminID, returnedAt)
}

func (m *mockRentalRepo) Dismiss(ctx context.Context, rentalID, adminID int64, decidedAt time.Time) (bool, error) {
	if m.dismissFn == nil {
		return true, nil
	}
	return m.dismissFn(ctx, rentalID, adminID, decidedAt)
}

func (m *mockRentalRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	if m.markOverdueFn == nil {
		return 0, nil
	}
	return m.markOverdueFn(ctx, now)
}

func (m *mockRentalRepo) ListByUser(ctx context.Context, userID int64) ([]model.RentalRow, error) {
	if m.listByUserFn == nil {
		return nil, nil
	}
	return m.listByUserFn(ctx, userID)
}

func (m *mockRentalRepo) ListPending(ctx context.Context) ([]model.RentalRow, error) {
	if m.listPendingFn == nil {
		return nil, nil
	}
	return m.listPendingFn(ctx)
}

func (m *mockRentalRepo) ListApproved(ctx context.Context) ([]model.RentalRow, error) {
	if m.listApprovedFn == nil {
		return nil, nil
	}
	return m.listApprovedFn(ctx)
}

func (m *mockRentalRepo) ListActive(ctx context.Context) ([]model.RentalRow, error) {
	if m.listActiveFn == nil {
		return nil, nil
	}
	return m.listActiveFn(ctx)
}

type mockStockRepo struct {
	existsFn       func(ctx context.Context, stockID int64) (bool, error)
	getForUpdateFn func(ctx context.Context, tx *sql.Tx, stockID int64) (*model.StockItem, error)
	decrementFn    func(ctx context.Context, tx *sql.Tx, stockID int64) (bool, error)
	incrementFn    func(ctx context.Context, tx *sql.Tx, stockID int64) error
}

var _ StockRepo = (*mockStockRepo)(nil)

func (m *mockStockRepo) Exists(ctx context.Context, stockID int64) (bool, error) {
	if m.existsFn == nil {
		return true, nil
	}
	return m.existsFn(ctx, stockID)
}

func (m *mockStockRepo) GetForUpdate(ctx context.Context, tx *sql.Tx, stockID int64) (*model.StockItem, error) {
	if m.getForUpdateFn == nil {
		return &model.StockItem{ID: stockID, Quantity: 1}, nil
	}
	return m.getForUpdateFn(ctx, tx, stockID)
}

func (m *mockStockRepo) Decrement(ctx context.Context, tx *sql.Tx, stockID int64) (bool, error) {
	if m.decrementFn == nil {
		return true, nil
	}
	return m.decrementFn(ctx, tx, stockID)
}

func (m *mockStockRepo) Increment(ctx context.Context, tx *sql.Tx, stockID int64) error {
	if m.incrementFn == nil {
		return nil
	}
	return m.incrementFn(ctx, tx, stockID)
}

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func newSvc(t *testing.T, r *mockRentalRepo, st *mockStockRepo) Service {
	t.Helper()
	return NewWithNow(newTestDB(t), r, st, func() time.Time { return testNow })
}

func pendingRental(id, stockID int64) *model.Rental {
	return &model.Rental{ID: id, UserID: 7, StockID: stockID, Status: model.RentalPending}
}

// --- Request ---

func TestRequest_Success(t *testing.T) {
	ctx := context.Background()

	var gotNote *string
	r := &mockRentalRepo{
		insertFn: func(ctx context.Context, userID, stockID int64, note *string) (int64, error) {
			require.Equal(t, int64(7), userID)
			require.Equal(t, int64(3), stockID)
			gotNote = note
			return 41, nil
		},
	}
	svc := newSvc(t, r, &mockStockRepo{})

	id, err := svc.Request(ctx, 7, 3, "  please hold until friday  ")
	require.NoError(t, err)
	require.Equal(t, int64(41), id)
	require.NotNil(t, gotNote)
	require.Equal(t, "please hold until friday", *gotNote)
}

func TestRequest_EmptyNoteStoredAsNull(t *testing.T) {
	ctx := context.Background()

	r := &mockRentalRepo{
		insertFn: func(ctx context.Context, userID, stockID int64, note *string) (int64, error) {
			require.Nil(t, note)
			return 1, nil
		},
	}
	svc := newSvc(t, r, &mockStockRepo{})

	_, err := svc.Request(ctx, 7, 3, "   ")
	require.NoError(t, err)
}

func TestRequest_StockMissing(t *testing.T) {
	ctx := context.Background()

	st := &mockStockRepo{
		existsFn: func(ctx context.Context, stockID int64) (bool, error) { return false, nil },
	}
	svc := newSvc(t, &mockRentalRepo{}, st)

	_, err := svc.Request(ctx, 7, 999, "")
	require.Error(t, err)
	require.Equal(t, ErrStockNotFound, Code(err))
}

// Requesting never touches inventory, even at zero quantity.
func TestRequest_DoesNotReserve(t *testing.T) {
	ctx := context.Background()

	decrements := 0
	st := &mockStockRepo{
		decrementFn: func(ctx context.Context, tx *sql.Tx, stockID int64) (bool, error) {
			decrements++
			return true, nil
		},
	}
	svc := newSvc(t, &mockRentalRepo{}, st)

	_, err := svc.Request(ctx, 7, 3, "")
	require.NoError(t, err)
	require.Zero(t, decrements)
}

// --- Approve ---

func TestApprove_Success(t *testing.T) {
	ctx := context.Background()

	decrements := 0
	var gotStart, gotEnd, gotDecidedAt time.Time
	r := &mockRentalRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error) {
			require.NotNil(t, tx)
			return pendingRental(rentalID, 3), nil
		},
		approveFn: func(ctx context.Context, tx *sql.Tx, rentalID int64, start, end time.Time, adminID int64, decidedAt time.Time) (bool, error) {
			require.Equal(t, int64(1), adminID)
			gotStart, gotEnd, gotDecidedAt = start, end, decidedAt
			return true, nil
		},
	}
	st := &mockStockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, stockID int64) (*model.StockItem, error) {
			require.Equal(t, int64(3), stockID)
			return &model.StockItem{ID: stockID, Quantity: 2}, nil
		},
		decrementFn: func(ctx context.Context, tx *sql.Tx, stockID int64) (bool, error) {
			decrements++
			return true, nil
		},
	}
	svc := newSvc(t, r, st)

	err := svc.Approve(ctx, 1, 41, "2026-01-16 10:00:00", "2026-01-23 10:00:00")
	require.NoError(t, err)
	require.Equal(t, 1, decrements)
	require.Equal(t, time.Date(2026, 1, 16, 10, 0, 0, 0, time.UTC), gotStart)
	require.Equal(t, time.Date(2026, 1, 23, 10, 0, 0, 0, time.UTC), gotEnd)
	require.Equal(t, testNow, gotDecidedAt)
}

func TestApprove_DateOnlyAndRFC3339Accepted(t *testing.T) {
	ctx := context.Background()

	r := &mockRentalRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error) {
			return pendingRental(rentalID, 3), nil
		},
	}
	svc := newSvc(t, r, &mockStockRepo{})

	require.NoError(t, svc.Approve(ctx, 1, 41, "2026-01-16", "2026-01-23"))
	require.NoError(t, svc.Approve(ctx, 1, 42, "2026-01-16T10:00:00Z", "2026-01-23T10:00:00Z"))
}

func TestApprove_BadDates(t *testing.T) {
	ctx := context.Background()
	svc := newSvc(t, &mockRentalRepo{}, &mockStockRepo{})

	cases := []struct {
		name           string
		startAt, endAt string
	}{
		{"empty start", "", "2026-01-23 10:00:00"},
		{"empty end", "2026-01-16 10:00:00", ""},
		{"garbage", "not-a-date", "2026-01-23 10:00:00"},
		{"end before start", "2026-01-23 10:00:00", "2026-01-16 10:00:00"},
		{"end equals start", "2026-01-16 10:00:00", "2026-01-16 10:00:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Approve(ctx, 1, 41, tc.startAt, tc.endAt)
			require.Error(t, err)
			require.Equal(t, ErrBadDates, Code(err))
		})
	}
}

func TestApprove_RentalNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newSvc(t, &mockRentalRepo{}, &mockStockRepo{})

	err := svc.Approve(ctx, 1, 999, "2026-01-16", "2026-01-23")
	require.Error(t, err)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestApprove_AlreadyDecided(t *testing.T) {
	ctx := context.Background()

	decrements := 0
	for _, status := range []model.RentalStatus{
		model.RentalApproved, model.RentalDismissed,
		model.RentalNotReturned, model.RentalCompleted,
	} {
		r := &mockRentalRepo{
			getForUpdateFn: func(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error) {
				return &model.Rental{ID: rentalID, StockID: 3, Status: status}, nil
			},
		}
		st := &mockStockRepo{
			decrementFn: func(ctx context.Context, tx *sql.Tx, stockID int64) (bool, error) {
				decrements++
				return true, nil
			},
		}
		svc := newSvc(t, r, st)

		err := svc.Approve(ctx, 1, 41, "2026-01-16", "2026-01-23")
		require.Error(t, err, string(status))
		require.Equal(t, ErrNotPending, Code(err), string(status))
	}
	require.Zero(t, decrements)
}

func TestApprove_OutOfStock(t *testing.T) {
	ctx := context.Background()

	decrements := 0
	r := &mockRentalRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error) {
			return pendingRental(rentalID, 3), nil
		},
	}
	st := &mockStockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, stockID int64) (*model.StockItem, error) {
			return &model.StockItem{ID: stockID, Quantity: 0}, nil
		},
		decrementFn: func(ctx context.Context, tx *sql.Tx, stockID int64) (bool, error) {
			decrements++
			return true, nil
		},
	}
	svc := newSvc(t, r, st)

	err := svc.Approve(ctx, 1, 41, "2026-01-16", "2026-01-23")
	require.Error(t, err)
	require.Equal(t, ErrNoStock, Code(err))
	require.Zero(t, decrements)
}

// The guarded decrement is the last word on availability: losing it aborts
// the approval even when the locked read looked fine.
func TestApprove_DecrementRace(t *testing.T) {
	ctx := context.Background()

	r := &mockRentalRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error) {
			return pendingRental(rentalID, 3), nil
		},
	}
	st := &mockStockRepo{
		decrementFn: func(ctx context.Context, tx *sql.Tx, stockID int64) (bool, error) {
			return false, nil
		},
	}
	svc := newSvc(t, r, st)

	err := svc.Approve(ctx, 1, 41, "2026-01-16", "2026-01-23")
	require.Error(t, err)
	require.Equal(t, ErrNoStock, Code(err))
}

// A racing approval that commits first leaves the conditional status update
// with zero rows; the loser reports a decided rental.
func TestApprove_StatusRace(t *testing.T) {
	ctx := context.Background()

	r := &mockRentalRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error) {
			return pendingRental(rentalID, 3), nil
		},
		approveFn: func(ctx context.Context, tx *sql.Tx, rentalID int64, start, end time.Time, adminID int64, decidedAt time.Time) (bool, error) {
			return false, nil
		},
	}
	svc := newSvc(t, r, &mockStockRepo{})

	err := svc.Approve(ctx, 1, 41, "2026-01-16", "2026-01-23")
	require.Error(t, err)
	require.Equal(t, ErrNotPending, Code(err))
}

// --- Dismiss ---

func TestDismiss_Success(t *testing.T) {
	ctx := context.Background()

	decrements := 0
	r := &mockRentalRepo{
		dismissFn: func(ctx context.Context, rentalID, adminID int64, decidedAt time.Time) (bool, error) {
			require.Equal(t, int64(41), rentalID)
			require.Equal(t, int64(1), adminID)
			require.Equal(t, testNow, decidedAt)
			return true, nil
		},
	}
	st := &mockStockRepo{
		decrementFn: func(ctx context.Context, tx *sql.Tx, stockID int64) (bool, error) {
			decrements++
			return true, nil
		},
	}
	svc := newSvc(t, r, st)

	require.NoError(t, svc.Dismiss(ctx, 1, 41))
	require.Zero(t, decrements)
}

func TestDismiss_NotPending(t *testing.T) {
	ctx := context.Background()

	r := &mockRentalRepo{
		dismissFn: func(ctx context.Context, rentalID, adminID int64, decidedAt time.Time) (bool, error) {
			return false, nil
		},
	}
	svc := newSvc(t, r, &mockStockRepo{})

	err := svc.Dismiss(ctx, 1, 41)
	require.Error(t, err)
	require.Equal(t, ErrNotPending, Code(err))
}

// --- Complete ---

func TestComplete_Success(t *testing.T) {
	ctx := context.Background()

	increments := 0
	r := &mockRentalRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error) {
			return &model.Rental{ID: rentalID, StockID: 3, Status: model.RentalApproved}, nil
		},
		completeFn: func(ctx context.Context, tx *sql.Tx, rentalID, adminID int64, returnedAt time.Time) (bool, error) {
			require.Equal(t, testNow, returnedAt)
			return true, nil
		},
	}
	st := &mockStockRepo{
		incrementFn: func(ctx context.Context, tx *sql.Tx, stockID int64) error {
			require.Equal(t, int64(3), stockID)
			increments++
			return nil
		},
	}
	svc := newSvc(t, r, st)

	require.NoError(t, svc.Complete(ctx, 1, 41))
	require.Equal(t, 1, increments)
}

// An overdue rental returns the same way an on-time one does.
func TestComplete_NotReturned(t *testing.T) {
	ctx := context.Background()

	r := &mockRentalRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error) {
			return &model.Rental{ID: rentalID, StockID: 3, Status: model.RentalNotReturned}, nil
		},
	}
	svc := newSvc(t, r, &mockStockRepo{})

	require.NoError(t, svc.Complete(ctx, 1, 41))
}

func TestComplete_NotActive(t *testing.T) {
	ctx := context.Background()

	increments := 0
	for _, status := range []model.RentalStatus{
		model.RentalPending, model.RentalDismissed, model.RentalCompleted,
	} {
		r := &mockRentalRepo{
			getForUpdateFn: func(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error) {
				return &model.Rental{ID: rentalID, StockID: 3, Status: status}, nil
			},
		}
		st := &mockStockRepo{
			incrementFn: func(ctx context.Context, tx *sql.Tx, stockID int64) error {
				increments++
				return nil
			},
		}
		svc := newSvc(t, r, st)

		err := svc.Complete(ctx, 1, 41)
		require.Error(t, err, string(status))
		require.Equal(t, ErrNotActive, Code(err), string(status))
	}
	require.Zero(t, increments)
}

func TestComplete_NotFound(t *testing.T) {
	ctx := context.Background()
	svc := newSvc(t, &mockRentalRepo{}, &mockStockRepo{})

	err := svc.Complete(ctx, 1, 999)
	require.Error(t, err)
	require.Equal(t, ErrNotFound, Code(err))
}

// A racing return winning the conditional update means no double increment
// sticks; the loser sees the rental as already closed.
func TestComplete_StatusRace(t *testing.T) {
	ctx := context.Background()

	r := &mockRentalRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error) {
			return &model.Rental{ID: rentalID, StockID: 3, Status: model.RentalApproved}, nil
		},
		completeFn: func(ctx context.Context, tx *sql.Tx, rentalID, adminID int64, returnedAt time.Time) (bool, error) {
			return false, nil
		},
	}
	svc := newSvc(t, r, &mockStockRepo{})

	err := svc.Complete(ctx, 1, 41)
	require.Error(t, err)
	require.Equal(t, ErrNotActive, Code(err))
}

// --- Overdue sweep ---

func TestSweepOverdue_UsesInjectedClock(t *testing.T) {
	ctx := context.Background()

	r := &mockRentalRepo{
		markOverdueFn: func(ctx context.Context, now time.Time) (int64, error) {
			require.Equal(t, testNow, now)
			return 2, nil
		},
	}
	svc := newSvc(t, r, &mockStockRepo{})

	n, err := svc.SweepOverdue(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}

func TestListsSweepFirst(t *testing.T) {
	ctx := context.Background()

	sweeps := 0
	r := &mockRentalRepo{
		markOverdueFn: func(ctx context.Context, now time.Time) (int64, error) {
			sweeps++
			return 0, nil
		},
	}
	svc := newSvc(t, r, &mockStockRepo{})

	_, err := svc.ListMine(ctx, 7)
	require.NoError(t, err)
	_, err = svc.ListRequests(ctx)
	require.NoError(t, err)
	_, err = svc.ListApproved(ctx)
	require.NoError(t, err)
	_, err = svc.ListActive(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, sweeps)
}

// --- Lifecycle round trip ---

// Approving then completing a rental leaves inventory where it started.
func TestLifecycle_InventoryRoundTrip(t *testing.T) {
	ctx := context.Background()

	qty := 2
	status := model.RentalPending
	r := &mockRentalRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error) {
			return &model.Rental{ID: rentalID, StockID: 3, Status: status}, nil
		},
		approveFn: func(ctx context.Context, tx *sql.Tx, rentalID int64, start, end time.Time, adminID int64, decidedAt time.Time) (bool, error) {
			if status != model.RentalPending {
				return false, nil
			}
			status = model.RentalApproved
			return true, nil
		},
		completeFn: func(ctx context.Context, tx *sql.Tx, rentalID, adminID int64, returnedAt time.Time) (bool, error) {
			if status != model.RentalApproved && status != model.RentalNotReturned {
				return false, nil
			}
			status = model.RentalCompleted
			return true, nil
		},
	}
	st := &mockStockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, stockID int64) (*model.StockItem, error) {
			return &model.StockItem{ID: stockID, Quantity: qty}, nil
		},
		decrementFn: func(ctx context.Context, tx *sql.Tx, stockID int64) (bool, error) {
			if qty <= 0 {
				return false, nil
			}
			qty--
			return true, nil
		},
		incrementFn: func(ctx context.Context, tx *sql.Tx, stockID int64) error {
			qty++
			return nil
		},
	}
	svc := newSvc(t, r, st)

	require.NoError(t, svc.Approve(ctx, 1, 41, "2026-01-16", "2026-01-23"))
	require.Equal(t, 1, qty)
	require.Equal(t, model.RentalApproved, status)

	// Second decision on the same rental is rejected and leaves stock alone.
	err := svc.Approve(ctx, 1, 41, "2026-01-16", "2026-01-23")
	require.Error(t, err)
	require.Equal(t, ErrNotPending, Code(err))

	require.NoError(t, svc.Complete(ctx, 1, 41))
	require.Equal(t, 2, qty)
	require.Equal(t, model.RentalCompleted, status)

	// Completing twice fails; the copy is not returned twice.
	err = svc.Complete(ctx, 1, 41)
	require.Error(t, err)
	require.Equal(t, ErrNotActive, Code(err))
	require.Equal(t, 2, qty)
}
