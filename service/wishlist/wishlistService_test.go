package wishlistsvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carry-jpg/LibraryDatabase/model"
	wishlistrepo "github.com/carry-jpg/LibraryDatabase/repository/wishlist"
)

type mockWishlistRepo struct {
	addFn     func(ctx context.Context, e *model.WishlistEntry) error
	removeFn  func(ctx context.Context, userID int64, olid string) (bool, error)
	hasFn     func(ctx context.Context, userID int64, olid string) (bool, error)
	idsFn     func(ctx context.Context, userID int64) ([]string, error)
	summaryFn func(ctx context.Context) ([]model.WishlistSummaryRow, error)
}

var _ wishlistrepo.Repo = (*mockWishlistRepo)(nil)

func (m *mockWishlistRepo) Add(ctx context.Context, e *model.WishlistEntry) error {
	if m.addFn == nil {
		return nil
	}
	return m.addFn(ctx, e)
}

func (m *mockWishlistRepo) Remove(ctx context.Context, userID int64, olid string) (bool, error) {
	if m.removeFn == nil {
		return true, nil
	}
	return m.removeFn(ctx, userID, olid)
}

func (m *mockWishlistRepo) Has(ctx context.Context, userID int64, olid string) (bool, error) {
	if m.hasFn == nil {
		return false, nil
	}
	return m.hasFn(ctx, userID, olid)
}

func (m *mockWishlistRepo) IDs(ctx context.Context, userID int64) ([]string, error) {
	if m.idsFn == nil {
		return nil, nil
	}
	return m.idsFn(ctx, userID)
}

func (m *mockWishlistRepo) ListByUser(ctx context.Context, userID int64) ([]model.WishlistEntry, error) {
	return nil, nil
}

func (m *mockWishlistRepo) Summary(ctx context.Context) ([]model.WishlistSummaryRow, error) {
	if m.summaryFn == nil {
		return nil, nil
	}
	return m.summaryFn(ctx)
}

func TestToggle_AddsWhenAbsent(t *testing.T) {
	ctx := context.Background()

	var added *model.WishlistEntry
	m := &mockWishlistRepo{
		addFn: func(ctx context.Context, e *model.WishlistEntry) error {
			added = e
			return nil
		},
	}
	svc := New(m)

	wished, err := svc.Toggle(ctx, 7, model.WishlistToggleReq{
		OLID:        " OL123M ",
		Title:       " A Wizard of Earthsea ",
		Author:      "Ursula K. Le Guin",
		ReleaseYear: 1968,
	})
	require.NoError(t, err)
	require.True(t, wished)
	require.NotNil(t, added)
	require.Equal(t, int64(7), added.UserID)
	require.Equal(t, "OL123M", added.OpenLibraryID)
	require.Equal(t, "A Wizard of Earthsea", added.Title)
	require.Equal(t, 1968, added.ReleaseYear)
}

func TestToggle_RemovesWhenPresent(t *testing.T) {
	ctx := context.Background()

	removed := false
	m := &mockWishlistRepo{
		hasFn: func(ctx context.Context, userID int64, olid string) (bool, error) { return true, nil },
		removeFn: func(ctx context.Context, userID int64, olid string) (bool, error) {
			require.Equal(t, "OL123M", olid)
			removed = true
			return true, nil
		},
	}
	svc := New(m)

	wished, err := svc.Toggle(ctx, 7, model.WishlistToggleReq{OLID: "OL123M"})
	require.NoError(t, err)
	require.False(t, wished)
	require.True(t, removed)
}

func TestToggle_EmptyOLID(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockWishlistRepo{})

	_, err := svc.Toggle(ctx, 7, model.WishlistToggleReq{OLID: "   "})
	require.Error(t, err)
	require.Equal(t, ErrBadInput, Code(err))
}

func TestSummary(t *testing.T) {
	ctx := context.Background()

	m := &mockWishlistRepo{
		summaryFn: func(ctx context.Context) ([]model.WishlistSummaryRow, error) {
			return []model.WishlistSummaryRow{
				{OpenLibraryID: "OL1M", Count: 3},
				{OpenLibraryID: "OL2M", Count: 1},
			}, nil
		},
	}
	svc := New(m)

	rows, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, int64(3), rows[0].Count)
}
