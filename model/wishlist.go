// model/wishlist.go
package model

import "time"

// WishlistEntry keeps a denormalized snapshot of the book so the wishlist
// renders without a catalog lookup.
type WishlistEntry struct {
	UserID        int64     `json:"userid"`
	OpenLibraryID string    `json:"openlibraryid"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	CoverURL      string    `json:"coverurl"`
	ReleaseYear   int       `json:"releaseyear"`
	CreatedAt     time.Time `json:"createdat"`
}

// WishlistSummaryRow is the admin aggregate: how many users wish for an
// edition.
type WishlistSummaryRow struct {
	OpenLibraryID string `json:"openlibraryid"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Count         int64  `json:"count"`
}

type WishlistToggleReq struct {
	OLID        string `json:"olid" validate:"required"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	CoverURL    string `json:"coverurl"`
	ReleaseYear int    `json:"releaseyear"`
}
