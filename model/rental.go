// model/rental.go
package model

import "time"

type RentalStatus string

const (
	RentalPending     RentalStatus = "pending"
	RentalApproved    RentalStatus = "approved"
	RentalDismissed   RentalStatus = "dismissed"
	RentalNotReturned RentalStatus = "not_returned"
	RentalCompleted   RentalStatus = "completed"
)

type Rental struct {
	ID         int64        `json:"rentalid"`
	UserID     int64        `json:"userid"`
	StockID    int64        `json:"stockid"`
	Status     RentalStatus `json:"status"`
	Note       *string      `json:"note,omitempty"`
	StartDate  *time.Time   `json:"startat,omitempty"`
	EndDate    *time.Time   `json:"endat,omitempty"`
	CreatedAt  time.Time    `json:"createdat"`
	DecidedAt  *time.Time   `json:"decidedat,omitempty"`
	DecidedBy  *int64       `json:"decidedby,omitempty"`
	ReturnedAt *time.Time   `json:"returnedat,omitempty"`
	ReturnedBy *int64       `json:"returnedby,omitempty"`
}

// RentalRow is a rental joined with stock and book metadata, the shape the
// user and admin rental lists render.
type RentalRow struct {
	Rental
	OpenLibraryID string `json:"openlibraryid"`
	Quality       int    `json:"quality"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	CoverURL      string `json:"coverurl"`
	UserEmail     string `json:"useremail,omitempty"`
	UserName      string `json:"username,omitempty"`
}
