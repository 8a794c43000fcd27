// model/stock.go
package model

// StockItem is one physical-copy-count row for a book and condition grade.
type StockItem struct {
	ID            int64  `json:"stockid"`
	OpenLibraryID string `json:"openlibraryid"`
	Quality       int    `json:"quality"`
	Quantity      int    `json:"quantity"`
}

// StockRow is the stock list shape the library UI renders: a stock item
// joined with its book metadata plus the OLID cover URL.
type StockRow struct {
	StockID       int64   `json:"stockid"`
	OpenLibraryID string  `json:"openlibraryid"`
	Quality       int     `json:"quality"`
	Quantity      int     `json:"quantity"`
	ISBN          string  `json:"isbn"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	ReleaseYear   int     `json:"releaseyear"`
	Publisher     *string `json:"publisher"`
	Language      *string `json:"language"`
	Pages         *int    `json:"pages"`
	CoverURL      string  `json:"coverurl"`
}

type SetStockReq struct {
	OLID            string `json:"olid" validate:"required"`
	Quality         int    `json:"quality" validate:"required,gte=1,lte=5"`
	Quantity        *int   `json:"quantity" validate:"required,gte=0"`
	ImportIfMissing *bool  `json:"importIfMissing"`
}

type DeleteStockReq struct {
	StockID int64 `json:"stockId" validate:"required,gt=0"`
}
