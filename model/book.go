// model/book.go
package model

// Book is catalog metadata keyed by the OpenLibrary edition id.
type Book struct {
	OpenLibraryID string  `json:"openlibraryid"`
	ISBN          string  `json:"isbn"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	ReleaseYear   int     `json:"releaseyear"`
	Publisher     *string `json:"publisher,omitempty"`
	Language      *string `json:"language,omitempty"`
	Pages         *int    `json:"pages,omitempty"`
}

type ImportEditionReq struct {
	OLID string `json:"olid" validate:"required"`
}

type ResolveEditionsReq struct {
	ISBNs []string `json:"isbns" validate:"required,min=1,dive,required"`
}
