package openlibrary

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/carry-jpg/LibraryDatabase/model"
)

// MappedEdition is an OpenLibrary edition payload reduced to the internal
// book shape plus display extras the catalog does not store.
type MappedEdition struct {
	model.Book
	Description string   `json:"description,omitempty"`
	Subjects    []string `json:"subjects,omitempty"`
	CoverID     *int     `json:"coveri,omitempty"`
	CoverURL    string   `json:"coverurl,omitempty"`
}

var (
	langKeyRe  = regexp.MustCompile(`(?i)^/languages/([a-z]{3})`)
	yearRe     = regexp.MustCompile(`(\d{4})`)
	olidKeyRe  = regexp.MustCompile(`(?i)/(books|works)/([A-Z0-9]+[MW])`)
	spaceRunRe = regexp.MustCompile(`[ \t]+`)
	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

// MapEdition maps an OpenLibrary edition JSON payload into the internal
// book shape. olid overrides the id parsed from edition.key when non-empty.
func MapEdition(edition map[string]any, olid string) MappedEdition {
	if olid == "" {
		if key, ok := edition["key"].(string); ok {
			olid = olidFromKey(key)
		}
	}
	if olid == "" {
		if s, ok := edition["olid"].(string); ok {
			olid = s
		}
	}

	title := str(edition["title"])

	publisher := firstString(edition["publishers"])
	if publisher == "" {
		publisher = str(edition["publisher"])
	}

	pages := intOrNil(edition["number_of_pages"])
	if pages == nil {
		pages = intOrNil(edition["pages"])
	}

	// edition.languages is usually like [{key:"/languages/eng"}].
	lang := ""
	if langs, ok := edition["languages"].([]any); ok && len(langs) > 0 {
		if entry, ok := langs[0].(map[string]any); ok {
			if key, ok := entry["key"].(string); ok {
				if m := langKeyRe.FindStringSubmatch(key); m != nil {
					lang = strings.ToLower(m[1])
				}
			}
		}
	}
	if lang == "" {
		lang = str(edition["language"])
	}

	// Prefer ISBN-13, then ISBN-10.
	isbn := firstString(edition["isbn_13"])
	if isbn == "" {
		isbn = firstString(edition["isbn_10"])
	}
	if isbn == "" {
		isbn = str(edition["isbn"])
	}

	// Editions often carry only author keys, not names; by_statement is the
	// best available text.
	author := str(edition["by_statement"])
	if author == "" {
		author = str(edition["author"])
	}

	year := extractYear(edition["publish_date"])
	if year == 0 {
		year = extractYear(edition["publish_year"])
	}

	var coverID *int
	if covers, ok := edition["covers"].([]any); ok && len(covers) > 0 {
		coverID = intOrNil(covers[0])
	}
	if coverID == nil {
		coverID = intOrNil(edition["cover_i"])
	}
	coverURL := ""
	if coverID != nil {
		coverURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", *coverID)
	}

	return MappedEdition{
		Book: model.Book{
			OpenLibraryID: olid,
			ISBN:          isbn,
			Title:         title,
			Author:        author,
			ReleaseYear:   year,
			Publisher:     strPtr(publisher),
			Language:      strPtr(lang),
			Pages:         pages,
		},
		Description: normalizeDescription(edition["description"]),
		Subjects:    normalizeSubjects(edition["subjects"]),
		CoverID:     coverID,
		CoverURL:    coverURL,
	}
}

func olidFromKey(key string) string {
	// "/books/OL3778206M" -> "OL3778206M"
	if m := olidKeyRe.FindStringSubmatch(key); m != nil {
		return m[2]
	}
	return ""
}

func normalizeDescription(v any) string {
	txt := ""
	switch d := v.(type) {
	case string:
		txt = d
	case map[string]any:
		// OpenLibrary sometimes nests it as { "value": "..." }.
		if s, ok := d["value"].(string); ok {
			txt = s
		}
	}

	txt = spaceRunRe.ReplaceAllString(txt, " ")
	txt = strings.ReplaceAll(txt, "\r\n", "\n")
	txt = strings.ReplaceAll(txt, "\r", "\n")
	txt = blankRunRe.ReplaceAllString(txt, "\n\n")
	return strings.TrimSpace(txt)
}

func normalizeSubjects(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}

	seen := map[string]bool{}
	out := []string{}
	for _, s := range raw {
		str, ok := s.(string)
		if !ok {
			continue
		}
		str = strings.TrimSpace(str)
		if str == "" || seen[str] {
			continue
		}
		seen[str] = true
		out = append(out, str)
		if len(out) == 50 {
			break
		}
	}
	return out
}

func extractYear(v any) int {
	switch y := v.(type) {
	case float64:
		n := int(y)
		if n >= 0 && n <= 9999 {
			return n
		}
		return 0
	case []any:
		if len(y) > 0 {
			return extractYear(y[0])
		}
		return 0
	}

	s := str(v)
	if s == "" {
		return 0
	}
	if m := yearRe.FindStringSubmatch(s); m != nil {
		n := 0
		fmt.Sscanf(m[1], "%d", &n)
		return n
	}
	return 0
}

func str(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func firstString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		if len(t) > 0 {
			if s, ok := t[0].(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func intOrNil(v any) *int {
	if f, ok := v.(float64); ok {
		n := int(f)
		return &n
	}
	return nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
