package domain

import (
	"fmt"
	"time"
)

type RecordFormat string

const (
	FormatVinyl    RecordFormat = "VINYL"
	FormatCD       RecordFormat = "CD"
	FormatCassette RecordFormat = "CASSETTE"
	FormatDigital  RecordFormat = "DIGITAL"
)

type RecordCategory string

const (
	CategoryRock        RecordCategory = "ROCK"
	CategoryPop         RecordCategory = "POP"
	CategoryJazz        RecordCategory = "JAZZ"
	CategoryIndie       RecordCategory = "INDIE"
	CategoryAlternative RecordCategory = "ALTERNATIVE"
	CategoryClassical   RecordCategory = "CLASSICAL"
)

// ParseFormat validates a format against the closed set of known values.
func ParseFormat(s string) (RecordFormat, error) {
	switch f := RecordFormat(s); f {
	case FormatVinyl, FormatCD, FormatCassette, FormatDigital:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", ErrInvalidInput, s)
}

// ParseCategory validates a category against the closed set of known values.
func ParseCategory(s string) (RecordCategory, error) {
	switch c := RecordCategory(s); c {
	case CategoryRock, CategoryPop, CategoryJazz, CategoryIndie, CategoryAlternative, CategoryClassical:
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, s)
}

// Track is one entry of a record's tracklist. Duration is in whole
// seconds, 0 when unknown.
type Track struct {
	Title    string `json:"title"`
	Position int    `json:"position"`
	Duration int    `json:"duration,omitempty"`
}

// Record is a sellable catalog entry. Price is in the smallest currency
// unit so order totals stay exact. The combination (artist, album,
// format) is unique.
type Record struct {
	ID           string         `json:"id"`
	Artist       string         `json:"artist"`
	Album        string         `json:"album"`
	Price        int64          `json:"price"`
	Quantity     int            `json:"qty"`
	Format       RecordFormat   `json:"format"`
	Category     RecordCategory `json:"category"`
	MBID         string         `json:"mbid,omitempty"`
	Tracklist    []Track        `json:"tracklist"`
	Created      time.Time      `json:"created"`
	LastModified time.Time      `json:"last_modified"`
}
