package library

import (
	"strings"
	"time"
)

// CategoryUncategorized is the sentinel label applied when a conversion request
// carries no category.
const CategoryUncategorized = "Uncategorized"

// CategoryAll is the filter value meaning "no category filter".
const CategoryAll = "All"

// AudioAsset describes one converted audio file and its metadata. JSON tags
// match the on-disk catalog schema, so files written by earlier versions of
// the service load unmodified.
type AudioAsset struct {
	ID        string    `json:"id"`
	SourceID  string    `json:"videoId"`
	Title     string    `json:"title"`
	Filename  string    `json:"filename"`
	SourceURL string    `json:"url"`
	Category  string    `json:"category"`
	Duration  float64   `json:"duration"`
	FileSize  int64     `json:"fileSize"`
	CreatedAt time.Time `json:"createdAt"`
	Thumbnail string    `json:"thumbnail,omitempty"`
}

// Playlist is a named ordered grouping of asset ids. AudioIDs may reference
// assets that no longer exist; resolution drops such ids at read time.
type Playlist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AudioIDs    []string  `json:"audioIds"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ResolvedPlaylist pairs a playlist with the assets its ids currently resolve to.
type ResolvedPlaylist struct {
	Playlist
	Audios []AudioAsset `json:"audios"`
}

// Catalog is the root aggregate and the unit of persistence: every mutation
// rewrites the whole structure.
type Catalog struct {
	Audios    []AudioAsset `json:"audios"`
	Playlists []Playlist   `json:"playlists"`
}

// PlaylistPatch carries partial playlist updates. Nil fields are left
// untouched; a non-nil AudioIDs replaces the stored list wholesale.
type PlaylistPatch struct {
	Name        *string
	Description *string
	AudioIDs    *[]string
}

// NormalizeCategory maps blank categories to the sentinel label.
func NormalizeCategory(category string) string {
	if trimmed := strings.TrimSpace(category); trimmed != "" {
		return trimmed
	}
	return CategoryUncategorized
}
