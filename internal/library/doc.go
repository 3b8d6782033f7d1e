// Package library maintains the durable catalog of converted audio assets and
// playlists.
//
// The catalog persists as a single JSON file (metadata.json) inside the audio
// library directory and is rewritten wholesale on every mutation. The Store
// serializes all access behind a mutex so concurrent requests cannot drop each
// other's writes, and holds an advisory file lock so only one process owns the
// file at a time. A missing or corrupt catalog degrades to an empty one: the
// service stays available and the damaged file is preserved for inspection.
package library
