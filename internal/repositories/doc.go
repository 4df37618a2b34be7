// Package repositories reads song selections from a media server library.
//
// The library is two SQLite files owned by the media server (see
// [shared.OpenLibrary]); nothing here writes to them.
//
// [SongRepository.Select] composes its statement from [models.QueryOptions]:
// conjunctive filters over the candidate set, an optional per-album cap
// applied with ROW_NUMBER() over the same ordering as the final result, and
// a global limit applied after capping. Optional schema features (the
// alternativeplaycount table behind the dynamic play score) are probed once
// per repository and disable their filter and column when absent.
package repositories
