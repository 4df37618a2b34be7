// Package server provides HTTP routing, middleware and the JSON API over the
// song query engine and export pipeline.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation registers "METHOD /path" patterns on an [http.ServeMux].
//
// # Endpoints
//
//   - POST /api/query : select songs; body fields override the configured defaults
//   - POST /api/export : export a list of songs to a folder, zip archive or the sync mirror
//   - GET /api/download/{file} : download a file from the export root
//   - GET /api/cover?path= : display artwork for a track, placeholder when none exists
//   - GET /api/status : export root and mirror availability
//
// Errors are reported as {"success": false, "error": "..."}. Sync exports are
// serialized; folder and archive exports run concurrently.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
