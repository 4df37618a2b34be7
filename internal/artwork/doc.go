// Package artwork resolves album covers for tracks and embeds them into exports.
//
// Covers come from a sidecar image in the track's directory or from artwork
// embedded in the track's tags. [Resolver] serves covers over HTTP (bounded and
// re-encoded as JPEG, with a placeholder of last resort) and [Embedder] writes
// sidecar covers into exported copies that lack artwork.
package artwork
