// Package server exposes the playlist engine over HTTP.
//
// # Routing
//
// [BasicRouter] registers "METHOD /path" patterns on an [http.ServeMux], so path
// wildcards are read with [http.Request.PathValue] and a known path requested
// with the wrong method answers 405. Handlers group their routes behind the
// [Handler] interface and are attached with [Router.Handler].
//
// [Middleware] wraps the whole mux in the order it was added: [RequestID],
// [Logger] and [Recover] run for every request. [RequireAuth] and [OptionalAuth]
// are applied per route.
//
// # Errors
//
// Failures are written as RFC 9457 problem documents (application/problem+json).
// Errors wrapping the shared sentinels map to 401, 403, 404, 409 and 422; anything
// else is a 500 whose cause is logged with the request id and never echoed.
//
// # Endpoints
//
//	GET    /health
//	GET    /catalog/artists | /catalog/albums?artist_id= | /catalog/tracks?album_id=
//	GET    /search?q=                                        optional auth
//	GET    /playlists/public
//	GET    /playlists/{id}/export?format=json|csv|md|txt     optional auth
//	GET    /playlists/me/playlists                           auth
//	POST   /playlists/me/playlists                           auth
//	PATCH  /playlists/me/playlists/{id}                      auth
//	DELETE /playlists/me/playlists/{id}                      auth
//	GET    /playlists/me/playlists/{id}/detail               auth
//	POST   /playlists/me/playlists/{id}/tracks               auth
//	DELETE /playlists/me/playlists/{id}/tracks/{track_id}    auth
//	POST   /playlists/me/playlists/{id}/publish              auth
//
// # OAuth callback
//
// [OAuthHandler] is used by the CLI login command: it serves the redirect URI on
// a short-lived local server, checks state, exchanges the code with PKCE and
// hands the token back through [OAuthHandler.Wait].
package server
