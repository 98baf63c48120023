// Package services is the client side of the setlist HTTP API.
//
// [APIService] implements [PlaylistService] for the terminal client and the batch tasks, and
// also exposes raw [APIService.Get], [APIService.Post] and [APIService.Do] for the "api" CLI
// commands.
//
// # Authentication
//
// The configured access token is sent as a bearer credential by an [oauth2.StaticTokenSource]
// transport, so every request carries "Authorization: Bearer <token>".
//
// # Error Handling
//
// Failed responses are mapped back onto the same sentinels the server classifies with:
//   - 401 : [shared.ErrUnauthorized]
//   - 403 : [shared.ErrForbidden]
//   - 404 : [shared.ErrNotFound]
//   - 409 : [shared.ErrConflict]
//   - 400/422 : [shared.ErrValidation]
//   - anything else : [shared.ErrAPIRequest]
//
// Transport failures wrap [shared.ErrServiceUnavailable]. The problem document's detail is
// kept in the error message.
package services
