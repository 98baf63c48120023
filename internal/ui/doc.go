// Package ui implements the interactive search client using bubbletea's Elm architecture.
//
// A single query input drives a debounced unified search. Results are flattened into one
// selectable list (tracks, then playlists with the caller's own first, then artists) and
// Enter acts on the active entry:
//   - a track opens [AddTrackDialog] to add it to an owned playlist or a new one
//   - an owned playlist opens [EditorView] to remove tracks or toggle visibility
//   - any other playlist opens [CopyDialog] to copy its tracks into an owned playlist
//   - an artist opens the catalog browse page in the system browser
//
// Every edit bumps a token carried by its debounce tick and search request, and responses
// whose token is no longer current are dropped (see [SearchState]). Copy batches run through
// a [tasks.Engine] and report progress over a channel.
package ui
