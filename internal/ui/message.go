package ui

import (
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/tasks"
)

// debounceMsg fires after the quiet period following the edit that produced token.
type debounceMsg struct {
	token int
}

// searchResultMsg carries the response to the query dispatched with token.
type searchResultMsg struct {
	token   int
	results *models.SearchResults
	err     error
}

// playlistsLoadedMsg carries the caller's playlists for a dialog.
type playlistsLoadedMsg struct {
	playlists []models.Playlist
	err       error
}

// exportLoadedMsg carries the export document of an activated playlist.
type exportLoadedMsg struct {
	item Item
	doc  *models.ExportDocument
	err  error
}

// detailLoadedMsg carries an owned playlist opened in the editor.
type detailLoadedMsg struct {
	detail *models.PlaylistDetail
	err    error
}

// mutationDoneMsg reports a single add, remove or publish call.
//
// refresh asks for the caller's playlist list to be reloaded, reload for the open editor.
type mutationDoneMsg struct {
	status  string
	err     error
	refresh bool
	reload  bool
}

// copyDoneMsg reports a finished copy batch.
type copyDoneMsg struct {
	result *tasks.CopyResult
	err    error
}

// progressMsg relays one [tasks.ProgressUpdate] from a running batch.
type progressMsg tasks.ProgressUpdate

// browserOpenedMsg reports an artist deep link.
type browserOpenedMsg struct {
	url string
	err error
}
