// Package web serves the read-only HTML pages that sit next to the JSON API.
//
// Routes
//
//	GET /catalog.html                  → artist index
//	GET /catalog.html?artist_id={id}   → one artist with albums and tracks
//	GET /playlists.html                → public playlists with export links
//
// The terminal client deep-links artists to /catalog.html. Pages are rendered with
// html/template and need no authentication; private playlists never appear.
package web

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/server"
	"github.com/desertthunder/setlist/internal/shared"
)

const publicLimit = 100

// Catalog is the catalog read model the pages render.
type Catalog interface {
	ListArtists(ctx context.Context) ([]models.Artist, error)
	GetArtist(ctx context.Context, id string) (*models.Artist, error)
	ListAlbums(ctx context.Context, artistID string) ([]models.Album, error)
	ListTracks(ctx context.Context, albumID string) ([]models.Track, error)
}

// PublicPlaylists lists published playlists.
type PublicPlaylists interface {
	ListPublic(ctx context.Context, limit int) ([]models.Playlist, error)
}

// Pages serves the HTML views.
type Pages struct {
	catalog   Catalog
	playlists PublicPlaylists
	logger    *log.Logger
}

// NewPages creates Pages.
func NewPages(catalog Catalog, playlists PublicPlaylists, logger *log.Logger) *Pages {
	return &Pages{catalog: catalog, playlists: playlists, logger: logger}
}

func (p *Pages) Register(r server.Router) {
	r.Handle(http.MethodGet, "/catalog.html", http.HandlerFunc(p.catalogPage))
	r.Handle(http.MethodGet, "/playlists.html", http.HandlerFunc(p.playlistsPage))
}

type albumView struct {
	models.Album
	Tracks []models.Track
}

type artistView struct {
	Artist *models.Artist
	Albums []albumView
}

func (p *Pages) catalogPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	artistID := r.URL.Query().Get("artist_id")

	if artistID == "" {
		artists, err := p.catalog.ListArtists(ctx)
		if err != nil {
			p.fail(w, r, err)
			return
		}
		p.render(w, r, "artists", artists)
		return
	}

	artist, err := p.catalog.GetArtist(ctx, artistID)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	albums, err := p.catalog.ListAlbums(ctx, artist.ID)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	view := artistView{Artist: artist, Albums: make([]albumView, 0, len(albums))}
	for _, album := range albums {
		tracks, err := p.catalog.ListTracks(ctx, album.ID)
		if err != nil {
			p.fail(w, r, err)
			return
		}
		view.Albums = append(view.Albums, albumView{Album: album, Tracks: tracks})
	}
	p.render(w, r, "artist", view)
}

func (p *Pages) playlistsPage(w http.ResponseWriter, r *http.Request) {
	playlists, err := p.playlists.ListPublic(r.Context(), publicLimit)
	if err != nil {
		p.fail(w, r, err)
		return
	}
	p.render(w, r, "playlists", playlists)
}

// render executes into a buffer so a template error can still produce a 500.
func (p *Pages) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		p.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (p *Pages) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	p.logger.Error("page failed", "err", err, "path", r.URL.Path, "request_id", server.GetRequestID(r.Context()))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"duration": shared.FormatDuration,
}).Parse(`
{{define "head"}}<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.}} · setlist</title></head>
<body style="font-family: sans-serif; max-width: 48rem; margin: 2rem auto">
<nav><a href="/catalog.html">Artists</a> · <a href="/playlists.html">Public playlists</a></nav>
{{end}}
{{define "foot"}}</body>
</html>
{{end}}
{{define "artists"}}{{template "head" "Artists"}}
<h1>Artists</h1>
<ul>
{{range .}}  <li><a href="/catalog.html?artist_id={{.ID}}">{{.Name}}</a></li>
{{else}}  <li>The catalog is empty.</li>
{{end}}</ul>
{{template "foot"}}{{end}}
{{define "artist"}}{{template "head" .Artist.Name}}
<h1>{{.Artist.Name}}</h1>
{{range .Albums}}<h2>{{.Title}}{{if .Year}} ({{.Year}}){{end}}</h2>
<ol>
{{range .Tracks}}  <li>{{.Title}} <small>{{duration .DurationSeconds}}</small></li>
{{end}}</ol>
{{else}}<p>No albums.</p>
{{end}}{{template "foot"}}{{end}}
{{define "playlists"}}{{template "head" "Public playlists"}}
<h1>Public playlists</h1>
<ul>
{{range .}}  <li>{{.Name}} <a href="/playlists/{{.ID}}/export?format=md">markdown</a> <a href="/playlists/{{.ID}}/export?format=csv">csv</a></li>
{{else}}  <li>Nothing published yet.</li>
{{end}}</ul>
{{template "foot"}}{{end}}
`))
