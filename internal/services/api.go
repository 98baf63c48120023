// API client for the setlist HTTP server
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/desertthunder/setlist/internal/formatter"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

const defaultBaseURL = "http://127.0.0.1:3000"

// APIService makes requests against the setlist API, authenticating with a bearer token when one is set.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a client for baseURL.
//
// A non-empty token is attached to every request as "Authorization: Bearer <token>" through
// an oauth2 static token source layered over client's transport.
func NewAPIService(baseURL, token string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
		authed := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
		authed.Timeout = client.Timeout
		client = authed
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.Do(ctx, http.MethodPost, path, data)
}

// Do performs a request with an optional JSON body and returns the raw response.
//
// Non-2xx statuses are not errors here; see [APIService.call] for the typed mapping.
func (a *APIService) Do(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       raw,
	}

	var jsonData any
	if err := json.Unmarshal(raw, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// problem is the subset of an RFC 9457 document the client reads.
type problem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// StatusError maps a failed response onto the shared sentinels.
func StatusError(resp *APIResponse) error {
	var p problem
	_ = json.Unmarshal(resp.Body, &p)
	detail := p.Detail
	if detail == "" {
		detail = p.Title
	}
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		sentinel = shared.ErrUnauthorized
	case http.StatusForbidden:
		sentinel = shared.ErrForbidden
	case http.StatusNotFound:
		sentinel = shared.ErrNotFound
	case http.StatusConflict:
		sentinel = shared.ErrConflict
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		sentinel = shared.ErrValidation
	default:
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, detail)
	}
	return fmt.Errorf("%w: %s", sentinel, detail)
}

// call sends body as JSON and decodes a 2xx response into out (when non-nil).
func (a *APIService) call(ctx context.Context, method, path string, body, out any) error {
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	resp, err := a.Do(ctx, method, path, data)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return StatusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return nil
}

func playlistPath(id string, rest ...string) string {
	parts := append([]string{"/playlists/me/playlists", url.PathEscape(id)}, rest...)
	return strings.Join(parts, "/")
}

func (a *APIService) Search(ctx context.Context, term string) (*models.SearchResults, error) {
	var results models.SearchResults
	if err := a.call(ctx, http.MethodGet, "/search?q="+url.QueryEscape(term), nil, &results); err != nil {
		return nil, err
	}
	return results.Normalize(), nil
}

func (a *APIService) MyPlaylists(ctx context.Context) ([]models.Playlist, error) {
	playlists := []models.Playlist{}
	if err := a.call(ctx, http.MethodGet, "/playlists/me/playlists", nil, &playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

func (a *APIService) PublicPlaylists(ctx context.Context) ([]models.Playlist, error) {
	playlists := []models.Playlist{}
	if err := a.call(ctx, http.MethodGet, "/playlists/public", nil, &playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

func (a *APIService) CreatePlaylist(ctx context.Context, name string) (*models.Playlist, error) {
	var p models.Playlist
	if err := a.call(ctx, http.MethodPost, "/playlists/me/playlists", map[string]string{"name": name}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *APIService) UpdatePlaylist(ctx context.Context, id string, patch models.PlaylistPatch) (*models.Playlist, error) {
	body := map[string]any{}
	if patch.Name != nil {
		body["name"] = *patch.Name
	}
	if patch.IsPublic != nil {
		body["is_public"] = *patch.IsPublic
	}

	var p models.Playlist
	if err := a.call(ctx, http.MethodPatch, playlistPath(id), body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *APIService) Publish(ctx context.Context, id string, isPublic bool) (*models.Playlist, error) {
	var p models.Playlist
	if err := a.call(ctx, http.MethodPost, playlistPath(id, "publish"), map[string]bool{"is_public": isPublic}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *APIService) DeletePlaylist(ctx context.Context, id string) error {
	return a.call(ctx, http.MethodDelete, playlistPath(id), nil, nil)
}

func (a *APIService) PlaylistDetail(ctx context.Context, id string) (*models.PlaylistDetail, error) {
	var d models.PlaylistDetail
	if err := a.call(ctx, http.MethodGet, playlistPath(id, "detail"), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

type addTrackBody struct {
	TrackID  string `json:"track_id"`
	Position *int   `json:"position,omitempty"`
}

func (a *APIService) AddTrack(ctx context.Context, id, trackID string, position *int) (*models.PlaylistTrack, error) {
	var m models.PlaylistTrack
	if err := a.call(ctx, http.MethodPost, playlistPath(id, "tracks"), addTrackBody{TrackID: trackID, Position: position}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (a *APIService) RemoveTrack(ctx context.Context, id, trackID string) error {
	return a.call(ctx, http.MethodDelete, playlistPath(id, "tracks", url.PathEscape(trackID)), nil, nil)
}

func (a *APIService) Export(ctx context.Context, id string) (*models.ExportDocument, error) {
	data, err := a.ExportRaw(ctx, id, formatter.FormatJSON)
	if err != nil {
		return nil, err
	}
	return formatter.ParseExport(data)
}

// ExportRaw fetches the export attachment body in the given format.
func (a *APIService) ExportRaw(ctx context.Context, id string, format formatter.Format) ([]byte, error) {
	path := fmt.Sprintf("/playlists/%s/export?format=%s", url.PathEscape(id), url.QueryEscape(string(format)))
	resp, err := a.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, StatusError(resp)
	}
	return resp.Body, nil
}
