// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/setlist/internal/identity"
	"github.com/desertthunder/setlist/internal/shared"
)

// Catalog holds the ids of the rows inserted by [SeedCatalog].
type Catalog struct {
	ArtistIDs []string
	AlbumIDs  []string
	TrackIDs  []string
}

// NewTestDB creates an in-memory SQLite database with migrations applied and registers cleanup.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// SeedCatalog inserts two artists, one album each, and the given track titles split across them.
//
// Tracks get durations of 60, 120, 180... seconds in order.
func SeedCatalog(t *testing.T, db *sql.DB, titles ...string) Catalog {
	t.Helper()

	var c Catalog
	for i, name := range []string{"Nina Simone", "Miles Davis"} {
		artistID := fmt.Sprintf("artist-%d", i+1)
		albumID := fmt.Sprintf("album-%d", i+1)
		MustExec(t, db, `INSERT INTO artists (id, name) VALUES (?, ?)`, artistID, name)
		MustExec(t, db, `INSERT INTO albums (id, artist_id, title, year) VALUES (?, ?, ?, ?)`, albumID, artistID, fmt.Sprintf("Album %d", i+1), 1959+i)
		c.ArtistIDs = append(c.ArtistIDs, artistID)
		c.AlbumIDs = append(c.AlbumIDs, albumID)
	}

	for i, title := range titles {
		trackID := fmt.Sprintf("track-%d", i+1)
		MustExec(t, db, `INSERT INTO tracks (id, album_id, title, duration_seconds) VALUES (?, ?, ?, ?)`,
			trackID, c.AlbumIDs[i%len(c.AlbumIDs)], title, 60*(i+1))
		c.TrackIDs = append(c.TrackIDs, trackID)
	}
	return c
}

// MustExec runs a statement or fails the test.
func MustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec failed: %v\nquery: %s", err, query)
	}
}

// TokenVerifier is an [identity.Verifier] backed by a token → subject map.
type TokenVerifier map[string]string

func (v TokenVerifier) Verify(ctx context.Context, token string) (*identity.Identity, error) {
	subject, ok := v[token]
	if !ok {
		return nil, shared.ErrInvalidToken
	}
	return &identity.Identity{Subject: subject}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
