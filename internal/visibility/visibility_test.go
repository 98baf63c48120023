package visibility

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/setlist/internal/identity"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

func TestDecide(t *testing.T) {
	owner := &identity.Identity{Subject: "alice"}
	other := &identity.Identity{Subject: "bob"}

	tests := []struct {
		name     string
		isPublic bool
		caller   *identity.Identity
		want     error
	}{
		{"public anonymous", true, nil, nil},
		{"public owner", true, owner, nil},
		{"public other", true, other, nil},
		{"private owner", false, owner, nil},
		{"private other", false, other, shared.ErrForbidden},
		{"private anonymous", false, nil, shared.ErrUnauthorized},
		{"private empty subject", false, &identity.Identity{}, shared.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &models.Playlist{ID: "p1", OwnerID: "alice", Name: "Mix", IsPublic: tt.isPublic}
			err := Decide(p, tt.caller)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

type fakeReader struct {
	playlists   map[string]models.Playlist
	tracks      map[string][]models.OrderedTrack
	tracksCalls int
	tracksErr   error
}

func (f *fakeReader) Get(ctx context.Context, id string) (*models.Playlist, error) {
	p, ok := f.playlists[id]
	if !ok {
		return nil, fmt.Errorf("%w: playlist %s", shared.ErrNotFound, id)
	}
	return &p, nil
}

func (f *fakeReader) Tracks(ctx context.Context, id string) ([]models.OrderedTrack, error) {
	f.tracksCalls++
	if f.tracksErr != nil {
		return nil, f.tracksErr
	}
	return f.tracks[id], nil
}

func TestExporter(t *testing.T) {
	ctx := context.Background()
	reader := &fakeReader{
		playlists: map[string]models.Playlist{
			"pub":  {ID: "pub", OwnerID: "alice", Name: "Open", IsPublic: true},
			"priv": {ID: "priv", OwnerID: "alice", Name: "Closed"},
		},
		tracks: map[string][]models.OrderedTrack{
			"pub": {
				{Track: models.Track{ID: "t1", Title: "Feeling Good", DurationSeconds: 172}},
				{Track: models.Track{ID: "t2", Title: "So What", DurationSeconds: 545}},
			},
		},
	}
	exporter := NewExporter(reader)

	t.Run("public playlist for anonymous caller", func(t *testing.T) {
		doc, err := exporter.Export(ctx, "pub", nil)
		require.NoError(t, err)
		assert.Equal(t, "pub", doc.ID)
		assert.Equal(t, "Open", doc.Name)
		assert.True(t, doc.IsPublic)
		require.Len(t, doc.Tracks, 2)
		assert.Equal(t, models.ExportTrack{ID: "t1", Title: "Feeling Good", DurationSeconds: 172}, doc.Tracks[0])
	})

	t.Run("private playlist for owner", func(t *testing.T) {
		doc, err := exporter.Export(ctx, "priv", &identity.Identity{Subject: "alice"})
		require.NoError(t, err)
		assert.Empty(t, doc.Tracks)
		assert.NotNil(t, doc.Tracks)
	})

	t.Run("private playlist does not load tracks when denied", func(t *testing.T) {
		before := reader.tracksCalls
		_, err := exporter.Export(ctx, "priv", &identity.Identity{Subject: "bob"})
		assert.ErrorIs(t, err, shared.ErrForbidden)

		_, err = exporter.Export(ctx, "priv", nil)
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
		assert.Equal(t, before, reader.tracksCalls)
	})

	t.Run("missing playlist is not found for everyone", func(t *testing.T) {
		_, err := exporter.Export(ctx, "nope", nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = exporter.Export(ctx, "nope", &identity.Identity{Subject: "alice"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		boom := errors.New("disk on fire")
		failing := &fakeReader{playlists: reader.playlists, tracksErr: boom}
		_, err := NewExporter(failing).Export(ctx, "pub", nil)
		assert.ErrorIs(t, err, boom)
	})
}
