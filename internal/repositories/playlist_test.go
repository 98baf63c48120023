package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
	tu "github.com/desertthunder/setlist/internal/testing"
)

// newClockedRepo returns a repository whose clock advances one second per call.
func newClockedRepo(t *testing.T) (*PlaylistRepository, tu.Catalog) {
	t.Helper()
	db := setupTestDB(t)
	c := tu.SeedCatalog(t, db, "Feeling Good", "So What", "Sinnerman", "Blue in Green")

	repo := NewPlaylistRepository(db)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return repo, c
}

func intPtr(i int) *int { return &i }

func TestPlaylistRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		repo, _ := newClockedRepo(t)

		playlist, err := repo.Create(ctx, "alice", "  Road Trip ")
		if err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		if playlist.ID == "" {
			t.Error("playlist ID should be set after creation")
		}
		if playlist.Name != "Road Trip" {
			t.Errorf("expected trimmed name, got %q", playlist.Name)
		}
		if playlist.IsPublic {
			t.Error("new playlists should be private")
		}
		if !playlist.CreatedAt.Equal(playlist.UpdatedAt) {
			t.Error("created_at and updated_at should match on creation")
		}

		if _, err := repo.Create(ctx, "alice", "   "); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation for blank name, got %v", err)
		}
	})

	t.Run("ListOwned orders by updated_at desc", func(t *testing.T) {
		repo, _ := newClockedRepo(t)

		first, _ := repo.Create(ctx, "alice", "First")
		second, _ := repo.Create(ctx, "alice", "Second")
		if _, err := repo.Create(ctx, "bob", "Bob's"); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		owned, err := repo.ListOwned(ctx, "alice")
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if len(owned) != 2 || owned[0].ID != second.ID || owned[1].ID != first.ID {
			t.Fatalf("expected [Second, First], got %+v", owned)
		}

		if _, err := repo.Rename(ctx, "alice", first.ID, "First Renamed"); err != nil {
			t.Fatalf("failed to rename: %v", err)
		}

		owned, _ = repo.ListOwned(ctx, "alice")
		if owned[0].ID != first.ID || owned[0].Name != "First Renamed" {
			t.Errorf("expected renamed playlist first, got %+v", owned[0])
		}
	})

	t.Run("ListPublic breaks timestamp ties by sequence", func(t *testing.T) {
		repo, _ := newClockedRepo(t)

		older, _ := repo.Create(ctx, "alice", "Older")
		newer, _ := repo.Create(ctx, "bob", "Newer")
		tu.MustExec(t, repo.db, `UPDATE playlists SET is_public = 1, updated_at = ?`, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

		public, err := repo.ListPublic(ctx, 100)
		if err != nil {
			t.Fatalf("failed to list public playlists: %v", err)
		}
		if len(public) != 2 || public[0].ID != newer.ID || public[1].ID != older.ID {
			t.Errorf("expected [Newer, Older], got %+v", public)
		}
	})

	t.Run("ListOwned empty", func(t *testing.T) {
		repo, _ := newClockedRepo(t)

		owned, err := repo.ListOwned(ctx, "nobody")
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if owned == nil || len(owned) != 0 {
			t.Errorf("expected empty non-nil list, got %v", owned)
		}
	})

	t.Run("Ownership is opaque", func(t *testing.T) {
		repo, c := newClockedRepo(t)
		playlist, _ := repo.Create(ctx, "alice", "Mine")

		if _, err := repo.Rename(ctx, "bob", playlist.ID, "Stolen"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("rename by non-owner: expected ErrNotFound, got %v", err)
		}
		if _, err := repo.SetPublic(ctx, "bob", playlist.ID, true); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("publish by non-owner: expected ErrNotFound, got %v", err)
		}
		if err := repo.Delete(ctx, "bob", playlist.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("delete by non-owner: expected ErrNotFound, got %v", err)
		}
		if _, err := repo.AddTrack(ctx, "bob", playlist.ID, c.TrackIDs[0], nil); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("add by non-owner: expected ErrNotFound, got %v", err)
		}
		if _, err := repo.Detail(ctx, "bob", playlist.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("detail by non-owner: expected ErrNotFound, got %v", err)
		}

		if _, err := repo.AddTrack(ctx, "alice", playlist.ID, c.TrackIDs[0], nil); err != nil {
			t.Fatalf("failed to add track: %v", err)
		}
		if err := repo.RemoveTrack(ctx, "bob", playlist.ID, c.TrackIDs[0]); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("remove by non-owner: expected ErrNotFound, got %v", err)
		}

		got, err := repo.Get(ctx, playlist.ID)
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if got.Name != "Mine" || got.IsPublic {
			t.Errorf("playlist should be unchanged, got %+v", got)
		}
	})

	t.Run("SetPublic", func(t *testing.T) {
		repo, _ := newClockedRepo(t)
		playlist, _ := repo.Create(ctx, "alice", "Mix")

		published, err := repo.SetPublic(ctx, "alice", playlist.ID, true)
		if err != nil {
			t.Fatalf("failed to publish: %v", err)
		}
		if !published.IsPublic {
			t.Error("expected playlist to be public")
		}
		if !published.UpdatedAt.After(playlist.UpdatedAt) {
			t.Error("expected updated_at to advance on publish")
		}

		again, err := repo.SetPublic(ctx, "alice", playlist.ID, true)
		if err != nil {
			t.Fatalf("publishing twice should succeed: %v", err)
		}
		if !again.UpdatedAt.Equal(published.UpdatedAt) {
			t.Error("setting the current value should not touch updated_at")
		}

		public, err := repo.ListPublic(ctx, 100)
		if err != nil {
			t.Fatalf("failed to list public: %v", err)
		}
		if len(public) != 1 || public[0].ID != playlist.ID {
			t.Errorf("expected the published playlist, got %+v", public)
		}
	})

	t.Run("Update patch", func(t *testing.T) {
		repo, _ := newClockedRepo(t)
		playlist, _ := repo.Create(ctx, "alice", "Mix")

		name, public := "Renamed", true
		updated, err := repo.Update(ctx, "alice", playlist.ID, models.PlaylistPatch{Name: &name, IsPublic: &public})
		if err != nil {
			t.Fatalf("failed to update: %v", err)
		}
		if updated.Name != "Renamed" || !updated.IsPublic {
			t.Errorf("expected both fields applied, got %+v", updated)
		}

		unchanged, err := repo.Update(ctx, "alice", playlist.ID, models.PlaylistPatch{})
		if err != nil {
			t.Fatalf("empty patch should succeed: %v", err)
		}
		if !unchanged.UpdatedAt.Equal(updated.UpdatedAt) {
			t.Error("empty patch should not touch updated_at")
		}

		blank := ""
		if _, err := repo.Update(ctx, "alice", playlist.ID, models.PlaylistPatch{Name: &blank}); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation for blank name, got %v", err)
		}
	})

	t.Run("Update skips fields equal to the stored value", func(t *testing.T) {
		repo, _ := newClockedRepo(t)
		playlist, _ := repo.Create(ctx, "alice", "Mix")
		other, _ := repo.Create(ctx, "alice", "Other")

		private, sameName := false, " Mix "
		unchanged, err := repo.Update(ctx, "alice", playlist.ID, models.PlaylistPatch{Name: &sameName, IsPublic: &private})
		if err != nil {
			t.Fatalf("failed to update: %v", err)
		}
		if !unchanged.UpdatedAt.Equal(playlist.UpdatedAt) {
			t.Error("a patch repeating stored values should not touch updated_at")
		}

		owned, _ := repo.ListOwned(ctx, "alice")
		if len(owned) != 2 || owned[0].ID != other.ID {
			t.Errorf("no-op patch should not reorder playlists, got %+v", owned)
		}

		if _, err := repo.Update(ctx, "bob", playlist.ID, models.PlaylistPatch{IsPublic: &private}); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("no-op patch by non-owner: expected ErrNotFound, got %v", err)
		}

		public := true
		changed, err := repo.Update(ctx, "alice", playlist.ID, models.PlaylistPatch{Name: &sameName, IsPublic: &public})
		if err != nil {
			t.Fatalf("failed to update: %v", err)
		}
		if !changed.IsPublic || !changed.UpdatedAt.After(playlist.UpdatedAt) {
			t.Errorf("a differing field should be written, got %+v", changed)
		}
	})

	t.Run("AddTrack", func(t *testing.T) {
		repo, c := newClockedRepo(t)
		playlist, _ := repo.Create(ctx, "alice", "Mix")

		membership, err := repo.AddTrack(ctx, "alice", playlist.ID, c.TrackIDs[0], intPtr(1))
		if err != nil {
			t.Fatalf("failed to add track: %v", err)
		}
		if membership.Position == nil || *membership.Position != 1 {
			t.Errorf("expected position 1, got %v", membership.Position)
		}

		if _, err := repo.AddTrack(ctx, "alice", playlist.ID, c.TrackIDs[0], nil); !errors.Is(err, shared.ErrConflict) {
			t.Errorf("duplicate add: expected ErrConflict, got %v", err)
		}

		tracks, err := repo.Tracks(ctx, playlist.ID)
		if err != nil {
			t.Fatalf("failed to load tracks: %v", err)
		}
		if len(tracks) != 1 {
			t.Fatalf("duplicate add should leave one membership row, got %d", len(tracks))
		}
		if tracks[0].ID != c.TrackIDs[0] || tracks[0].Position == nil || *tracks[0].Position != 1 {
			t.Errorf("duplicate add should keep the original row, got %+v", tracks[0])
		}
		if !tracks[0].AddedAt.Equal(membership.AddedAt) {
			t.Errorf("duplicate add should keep added_at %v, got %v", membership.AddedAt, tracks[0].AddedAt)
		}

		if _, err := repo.AddTrack(ctx, "alice", playlist.ID, "no-such-track", nil); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("unknown track: expected ErrValidation, got %v", err)
		}

		if _, err := repo.AddTrack(ctx, "alice", "no-such-playlist", c.TrackIDs[1], nil); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("unknown playlist: expected ErrNotFound, got %v", err)
		}

		if _, err := repo.AddTrack(ctx, "alice", playlist.ID, "", nil); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("missing track id: expected ErrValidation, got %v", err)
		}

		current, _ := repo.Get(ctx, playlist.ID)
		if !current.UpdatedAt.Equal(playlist.UpdatedAt) {
			t.Error("membership changes should not touch updated_at")
		}
	})

	t.Run("Tracks ordering", func(t *testing.T) {
		repo, c := newClockedRepo(t)
		playlist, _ := repo.Create(ctx, "alice", "Mix")

		adds := []struct {
			trackID  string
			position *int
		}{
			{c.TrackIDs[0], nil},
			{c.TrackIDs[1], intPtr(5)},
			{c.TrackIDs[2], nil},
			{c.TrackIDs[3], intPtr(2)},
		}
		for _, a := range adds {
			if _, err := repo.AddTrack(ctx, "alice", playlist.ID, a.trackID, a.position); err != nil {
				t.Fatalf("failed to add track: %v", err)
			}
		}

		detail, err := repo.Detail(ctx, "alice", playlist.ID)
		if err != nil {
			t.Fatalf("failed to get detail: %v", err)
		}

		want := []string{c.TrackIDs[3], c.TrackIDs[1], c.TrackIDs[0], c.TrackIDs[2]}
		if len(detail.Tracks) != len(want) {
			t.Fatalf("expected %d tracks, got %d", len(want), len(detail.Tracks))
		}
		for i, id := range want {
			if detail.Tracks[i].ID != id {
				t.Errorf("position %d: expected %s, got %s", i, id, detail.Tracks[i].ID)
			}
		}
		if detail.Tracks[2].Position != nil {
			t.Error("unpositioned track should have nil position")
		}
	})

	t.Run("RemoveTrack", func(t *testing.T) {
		repo, c := newClockedRepo(t)
		playlist, _ := repo.Create(ctx, "alice", "Mix")

		if _, err := repo.AddTrack(ctx, "alice", playlist.ID, c.TrackIDs[0], nil); err != nil {
			t.Fatalf("failed to add track: %v", err)
		}

		if err := repo.RemoveTrack(ctx, "alice", playlist.ID, c.TrackIDs[0]); err != nil {
			t.Fatalf("failed to remove track: %v", err)
		}

		if err := repo.RemoveTrack(ctx, "alice", playlist.ID, c.TrackIDs[0]); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("second remove: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete cascades memberships", func(t *testing.T) {
		repo, c := newClockedRepo(t)
		playlist, _ := repo.Create(ctx, "alice", "Mix")

		for _, id := range c.TrackIDs {
			if _, err := repo.AddTrack(ctx, "alice", playlist.ID, id, nil); err != nil {
				t.Fatalf("failed to add track: %v", err)
			}
		}

		if err := repo.Delete(ctx, "alice", playlist.ID); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}

		var count int
		if err := repo.db.QueryRow("SELECT COUNT(*) FROM playlist_tracks WHERE playlist_id = ?", playlist.ID).Scan(&count); err != nil {
			t.Fatalf("failed to count memberships: %v", err)
		}
		if count != 0 {
			t.Errorf("expected memberships removed, got %d", count)
		}

		if _, err := repo.Get(ctx, playlist.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}

		if err := repo.Delete(ctx, "alice", playlist.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("second delete: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Search", func(t *testing.T) {
		repo, _ := newClockedRepo(t)

		a, _ := repo.Create(ctx, "alice", "Late Night Jazz")
		b, _ := repo.Create(ctx, "bob", "JAZZ classics")
		if _, err := repo.Create(ctx, "bob", "jazz drafts"); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}
		if _, err := repo.SetPublic(ctx, "alice", a.ID, true); err != nil {
			t.Fatalf("failed to publish: %v", err)
		}
		if _, err := repo.SetPublic(ctx, "bob", b.ID, true); err != nil {
			t.Fatalf("failed to publish: %v", err)
		}

		public, err := repo.SearchPublic(ctx, "jazz", 20)
		if err != nil {
			t.Fatalf("failed to search public: %v", err)
		}
		if len(public) != 2 || public[0].ID != b.ID || public[1].ID != a.ID {
			t.Errorf("expected [bob's, alice's] by updated_at desc, got %+v", public)
		}

		mine, err := repo.SearchOwned(ctx, "bob", "Jazz", 20)
		if err != nil {
			t.Fatalf("failed to search owned: %v", err)
		}
		if len(mine) != 2 {
			t.Errorf("expected both of bob's playlists, got %d", len(mine))
		}
	})

	t.Run("Search folds non-ASCII case", func(t *testing.T) {
		repo, _ := newClockedRepo(t)

		p, _ := repo.Create(ctx, "alice", "Coração Sertanejo")
		if _, err := repo.SetPublic(ctx, "alice", p.ID, true); err != nil {
			t.Fatalf("failed to publish: %v", err)
		}

		for _, term := range []string{"coração", "CORAÇÃO", "Ção"} {
			mine, err := repo.SearchOwned(ctx, "alice", term, 20)
			if err != nil {
				t.Fatalf("failed to search owned: %v", err)
			}
			public, err := repo.SearchPublic(ctx, term, 20)
			if err != nil {
				t.Fatalf("failed to search public: %v", err)
			}
			if len(mine) != 1 || len(public) != 1 {
				t.Errorf("%q: expected owned=1 public=1, got owned=%d public=%d", term, len(mine), len(public))
			}
		}
	})
}
