// package visibility decides who may read a playlist's track list.
//
// The decision is made once, here, and reused by every read path that exposes
// tracks to someone other than the owner.
package visibility

import (
	"context"
	"fmt"

	"github.com/desertthunder/setlist/internal/formatter"
	"github.com/desertthunder/setlist/internal/identity"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// Decide returns nil when caller may read p.
//
//	public                      -> allowed
//	private, caller is owner    -> allowed
//	private, other caller       -> [shared.ErrForbidden]
//	private, anonymous (nil)    -> [shared.ErrUnauthorized]
func Decide(p *models.Playlist, caller *identity.Identity) error {
	if p.IsPublic {
		return nil
	}
	if caller == nil || caller.Subject == "" {
		return fmt.Errorf("%w: playlist %s is private", shared.ErrUnauthorized, p.ID)
	}
	if p.OwnedBy(caller.Subject) {
		return nil
	}
	return fmt.Errorf("%w: playlist %s is private", shared.ErrForbidden, p.ID)
}

// PlaylistReader is the unscoped read access the policy needs.
type PlaylistReader interface {
	Get(ctx context.Context, id string) (*models.Playlist, error)
	Tracks(ctx context.Context, id string) ([]models.OrderedTrack, error)
}

// Exporter produces export documents for callers the policy admits.
type Exporter struct {
	playlists PlaylistReader
}

// NewExporter creates an Exporter reading from playlists.
func NewExporter(playlists PlaylistReader) *Exporter {
	return &Exporter{playlists: playlists}
}

// Export loads playlist id and returns its export document.
//
// A missing playlist is [shared.ErrNotFound] whoever asks; tracks are only loaded after [Decide] allows.
func (e *Exporter) Export(ctx context.Context, id string, caller *identity.Identity) (*models.ExportDocument, error) {
	p, err := e.playlists.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := Decide(p, caller); err != nil {
		return nil, err
	}

	tracks, err := e.playlists.Tracks(ctx, id)
	if err != nil {
		return nil, err
	}

	doc := formatter.NewExportDocument(*p, tracks)
	return &doc, nil
}
