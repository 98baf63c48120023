package ui

import (
	"fmt"
	"strings"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// describe returns the secondary line for an item.
func describe(it Item) string {
	switch it.Kind {
	case TrackItem:
		return shared.FormatDuration(it.Track.DurationSeconds)
	case PlaylistItem:
		if it.Mine {
			return "yours • " + shared.Visibility(it.Playlist.IsPublic)
		}
		return "public"
	case ArtistItem:
		return "open in catalog"
	default:
		return ""
	}
}

// renderResults draws the flattened list with a header at each category change.
func renderResults(items []Item, active int) string {
	if len(items) == 0 {
		return styles.muted.Render("no results")
	}

	var b strings.Builder
	var prev ItemKind = -1
	for i, it := range items {
		if it.Kind != prev {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(styles.section.Render(it.Kind.String()+"s") + "\n")
			prev = it.Kind
		}

		line := fmt.Sprintf("%s  %s", it.Label, styles.muted.Render(describe(it)))
		if i == active {
			line = styles.active.Render("› "+it.Label) + "  " + styles.muted.Render(describe(it))
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// renderOptions draws a dialog's choices with the cursor marked.
func renderOptions(options []string, cursor int) string {
	var b strings.Builder
	for i, opt := range options {
		if i == cursor {
			b.WriteString(styles.active.Render("› "+opt) + "\n")
		} else {
			b.WriteString("  " + opt + "\n")
		}
	}
	return b.String()
}

// renderTracks draws an editor's ordered track list.
func renderTracks(tracks []models.OrderedTrack, cursor int) string {
	if len(tracks) == 0 {
		return styles.muted.Render("no tracks yet") + "\n"
	}

	var b strings.Builder
	for i, t := range tracks {
		line := fmt.Sprintf("%2d. %s  %s", i+1, t.Title, styles.muted.Render(shared.FormatDuration(t.DurationSeconds)))
		if i == cursor {
			line = styles.active.Render(fmt.Sprintf("%2d. %s", i+1, t.Title)) + "  " + styles.muted.Render(shared.FormatDuration(t.DurationSeconds))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
