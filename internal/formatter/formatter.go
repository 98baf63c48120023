// package formatter renders playlist export documents (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// Format names an export rendering.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

var contentTypes = map[Format]string{
	FormatJSON:     "application/json; charset=utf-8",
	FormatCSV:      "text/csv; charset=utf-8",
	FormatMarkdown: "text/markdown; charset=utf-8",
	FormatText:     "text/plain; charset=utf-8",
}

// ParseFormat validates a format name; "" means JSON.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatJSON, nil
	}
	if f == "markdown" {
		return FormatMarkdown, nil
	}
	if _, ok := contentTypes[f]; !ok {
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrValidation, s)
	}
	return f, nil
}

// Attachment is a rendered export ready to be offered as a download.
type Attachment struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ContentDisposition returns the header value marking the response as a download.
func (a Attachment) ContentDisposition() string {
	return fmt.Sprintf("attachment; filename=%q", a.Filename)
}

// NewExportDocument builds the export document from a playlist and its ordered tracks.
func NewExportDocument(p models.Playlist, tracks []models.OrderedTrack) models.ExportDocument {
	doc := models.ExportDocument{
		ID:       p.ID,
		Name:     p.Name,
		IsPublic: p.IsPublic,
		Tracks:   make([]models.ExportTrack, 0, len(tracks)),
	}
	for _, t := range tracks {
		doc.Tracks = append(doc.Tracks, models.ExportTrack{
			ID:              t.ID,
			Title:           t.Title,
			DurationSeconds: t.DurationSeconds,
		})
	}
	return doc
}

// ExportFilename returns playlist-<id>.<ext>.
func ExportFilename(id string, f Format) string {
	return fmt.Sprintf("playlist-%s.%s", id, f)
}

// Render produces the attachment for doc in format f.
func Render(doc *models.ExportDocument, f Format) (*Attachment, error) {
	var (
		body []byte
		err  error
	)

	switch f {
	case FormatJSON, "":
		f = FormatJSON
		body, err = ExportToJSON(doc)
	case FormatCSV:
		body, err = ExportToCSV(doc)
	case FormatMarkdown:
		body, err = ExportToMarkdown(doc)
	case FormatText:
		body, err = ExportToText(doc)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrValidation, f)
	}
	if err != nil {
		return nil, err
	}

	return &Attachment{
		Filename:    ExportFilename(doc.ID, f),
		ContentType: contentTypes[f],
		Body:        body,
	}, nil
}

// ExportToJSON encodes doc as indented JSON with a trailing newline
func ExportToJSON(doc *models.ExportDocument) ([]byte, error) {
	data, err := shared.MarshalJSON(doc, true)
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV converts an export to CSV format with columns: ID, Title, Duration, Length
func ExportToCSV(doc *models.ExportDocument) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Duration", "Length"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range doc.Tracks {
		record := []string{
			track.ID,
			track.Title,
			strconv.Itoa(track.DurationSeconds),
			shared.FormatDuration(track.DurationSeconds),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts an export to a Markdown document
func ExportToMarkdown(doc *models.ExportDocument) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", doc.Name))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", len(doc.Tracks)))
	buf.WriteString(fmt.Sprintf("**Length**: %s\n", shared.FormatDuration(doc.TotalSeconds())))
	buf.WriteString(fmt.Sprintf("**Visibility**: %s\n\n", shared.Visibility(doc.IsPublic)))

	buf.WriteString("## Tracks\n\n")
	for i, track := range doc.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s [%s]\n", i+1, track.Title, shared.FormatDuration(track.DurationSeconds)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts an export to plain text format
func ExportToText(doc *models.ExportDocument) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", doc.Name))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(doc.Tracks)))

	for i, track := range doc.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, track.Title, shared.FormatDuration(track.DurationSeconds)))
	}

	return buf.Bytes(), nil
}

// WriteExport renders doc and writes it to path, defaulting to the attachment filename.
//
// Returns the path written.
func WriteExport(doc *models.ExportDocument, f Format, path string) (string, error) {
	attachment, err := Render(doc, f)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = attachment.Filename
	}

	if err := os.WriteFile(path, attachment.Body, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// ParseExport decodes a JSON export document and checks it can be imported.
func ParseExport(data []byte) (*models.ExportDocument, error) {
	var doc models.ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid export document: %v", shared.ErrInvalidInput, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if doc.Tracks == nil {
		doc.Tracks = []models.ExportTrack{}
	}
	return &doc, nil
}

// ReadExport reads and parses an export document from path.
func ReadExport(path string) (*models.ExportDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export file: %w", err)
	}
	return ParseExport(data)
}
