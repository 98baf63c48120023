package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/shared"
)

// APIGet makes a direct GET request to the API
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return services.StatusError(resp)
	}
	return r.writeResponse(resp, !cmd.Bool("json"))
}

// APIPost makes a direct POST request to the API
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}
	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}

	r.logger.Info("POST request", "path", path)

	if !json.Valid([]byte(data)) {
		return fmt.Errorf("%w: data is not valid JSON", shared.ErrInvalidInput)
	}

	resp, err := r.api.Post(ctx, path, []byte(data))
	if err != nil {
		return err
	}
	if !resp.OK() {
		return services.StatusError(resp)
	}
	return r.writeResponse(resp, true)
}

func (r *Runner) writeResponse(resp *services.APIResponse, pretty bool) error {
	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}
	if len(resp.Body) == 0 {
		return r.writePlain("%d\n", resp.StatusCode)
	}
	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// APIDump collects what the configured caller can see into one document.
//
// Endpoint failures are recorded in the dump instead of stopping it.
func (r *Runner) APIDump(ctx context.Context, cmd *cli.Command) error {
	pretty := cmd.Bool("pretty")
	save := cmd.String("save")

	r.logger.Info("dumping API state")

	type DumpError struct {
		Endpoint string `json:"endpoint"`
		Error    string `json:"error"`
	}

	type DumpData struct {
		Health  any                      `json:"health"`
		Public  []models.Playlist        `json:"playlists_public"`
		Mine    []models.Playlist        `json:"playlists_me"`
		Details []*models.PlaylistDetail `json:"details"`
		Errors  []DumpError              `json:"errors,omitempty"`
	}

	dump := DumpData{
		Public:  []models.Playlist{},
		Mine:    []models.Playlist{},
		Details: []*models.PlaylistDetail{},
	}
	record := func(endpoint string, err error) {
		dump.Errors = append(dump.Errors, DumpError{Endpoint: endpoint, Error: err.Error()})
		r.logger.Warn("dump request failed", "endpoint", endpoint, "error", err)
	}

	if resp, err := r.api.Get(ctx, "/health"); err != nil {
		record("/health", err)
	} else if !resp.OK() {
		record("/health", services.StatusError(resp))
	} else {
		dump.Health = resp.JSONData
	}

	if public, err := r.api.PublicPlaylists(ctx); err != nil {
		record("/playlists/public", err)
	} else {
		dump.Public = public
	}

	if mine, err := r.api.MyPlaylists(ctx); err != nil {
		record("/playlists/me/playlists", err)
	} else {
		dump.Mine = mine
		for _, p := range mine {
			detail, err := r.api.PlaylistDetail(ctx, p.ID)
			if err != nil {
				record("/playlists/me/playlists/"+p.ID+"/detail", err)
				continue
			}
			dump.Details = append(dump.Details, detail)
		}
	}

	if save != "" {
		data, err := shared.MarshalJSON(dump, true)
		if err != nil {
			return fmt.Errorf("failed to marshal dump: %w", err)
		}
		if err := os.WriteFile(save, data, 0644); err != nil {
			return fmt.Errorf("failed to save dump: %w", err)
		}
		r.logger.Info("dump saved", "file", save)
	}

	return r.writeJSON(dump, pretty)
}
