package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperjump/rekishi/internal/cli"
	"github.com/hyperjump/rekishi/internal/models"
	"github.com/hyperjump/rekishi/internal/storage"
	"github.com/hyperjump/rekishi/pkg/utils"
)

func newStatusCmd(g *globalOptions) *cobra.Command {
	var serverURL, output string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show index, store and embedding status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cli.ParseFormat(output)
			if err != nil {
				return err
			}
			var status *models.IndexStatus
			if serverURL != "" {
				status, err = statusViaHTTP(cmd.Context(), serverURL)
			} else {
				status, err = statusLocal(cmd, g)
			}
			if err != nil {
				return fmt.Errorf("status failed: %w", err)
			}
			return writeStatus(cmd.OutOrStdout(), status, format)
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "", "query a running server instead of opening the index (e.g. http://localhost:8080)")
	cmd.Flags().StringVar(&output, "output", string(cli.OutputText), "output format: text or json")
	return cmd
}

func statusLocal(cmd *cobra.Command, g *globalOptions) (*models.IndexStatus, error) {
	cfg, logger, err := g.setup(true)
	if err != nil {
		return nil, err
	}
	defer logger.Sync()
	components, err := initializeComponents(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, err
	}
	defer components.Close()
	return storage.Status(cmd.Context(), components.Collection, cfg)
}

func statusViaHTTP(ctx context.Context, serverURL string) (*models.IndexStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(serverURL, "/")+"/api/v1/status", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var s models.IndexStatus
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func writeStatus(w io.Writer, s *models.IndexStatus, format cli.SearchOutputFormat) error {
	if format == cli.OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	writeLine(w, "documents:           %d", s.Documents)
	writeLine(w, "collection:          %s", s.Collection)
	writeLine(w, "store_type:          %s", s.StoreType)
	writeLine(w, "embedding_provider:  %s", s.Provider)
	writeLine(w, "embedding_dims:      %d", s.Dimensions)
	if s.IndexPath != "" {
		writeLine(w, "index_path:          %s", s.IndexPath)
	}
	if s.DiskUsageBytes != nil {
		writeLine(w, "disk_usage:          %s", utils.FormatBytes(*s.DiskUsageBytes))
	}
	return nil
}
