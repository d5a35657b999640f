package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bikeshare-dashboard/charts"
	"bikeshare-dashboard/models"
	"bikeshare-dashboard/services"
	"bikeshare-dashboard/storage"
	"bikeshare-dashboard/utils"
)

const exportBaseName = "daily_rentals"

func exportCommand(a *app) *cobra.Command {
	var (
		sel        selectionFlags
		formats    string
		views      string
		dir        string
		categorize bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered table and chart snapshots to files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("dir") {
				dir = a.cfg.ExportDir
			}
			wanted, err := parseFormats(formats)
			if err != nil {
				return err
			}

			dv, err := a.loadView(cmd.Context())
			if err != nil {
				return err
			}
			s, err := sel.selection(dv)
			if err != nil {
				return err
			}

			table := dv.Render(s).Filtered
			if categorize {
				table = services.Categorize(table)
			}
			a.logger.Info("[export] %d records from %s to %s",
				table.Len(), s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"))

			for _, f := range wanted {
				switch f {
				case "csv", "xlsx":
					path, err := writeTable(table, dir, f)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s\n", path)

				case "png":
					kinds, err := parseViews(views)
					if err != nil {
						return err
					}
					dashboards := make([]*models.Dashboard, 0, len(kinds))
					for _, k := range kinds {
						vs := s
						vs.View = k
						dashboards = append(dashboards, dv.Render(vs))
					}
					written, err := charts.NewSnapshotter(a.cfg, a.logger).Export(cmd.Context(), dashboards, dir)
					for _, p := range written {
						fmt.Fprintf(cmd.OutOrStdout(), "%s\n", p)
					}
					if err != nil {
						return fmt.Errorf("png export: %w", err)
					}
				}
			}
			return nil
		},
	}

	sel.bind(cmd, false)
	cmd.Flags().StringVar(&formats, "format", "csv", "Comma separated output formats: csv, xlsx, png")
	cmd.Flags().StringVar(&views, "views", "all", "Views to snapshot for png: "+viewNames()+" or all")
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (overrides EXPORT_DIR)")
	cmd.Flags().BoolVar(&categorize, "categorize", false, "Add the rental_category column")
	return cmd
}

// parseFormats validates and dedupes the --format list.
func parseFormats(raw string) ([]string, error) {
	seen := utils.NewKeySet()
	var out []string
	for _, part := range strings.Split(raw, ",") {
		f := strings.ToLower(strings.TrimSpace(part))
		if f == "" {
			continue
		}
		switch f {
		case "csv", "xlsx", "png":
		default:
			return nil, fmt.Errorf("unknown export format %q (want csv, xlsx or png)", f)
		}
		if seen.Add(f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no export format given")
	}
	return out, nil
}

func writeTable(table *models.Table, dir, format string) (string, error) {
	path := filepath.Join(dir, exportBaseName+"."+format)

	var (
		w   storage.TableWriter
		err error
	)
	switch format {
	case "xlsx":
		w, err = storage.NewXLSXWriter(path)
	default:
		w, err = storage.NewCSVWriter(path)
	}
	if err != nil {
		return "", err
	}

	if err := w.Write(table); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return path, nil
}
