package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bikeshare-dashboard/models"
	"bikeshare-dashboard/services"
	"bikeshare-dashboard/storage"
)

// selectionFlags are the date picker inputs shared by report and export.
type selectionFlags struct {
	start string
	end   string
	day   string
}

func (f *selectionFlags) bind(cmd *cobra.Command, withDay bool) {
	cmd.Flags().StringVar(&f.start, "start", "", "First date of the range (YYYY-MM-DD), defaults to the first date in the data")
	cmd.Flags().StringVar(&f.end, "end", "", "Last date of the range (YYYY-MM-DD), defaults to the last date in the data")
	if withDay {
		cmd.Flags().StringVar(&f.day, "day", "", "Single day to look up (YYYY-MM-DD), defaults to the first date in the data")
	}
}

// selection parses the flags and clamps them to the view's bounds.
func (f *selectionFlags) selection(view *services.DataView) (services.Selection, error) {
	var (
		sel services.Selection
		err error
	)
	if sel.Start, err = parseDateFlag("start", f.start); err != nil {
		return sel, err
	}
	if sel.End, err = parseDateFlag("end", f.end); err != nil {
		return sel, err
	}
	if sel.Day, err = parseDateFlag("day", f.day); err != nil {
		return sel, err
	}

	min, max, ok := view.Bounds()
	if !ok {
		return sel, nil
	}
	return sel.Normalize(min, max), nil
}

func parseDateFlag(name, raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	d, err := storage.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

// parseViews turns a comma separated list into view kinds. "all" or an
// empty list selects every view.
func parseViews(raw string) ([]models.ViewKind, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "all" {
		return models.ViewKinds(), nil
	}
	var out []models.ViewKind
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kind, ok := models.ParseViewKind(part)
		if !ok {
			return nil, fmt.Errorf("unknown view %q (want one of %s)", part, viewNames())
		}
		out = append(out, kind)
	}
	return out, nil
}

func viewNames() string {
	names := make([]string, 0, len(models.ViewKinds()))
	for _, k := range models.ViewKinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}
