package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bikeshare-dashboard/models"
	"bikeshare-dashboard/services"
	"bikeshare-dashboard/storage"
)

var errUnknownView = errors.New("unknown view")

// selectionFrom reads start, end, day and view from the query and applies the
// picker rules against the data bounds. An empty view is left unset.
func (s *Server) selectionFrom(r *http.Request) (services.Selection, error) {
	q := r.URL.Query()
	var (
		sel services.Selection
		err error
	)
	if sel.Start, err = optionalDate(q.Get("start"), "start"); err != nil {
		return sel, err
	}
	if sel.End, err = optionalDate(q.Get("end"), "end"); err != nil {
		return sel, err
	}
	if sel.Day, err = optionalDate(q.Get("day"), "day"); err != nil {
		return sel, err
	}
	if raw := q.Get("view"); raw != "" {
		kind, ok := models.ParseViewKind(raw)
		if !ok {
			return sel, fmt.Errorf("%w %q", errUnknownView, raw)
		}
		sel.View = kind
	}

	min, max, ok := s.view.Bounds()
	if !ok {
		return sel, nil
	}
	return sel.Normalize(min, max), nil
}

func optionalDate(raw, name string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	d, err := storage.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return b, nil
}

// listParam splits a comma separated query value.
func listParam(r *http.Request, name string) []string {
	var out []string
	for _, part := range strings.Split(r.URL.Query().Get(name), ",") {
		if p := strings.TrimSpace(strings.ToLower(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
