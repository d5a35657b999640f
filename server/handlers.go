package server

import (
	"bytes"
	"errors"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"bikeshare-dashboard/charts"
	"bikeshare-dashboard/models"
	"bikeshare-dashboard/services"
)

const dateLayout = "2006-01-02"

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("[server] %s %s: %v", r.Method, r.URL.Path, err)
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}

// selectionOrError writes the matching error response when the query is
// invalid. ok is false when a response was written.
func (s *Server) selectionOrError(w http.ResponseWriter, r *http.Request) (services.Selection, bool) {
	sel, err := s.selectionFrom(r)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errUnknownView) {
			status = http.StatusNotFound
		}
		s.writeError(w, r, status, err)
		return sel, false
	}
	return sel, true
}

func (s *Server) renderSelection(sel services.Selection) *models.Dashboard {
	d := s.view.Render(sel)
	s.metrics.ObserveRecords(d.Days)
	return d
}

type boundsResponse struct {
	Min  string `json:"min"`
	Max  string `json:"max"`
	Days int    `json:"days"`
}

func (s *Server) handleBounds(w http.ResponseWriter, r *http.Request) {
	min, max, ok := s.view.Bounds()
	if !ok {
		s.writeError(w, r, http.StatusNotFound, errors.New("no data loaded"))
		return
	}
	render.JSON(w, r, boundsResponse{
		Min:  min.Format(dateLayout),
		Max:  max.Format(dateLayout),
		Days: s.view.Table().Len(),
	})
}

// recordJSON is the wire form of a DailyRecord. Missing covariates are null.
type recordJSON struct {
	Date       string              `json:"date"`
	Count      int                 `json:"count"`
	Weekday    string              `json:"weekday"`
	WorkingDay bool                `json:"workingday"`
	Weather    string              `json:"weather_condition"`
	Season     string              `json:"season"`
	Year       int                 `json:"year"`
	Month      int                 `json:"month"`
	Holiday    bool                `json:"holiday"`
	YearMonth  string              `json:"year_month"`
	Covariates map[string]*float64 `json:"covariates,omitempty"`
	Category   string              `json:"rental_category,omitempty"`
}

func toRecordJSON(r models.DailyRecord) recordJSON {
	out := recordJSON{
		Date:       r.Date.Format(dateLayout),
		Count:      r.Count,
		Weekday:    r.Weekday.String(),
		WorkingDay: r.WorkingDay,
		Weather:    r.Weather.String(),
		Season:     r.Season.String(),
		Year:       r.Year,
		Month:      int(r.Month),
		Holiday:    r.Holiday,
		YearMonth:  r.YearMonth,
	}
	if len(r.Covariates) > 0 {
		out.Covariates = make(map[string]*float64, len(r.Covariates))
		for k, v := range r.Covariates {
			v := v
			if math.IsNaN(v) {
				out.Covariates[k] = nil
				continue
			}
			out.Covariates[k] = &v
		}
	}
	if r.Category != models.CategoryNone {
		out.Category = r.Category.String()
	}
	return out
}

type recordsResponse struct {
	Start   string       `json:"start"`
	End     string       `json:"end"`
	Count   int          `json:"count"`
	Records []recordJSON `json:"records"`
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selectionOrError(w, r)
	if !ok {
		return
	}
	categorize, err := boolParam(r, "categorize")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	table := s.renderSelection(sel).Filtered
	if categorize {
		table = services.Categorize(table)
	}

	records := make([]recordJSON, 0, table.Len())
	for _, rec := range table.Records {
		records = append(records, toRecordJSON(rec))
	}
	render.JSON(w, r, recordsResponse{
		Start:   sel.Start.Format(dateLayout),
		End:     sel.End.Format(dateLayout),
		Count:   len(records),
		Records: records,
	})
}

type totalResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
	Total int    `json:"total"`
}

func (s *Server) handleTotal(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selectionOrError(w, r)
	if !ok {
		return
	}
	d := s.renderSelection(sel)
	render.JSON(w, r, totalResponse{
		Start: d.Start.Format(dateLayout),
		End:   d.End.Format(dateLayout),
		Days:  d.Days,
		Total: d.Total,
	})
}

type dayResponse struct {
	Day    string      `json:"day"`
	Found  bool        `json:"found"`
	Count  int         `json:"count"`
	Record *recordJSON `json:"record,omitempty"`
}

// handleDay looks the day up without clamping, so dates outside the data
// report found=false.
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	day, err := optionalDate(r.URL.Query().Get("day"), "day")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if day.IsZero() {
		min, _, _ := s.view.Bounds()
		day = min
	}

	resp := dayResponse{Day: day.Format(dateLayout)}
	if rec, ok := services.LookupDay(s.view.Table(), day); ok {
		j := toRecordJSON(rec)
		resp.Found = true
		resp.Count = rec.Count
		resp.Record = &j
	}
	render.JSON(w, r, resp)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	kind, ok := models.ParseViewKind(chi.URLParam(r, "view"))
	if !ok {
		s.writeError(w, r, http.StatusNotFound, errors.New("unknown view "+chi.URLParam(r, "view")))
		return
	}
	sel, ok := s.selectionOrError(w, r)
	if !ok {
		return
	}
	sel.View = kind
	render.JSON(w, r, s.renderSelection(sel))
}

func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selectionOrError(w, r)
	if !ok {
		return
	}
	excluded := services.DefaultCorrelationExclusions
	if extra := listParam(r, "exclude"); len(extra) > 0 {
		excluded = append(append([]string(nil), excluded...), extra...)
	}
	render.JSON(w, r, services.CorrelationMatrix(s.renderSelection(sel).Filtered, excluded))
}

type groupsResponse struct {
	Key    string             `json:"key"`
	Start  string             `json:"start"`
	End    string             `json:"end"`
	Groups []models.GroupStat `json:"groups"`
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	key, ok := services.ParseGroupKey(chi.URLParam(r, "key"))
	if !ok {
		s.writeError(w, r, http.StatusNotFound, errors.New("unknown group key "+chi.URLParam(r, "key")))
		return
	}
	sel, ok := s.selectionOrError(w, r)
	if !ok {
		return
	}

	table := s.renderSelection(sel).Filtered
	if key == services.GroupRentalCategory {
		table = services.Categorize(table)
	}
	stats, err := services.GroupSummary(table, key)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	render.JSON(w, r, groupsResponse{
		Key:    string(key),
		Start:  sel.Start.Format(dateLayout),
		End:    sel.End.Format(dateLayout),
		Groups: stats,
	})
}

// handleCharts serves the go-echarts page for one view. It defaults to the
// trend view.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selectionOrError(w, r)
	if !ok {
		return
	}
	if sel.View == "" {
		sel.View = models.ViewTrend
	}

	var buf bytes.Buffer
	if err := charts.RenderPage(&buf, s.renderSelection(sel)); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
