package server

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"bikeshare-dashboard/models"
)

const dataSourceURL = "https://www.kaggle.com/code/ramanchandra/bike-sharing-data-analysis"

var numbers = message.NewPrinter(language.English)

var pageTemplate = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"date":      func(d time.Time) string { return d.Format(dateLayout) },
	"longDate":  func(d time.Time) string { return d.Format("02 January 2006") },
	"thousands": func(n int) string { return numbers.Sprintf("%d", n) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Bike Sharing Dashboard</title>
<style>
body { font-family: sans-serif; margin: 0; display: flex; }
aside { width: 280px; padding: 1rem; background: #f3f4f6; min-height: 100vh; }
main { flex: 1; padding: 1rem 2rem; }
label { display: block; margin-top: .75rem; font-size: .9rem; }
.metric { font-size: 2rem; font-weight: bold; }
.warn { color: #b45309; }
iframe { width: 100%; height: 900px; border: 0; }
</style>
</head>
<body>
<aside>
  <h2>Bike Sharing</h2>
  <form method="get" action="/">
    <label>Start date <input type="date" name="start" value="{{date .D.Start}}" min="{{date .D.MinDate}}" max="{{date .D.MaxDate}}"></label>
    <label>End date <input type="date" name="end" value="{{date .D.End}}" min="{{date .D.MinDate}}" max="{{date .D.MaxDate}}"></label>
    <label>Single day <input type="date" name="day" value="{{date .D.Day}}" min="{{date .D.MinDate}}" max="{{date .D.MaxDate}}"></label>
    <label>View
      <select name="view">
        {{- range .Views}}
        <option value="{{.Kind}}"{{if .Selected}} selected{{end}}>{{.Title}}</option>
        {{- end}}
      </select>
    </label>
    <p><button type="submit">Apply</button></p>
  </form>
</aside>
<main>
  <h1>Bike Sharing Dashboard</h1>
  <section>
    <h3>Total rentals {{date .D.Start}} .. {{date .D.End}}</h3>
    <div class="metric">{{thousands .D.Total}}</div>
    <div>{{.D.Days}} days in range</div>
  </section>
  <section>
    <h3>Rentals on a single day</h3>
    {{- if .D.DayFound}}
    <p>{{longDate .D.Day}}: <strong>{{thousands .D.DayCount}}</strong> bikes</p>
    {{- else}}
    <p class="warn">No data for {{longDate .D.Day}}.</p>
    {{- end}}
  </section>
  <section>
    <h3>{{.Title}}</h3>
    {{- if .Empty}}
    <p class="warn">No data for the selected date range.</p>
    {{- end}}
    <iframe src="{{.ChartsURL}}" title="{{.Title}}"></iframe>
  </section>
  <footer><p>Data source: <a href="{{.Source}}">{{.Source}}</a></p></footer>
</main>
</body>
</html>
`))

type viewOption struct {
	Kind     models.ViewKind
	Title    string
	Selected bool
}

type pageData struct {
	D         *models.Dashboard
	Views     []viewOption
	Title     string
	Empty     bool
	ChartsURL string
	Source    string
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sel, ok := s.selectionOrError(w, r)
	if !ok {
		return
	}
	if sel.View == "" {
		sel.View = models.ViewTrend
	}
	d := s.renderSelection(sel)

	views := make([]viewOption, 0, len(models.ViewKinds()))
	for _, k := range models.ViewKinds() {
		views = append(views, viewOption{Kind: k, Title: k.Title(), Selected: k == sel.View})
	}

	q := url.Values{}
	q.Set("view", string(sel.View))
	q.Set("start", sel.Start.Format(dateLayout))
	q.Set("end", sel.End.Format(dateLayout))

	data := pageData{
		D:         d,
		Views:     views,
		Title:     sel.View.Title(),
		Empty:     d.View != nil && d.View.Empty,
		ChartsURL: "/charts?" + q.Encode(),
		Source:    dataSourceURL,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
