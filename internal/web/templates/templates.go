// Package templates renders the shiprec dashboard pages as templ
// components.
package templates

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/shiprec/internal/core"
	"github.com/JonMunkholm/shiprec/internal/domain"
)

// KindCard is one kind on the dashboard.
type KindCard struct {
	Key     string
	Label   string
	Columns []string
}

// DashboardData is everything the dashboard shows.
type DashboardData struct {
	Kinds   []KindCard
	Jobs    []core.JobProgress
	History []domain.JobStatus
	Now     time.Time
}

const style = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}` +
	`table{border-collapse:collapse;margin-bottom:2rem}` +
	`th,td{border:1px solid #d1d5db;padding:.35rem .6rem;text-align:left}` +
	`.failed{color:#b91c1c}.done{color:#15803d}.alert{border:1px solid #b91c1c;padding:1rem}`

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// text writes s escaped for HTML.
func (p *printer) text(s string) {
	p.raw("%s", templ.EscapeString(s))
}

func page(title string, body func(p *printer)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		p.text(title)
		p.raw(`</title><style>%s</style></head><body><h1><a href="/">shiprec</a></h1>`, style)
		body(p)
		p.raw(`</body></html>`)
		return p.err
	})
}

// Dashboard lists the kinds, the live jobs and recent job history.
func Dashboard(d DashboardData) templ.Component {
	return page("shiprec", func(p *printer) {
		p.raw(`<h2>Kinds</h2><table><tr><th>Kind</th><th>Columns</th><th></th></tr>`)
		for _, k := range d.Kinds {
			p.raw(`<tr><td>`)
			p.text(k.Label)
			p.raw(`</td><td>%d</td><td><a href="/api/export/`, len(k.Columns))
			p.text(k.Key)
			p.raw(`/download">download</a></td></tr>`)
		}
		p.raw(`</table>`)

		p.raw(`<h2>Jobs</h2>`)
		if len(d.Jobs) == 0 {
			p.raw(`<p>No jobs yet.</p>`)
		} else {
			p.raw(`<table><tr><th>Job</th><th>Kind</th><th>Operation</th><th>Phase</th><th>Records</th><th>Duration</th></tr>`)
			for _, j := range d.Jobs {
				p.raw(`<tr><td><a href="/jobs/`)
				p.text(j.JobID)
				p.raw(`">`)
				p.text(shortID(j.JobID))
				p.raw(`</a></td><td>`)
				p.text(j.Kind)
				p.raw(`</td><td>`)
				p.text(string(j.Operation))
				p.raw(`</td><td class="%s">`, phaseClass(j))
				p.text(string(j.Phase))
				p.raw(`</td><td>%d</td><td>%s</td></tr>`, j.Records, j.Duration(d.Now).Round(time.Millisecond))
			}
			p.raw(`</table>`)
		}

		p.raw(`<h2>History</h2><table><tr><th>Name</th><th>Parameters</th><th>Started</th><th>Ended</th><th>Error</th></tr>`)
		for _, h := range d.History {
			p.raw(`<tr><td>`)
			p.text(h.Name)
			p.raw(`</td><td>`)
			p.text(h.Parameters)
			p.raw(`</td><td>%s</td><td>`, h.Start.Format(time.DateTime))
			if h.End != nil {
				p.raw(`%s`, h.End.Format(time.DateTime))
			}
			p.raw(`</td><td class="failed">`)
			p.text(h.Error)
			p.raw(`</td></tr>`)
		}
		p.raw(`</table>`)
	})
}

// JobPage shows a single job.
func JobPage(j core.JobProgress, now time.Time) templ.Component {
	return page("Job "+shortID(j.JobID), func(p *printer) {
		p.raw(`<h2>`)
		p.text(j.Kind + " " + string(j.Operation))
		p.raw(`</h2><dl><dt>Job</dt><dd>`)
		p.text(j.JobID)
		p.raw(`</dd><dt>File</dt><dd>`)
		p.text(j.FileName)
		p.raw(`</dd><dt>Phase</dt><dd class="%s">`, phaseClass(j))
		p.text(string(j.Phase))
		p.raw(`</dd><dt>Records</dt><dd>%d</dd><dt>Duration</dt><dd>%s</dd></dl>`,
			j.Records, j.Duration(now).Round(time.Millisecond))
		if j.Error != "" {
			writeAlert(p, "", j.Error, j.Code)
		}
	})
}

// ErrorAlert is a standalone error fragment.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &printer{w: w}
		writeAlert(p, action, message, code)
		return p.err
	})
}

// ErrorPage wraps ErrorAlert in the page layout.
func ErrorPage(message, action, code string) templ.Component {
	return page("Error", func(p *printer) {
		writeAlert(p, action, message, code)
	})
}

func writeAlert(p *printer, action, message, code string) {
	p.raw(`<div class="alert" role="alert"><strong>`)
	p.text(message)
	p.raw(`</strong>`)
	if action != "" {
		p.raw(`<p>`)
		p.text(action)
		p.raw(`</p>`)
	}
	if code != "" {
		p.raw(`<small>Code: `)
		p.text(code)
		p.raw(`</small>`)
	}
	p.raw(`</div>`)
}

func phaseClass(j core.JobProgress) string {
	switch {
	case !j.Done():
		return "running"
	case j.Error != "":
		return "failed"
	default:
		return "done"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
