// Package html renders converted sessions as standalone HTML pages styled
// with Tailwind CSS (CDN) and syntax highlighting via goldmark + chroma.
package html

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sonnes/lekhak/core"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
)

//go:embed templates/*.html
var content embed.FS

// Renderer renders an event stream to a standalone HTML page.
type Renderer struct {
	md   goldmark.Markdown
	tmpl *template.Template
}

// New creates an HTML Renderer with goldmark configured for GFM and syntax
// highlighting.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("dracula"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // inline styles for standalone pages
				),
			),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(), // allow raw HTML in markdown
		),
	)

	tmpl := template.Must(
		template.New("page.html").
			Funcs(funcMap()).
			ParseFS(content, "templates/*.html"),
	)

	return &Renderer{md: md, tmpl: tmpl}
}

// pageData is the top-level template data passed to page.html.
type pageData struct {
	Title     string
	SessionID string
	Dir       string
	StartedAt time.Time
	Version   string
	Branch    string

	Events  []eventData
	Summary *core.Summary
}

// eventData is the per-event template data. Kind is a plain string so the
// template can compare it against literals.
type eventData struct {
	Kind       string
	RoleLabel  string
	BadgeClass string

	// Body is the rendered turn text; empty for tool and model events.
	Body template.HTML

	ToolName string
	ToolArgs string
	Failed   bool
	Model    string
	Text     string
}

// Render writes the session as a complete HTML page to w. The summary may
// be nil.
func (r *Renderer) Render(w io.Writer, events []core.Event, summary *core.Event) error {
	data := pageData{}
	if summary != nil {
		data.Summary = summary.Summary
	}

	for _, ev := range events {
		switch ev.Kind {
		case core.KindMetadata:
			data.SessionID = ev.SessionID
			data.Dir = ev.Dir
			data.StartedAt = ev.StartedAt
			data.Version = ev.Version
			data.Branch = ev.Branch
		case core.KindUserTurn:
			if data.Title == "" {
				data.Title = core.Title(ev.Text)
			}
			body, err := r.markdown(ev.Text)
			if err != nil {
				return err
			}
			data.Events = append(data.Events, eventData{
				Kind:       string(ev.Kind),
				RoleLabel:  "User",
				BadgeClass: "text-blue-700 bg-blue-50",
				Body:       body,
			})
		case core.KindAssistantTurn:
			body, err := r.markdown(ev.Text)
			if err != nil {
				return err
			}
			data.Events = append(data.Events, eventData{
				Kind:       string(ev.Kind),
				RoleLabel:  "Assistant",
				BadgeClass: "text-emerald-700 bg-emerald-50",
				Body:       body,
			})
		case core.KindToolOutcome:
			data.Events = append(data.Events, eventData{
				Kind:     string(ev.Kind),
				ToolName: ev.ToolName,
				ToolArgs: ev.ToolArgs,
				Failed:   ev.Failed,
			})
		case core.KindModelChange:
			data.Events = append(data.Events, eventData{Kind: string(ev.Kind), Model: ev.Model})
		case core.KindNotification:
			data.Events = append(data.Events, eventData{Kind: string(ev.Kind), Text: ev.Text})
		}
	}

	if data.Title == "" && data.SessionID != "" {
		data.Title = "Session " + data.SessionID
	}

	return r.tmpl.ExecuteTemplate(w, "page.html", data)
}

func (r *Renderer) markdown(text string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("goldmark convert: %w", err)
	}
	return template.HTML(buf.String()), nil
}
