package html

import (
	"io"
	"sort"

	"github.com/sonnes/lekhak/manifest"
)

type indexData struct {
	Entries []manifest.Entry
}

// RenderIndex writes an HTML index page listing the given sessions to w,
// sorted newest-first by CreatedAt.
func (r *Renderer) RenderIndex(w io.Writer, entries []manifest.Entry) error {
	sorted := make([]manifest.Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return r.tmpl.ExecuteTemplate(w, "index.html", indexData{Entries: sorted})
}
