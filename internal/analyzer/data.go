package analyzer

import (
	"github.com/a11yscan/a11yscan/internal/dom"
	"github.com/a11yscan/a11yscan/internal/model"
)

// AnalysisData bundles everything the analysis systems need about one
// page. It is produced once per scan by the DOMAnalyzer and then
// shared read-only across the concurrently running systems, so none
// of them re-walks the document tree.
type AnalysisData struct {
	// Context is the extracted page context: classified element
	// collections, heading and landmark outlines, form controls,
	// focusables, and the inspector bound to the parsed document.
	Context *dom.PageContext

	// Page describes the document body. Page-level issues such as a
	// missing main landmark or a missing lang attribute attach here
	// so they carry a stable element path.
	Page model.ElementInfo
}

// HasContent reports whether the page carries any perceivable
// content. Empty and near-empty documents are valid pages that score
// a clean 100, so page-level structural rules (exactly one main
// landmark, declared language) only apply when there is something on
// the page those rules could help a user reach.
func (d *AnalysisData) HasContent() bool {
	if d == nil || d.Context == nil {
		return false
	}
	pc := d.Context
	return len(pc.TextBlocks) > 0 ||
		len(pc.Images) > 0 ||
		len(pc.Interactive) > 0 ||
		len(pc.Headings) > 0 ||
		len(pc.Media) > 0 ||
		len(pc.Forms) > 0
}
