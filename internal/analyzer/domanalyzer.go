package analyzer

import (
	"context"
	"log/slog"
	"time"

	"github.com/a11yscan/a11yscan/internal/config"
	"github.com/a11yscan/a11yscan/internal/dom"
	"github.com/a11yscan/a11yscan/internal/model"
)

// DOMAnalyzer builds the shared AnalysisData for a page. It runs
// exactly once per scan, before the analysis systems, so the document
// tree is walked a single time no matter how many systems consume it.
type DOMAnalyzer struct {
	cfg    *config.Config
	logger *slog.Logger
	env    dom.Environment
}

// NewDOMAnalyzer creates a DOMAnalyzer. A nil environment falls back
// to the static cascade with the default viewport.
func NewDOMAnalyzer(cfg *config.Config, logger *slog.Logger, env dom.Environment) *DOMAnalyzer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DOMAnalyzer{cfg: cfg, logger: logger, env: env}
}

// AnalyzePage extracts the page context and body snapshot for one
// document. On any internal failure it returns an explicitly empty
// bundle rather than propagating, so a broken page can never abort
// the caller's pipeline; the systems then see no content and report
// clean empty results.
func (a *DOMAnalyzer) AnalyzePage(ctx context.Context, doc *dom.Document, url string) (data *AnalysisData) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("context extraction panicked, returning empty context",
				"url", url,
				"panic", r)
			data = &AnalysisData{
				Context: &dom.PageContext{URL: url, ExtractedAt: time.Now()},
				Page:    model.ElementInfo{Tag: "body", XPath: "/html/body"},
			}
		}
	}()

	pc := dom.Extract(ctx, doc, a.env, dom.ExtractOptions{
		URL:           url,
		IncludeHidden: a.cfg.IncludeHiddenElements,
	})

	page := model.ElementInfo{Tag: "body", XPath: "/html/body"}
	if body := doc.Body(); body != nil && pc.Inspector != nil {
		page = pc.Inspector.Inspect(body)
	}

	return &AnalysisData{Context: pc, Page: page}
}
