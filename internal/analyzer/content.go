package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
	"golang.org/x/text/language"

	"github.com/a11yscan/a11yscan/internal/config"
	"github.com/a11yscan/a11yscan/internal/dom"
	"github.com/a11yscan/a11yscan/internal/model"
	"github.com/a11yscan/a11yscan/internal/structure"
)

const (
	// languageSampleLimit bounds the text sample fed to language
	// detection. Detection accuracy plateaus well below this.
	languageSampleLimit = 2000

	// minDetectionText is the minimum sample length worth detecting.
	// Shorter samples produce noise, not signal.
	minDetectionText = 20
)

// ContentAnalyzer validates content structure independently of the
// scanner: heading hierarchy, landmarks, link purpose, form
// accessibility, page language, and id uniqueness. The overlap with
// the scanner on headings and labels is deliberate; the systems fail
// independently and the coordinator deduplicates.
type ContentAnalyzer struct {
	cfg       *config.Config
	logger    *slog.Logger
	validator *structure.Validator

	// The lingua detector loads language models on first use, so it
	// is built lazily; scans with detection disabled never pay for it.
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
}

// NewContentAnalyzer creates the content-structure system.
func NewContentAnalyzer(cfg *config.Config, logger *slog.Logger) *ContentAnalyzer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentAnalyzer{cfg: cfg, logger: logger, validator: structure.NewValidator()}
}

// Name implements System.
func (c *ContentAnalyzer) Name() string { return "content" }

// Analyze implements System.
func (c *ContentAnalyzer) Analyze(ctx context.Context, data *AnalysisData) (*model.AnalyzerResult, error) {
	checks := []check{
		{name: "headings", run: c.checkHeadings},
		{name: "landmarks", run: c.checkLandmarks},
		{name: "link-purpose", run: c.checkLinkPurpose},
		{name: "language", run: c.checkLanguage},
		{name: "duplicate-ids", run: c.checkDuplicateIDs},
		{name: "skip-link", run: c.checkSkipLink},
	}
	if c.cfg.EnableFormValidation {
		checks = append(checks,
			check{name: "form-labels", run: c.checkFormLabels},
			check{name: "validation-hints", run: c.checkValidationHints},
		)
	}
	return runChecks(ctx, c.logger, c.Name(), data, checks)
}

// checkHeadings delegates heading hierarchy to the structure validator.
func (c *ContentAnalyzer) checkHeadings(data *AnalysisData) []model.AccessibilityIssue {
	return violationIssues(c.validator.ValidateHeadings(data.Context.Headings))
}

// checkLandmarks delegates landmark structure to the validator. The
// rules only apply to pages with perceivable content; an empty page
// needs no main region.
func (c *ContentAnalyzer) checkLandmarks(data *AnalysisData) []model.AccessibilityIssue {
	if !data.HasContent() {
		return make([]model.AccessibilityIssue, 0)
	}
	return violationIssues(c.validator.ValidateLandmarks(data.Page, data.Context.Landmarks))
}

// checkFormLabels delegates control labeling to the structure
// validator.
func (c *ContentAnalyzer) checkFormLabels(data *AnalysisData) []model.AccessibilityIssue {
	return violationIssues(c.validator.ValidateFormControls(data.Context.Controls))
}

// checkValidationHints flags constrained controls that give the user
// no machine-readable hint about what input is expected. Required or
// pattern-restricted fields without an aria-describedby description
// surface their rules only as a rejection after submission.
func (c *ContentAnalyzer) checkValidationHints(data *AnalysisData) []model.AccessibilityIssue {
	issues := make([]model.AccessibilityIssue, 0)
	for _, ctrl := range data.Context.Controls {
		constrained := ctrl.Required || ctrl.Info.HasAttr("pattern")
		if !constrained || ctrl.DescribedBy {
			continue
		}
		issues = append(issues, model.NewIssue(model.IssueFormValidation, ctrl.Info,
			"Constrained control describes no validation requirements to assistive technology.", 0.6))
	}
	return issues
}

// genericLinkPattern matches link texts that name the act of clicking
// instead of the destination.
var genericLinkPattern = regexp.MustCompile(`(?i)^(click here|here|link|read more|more|learn more|this|details)[.!]?$`)

// checkLinkPurpose flags links whose accessible name is missing or too
// generic to convey the destination out of context.
func (c *ContentAnalyzer) checkLinkPurpose(data *AnalysisData) []model.AccessibilityIssue {
	issues := make([]model.AccessibilityIssue, 0)
	insp := data.Context.Inspector

	for _, el := range data.Context.Links {
		name := strings.TrimSpace(insp.AccessibleName(el.Node))
		if name == "" {
			issues = append(issues, model.NewIssue(model.IssueLinkPurpose, el.Info,
				"Link has no accessible name.", 0.95))
			continue
		}
		if genericLinkPattern.MatchString(name) {
			issues = append(issues, model.NewIssue(model.IssueLinkPurpose, el.Info,
				fmt.Sprintf("Link text %q does not describe the link's purpose.", name), 0.85))
		}
	}
	return issues
}

// checkLanguage validates the page language declaration: presence of
// the lang attribute, BCP 47 validity, and, when detection is enabled,
// agreement between the declared language and the language the page
// text is actually written in. Pages without text need no declaration.
func (c *ContentAnalyzer) checkLanguage(data *AnalysisData) []model.AccessibilityIssue {
	issues := make([]model.AccessibilityIssue, 0)
	pc := data.Context
	if len(pc.TextBlocks) == 0 {
		return issues
	}

	htmlInfo := data.Page
	if root := pc.Document.HTML(); root != nil {
		htmlInfo = pc.Inspector.Inspect(root)
	}

	declared := strings.TrimSpace(pc.Document.Lang())
	if declared == "" {
		issues = append(issues, languageIssue(htmlInfo,
			"The html element declares no lang attribute.", 0.95))
		return issues
	}

	tag, err := language.Parse(declared)
	if err != nil {
		issues = append(issues, languageIssue(htmlInfo,
			fmt.Sprintf("lang=%q is not a valid BCP 47 language tag.", declared), 0.95))
		return issues
	}

	if !c.cfg.EnableLanguageDetection {
		return issues
	}
	sample := pageTextSample(pc, languageSampleLimit)
	if len(sample) < minDetectionText {
		return issues
	}

	detected, ok := c.languageDetector().DetectLanguageOf(sample)
	if !ok {
		return issues
	}
	iso := detected.IsoCode639_1().String()
	base, _ := tag.Base()
	if len(iso) != 2 || strings.EqualFold(iso, base.String()) {
		return issues
	}
	issues = append(issues, languageIssue(htmlInfo,
		fmt.Sprintf("Declared language %q does not match the detected content language %q.",
			declared, strings.ToLower(iso)), 0.6))
	return issues
}

// languageIssue builds a page-language issue with the 3.1.1 criterion.
func languageIssue(el model.ElementInfo, detail string, confidence float64) model.AccessibilityIssue {
	issue := model.NewIssue(model.IssueSemanticMarkup, el, detail, confidence)
	issue.WCAGCriteria = []string{"3.1.1"}
	return issue
}

// languageDetector builds the lingua detector on first use.
func (c *ContentAnalyzer) languageDetector() lingua.LanguageDetector {
	c.detectorOnce.Do(func() {
		c.detector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build()
	})
	return c.detector
}

// pageTextSample concatenates text blocks until the sample is large
// enough for detection. Individual snippets are already capped, so the
// overshoot past limit is at most one snippet.
func pageTextSample(pc *dom.PageContext, limit int) string {
	var b strings.Builder
	for _, el := range pc.TextBlocks {
		if b.Len() >= limit {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(el.Info.Text)
	}
	return b.String()
}

// checkDuplicateIDs flags ids appearing on more than one element.
// Every ARIA and label-for reference to such an id is ambiguous.
func (c *ContentAnalyzer) checkDuplicateIDs(data *AnalysisData) []model.AccessibilityIssue {
	issues := make([]model.AccessibilityIssue, 0)
	pc := data.Context

	for _, id := range pc.DuplicateIDs {
		info := data.Page
		if n := pc.Document.ByID(id); n != nil {
			info = pc.Inspector.Inspect(n)
		}
		issue := model.NewIssue(model.IssueSemanticMarkup, info,
			fmt.Sprintf("id=%q appears on more than one element.", id), 0.95)
		issue.WCAGCriteria = []string{"4.1.1"}
		issues = append(issues, issue)
	}
	return issues
}

// checkSkipLink flags pages that make keyboard users tab through the
// navigation on every page load: navigation is present but no
// same-page link bypasses it.
func (c *ContentAnalyzer) checkSkipLink(data *AnalysisData) []model.AccessibilityIssue {
	issues := make([]model.AccessibilityIssue, 0)
	sem := data.Context.Semantics
	if !data.HasContent() || !sem.HasNavigation || sem.HasSkipLink {
		return issues
	}
	issue := model.NewIssue(model.IssueFocusManagement, data.Page,
		"Page has navigation but no skip link to bypass it.", 0.6)
	issue.WCAGCriteria = []string{"2.4.1"}
	issues = append(issues, issue)
	return issues
}
