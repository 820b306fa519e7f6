package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/a11yscan/a11yscan/internal/config"
	"github.com/a11yscan/a11yscan/internal/contrast"
	"github.com/a11yscan/a11yscan/internal/dom"
	"github.com/a11yscan/a11yscan/internal/model"
	"github.com/a11yscan/a11yscan/internal/structure"
)

// Scanner runs the primary WCAG rule set: text alternatives, contrast,
// keyboard access, ARIA validity, form labeling, heading structure,
// focus order, and color-only information.
type Scanner struct {
	cfg       *config.Config
	logger    *slog.Logger
	validator *structure.Validator
}

// NewScanner creates the primary rule system.
func NewScanner(cfg *config.Config, logger *slog.Logger) *Scanner {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{cfg: cfg, logger: logger, validator: structure.NewValidator()}
}

// Name implements System.
func (s *Scanner) Name() string { return "scanner" }

// Analyze implements System, running the rule checks enabled by the
// configuration. Alt presence, heading structure, and color-only
// information have no toggle; they are core rules that are always on.
func (s *Scanner) Analyze(ctx context.Context, data *AnalysisData) (*model.AnalyzerResult, error) {
	checks := []check{
		{name: "alt-presence", run: s.checkAltPresence},
	}
	if s.cfg.EnableColorContrastCheck {
		checks = append(checks, check{name: "contrast", run: s.checkContrast})
	}
	if s.cfg.EnableKeyboardAccessibilityCheck {
		checks = append(checks,
			check{name: "keyboard-access", run: s.checkKeyboardAccess},
			check{name: "focus-order", run: s.checkFocusOrder},
		)
	}
	if s.cfg.EnableARIAValidation {
		checks = append(checks, check{name: "aria", run: s.checkARIA})
	}
	if s.cfg.EnableFormValidation {
		checks = append(checks, check{name: "form-labels", run: s.checkFormLabels})
	}
	checks = append(checks,
		check{name: "headings", run: s.checkHeadings},
		check{name: "color-only", run: s.checkColorOnly},
	)
	return runChecks(ctx, s.logger, s.Name(), data, checks)
}

// checkAltPresence flags image elements carrying no alt attribute at
// all. Alt text quality is the visual system's concern; absence of the
// attribute is a deterministic defect.
func (s *Scanner) checkAltPresence(data *AnalysisData) []model.AccessibilityIssue {
	issues := make([]model.AccessibilityIssue, 0)
	for _, el := range data.Context.Images {
		if el.Info.HasAttr("alt") || isDecorativeImage(el.Info) {
			continue
		}
		issues = append(issues, model.NewIssue(model.IssueMissingAltText, el.Info,
			fmt.Sprintf("<%s> has no alt attribute.", el.Info.Tag), 0.95))
	}
	return issues
}

// checkContrast evaluates every visible text block's effective colors
// against the configured conformance level. A deficit of a full ratio
// point or more is upgraded to critical.
func (s *Scanner) checkContrast(data *AnalysisData) []model.AccessibilityIssue {
	issues := make([]model.AccessibilityIssue, 0)
	insp := data.Context.Inspector

	level := contrast.LevelAA
	if s.cfg.WCAGLevel == "AAA" {
		level = contrast.LevelAAA
	}

	for _, el := range data.Context.TextBlocks {
		fg, bg := insp.EffectiveColors(el.Node)
		large := insp.LargeText(el.Node)
		res := contrast.Evaluate(fg, bg, level, large)

		required := res.Required
		passes := res.Passes
		if s.cfg.MinContrastRatio > 0 {
			required = s.cfg.MinContrastRatio
			passes = res.Ratio >= required
		}
		if passes {
			continue
		}

		issue := model.NewIssue(model.IssueInsufficientContrast, el.Info,
			fmt.Sprintf("Text contrast ratio %.2f:1 is below the required %.2f:1.", res.Ratio, required), 0.85)
		if required-res.Ratio >= 1.0 {
			issue.Severity = model.SeverityCritical
		}
		issues = append(issues, issue)
	}
	return issues
}

// keyHandlerAttrs are inline handler attributes that give an element
// keyboard behavior without focusability telling the whole story.
var keyHandlerAttrs = []string{"onkeydown", "onkeyup", "onkeypress"}

func hasKeyHandler(n *html.Node) bool {
	for _, attr := range keyHandlerAttrs {
		if dom.HasAttr(n, attr) {
			return true
		}
	}
	return false
}

// nativeInteractive reports elements whose tag alone makes them
// keyboard operable in every browser.
func nativeInteractive(n *html.Node) bool {
	switch n.Data {
	case "a", "area":
		return dom.HasAttr(n, "href")
	case "button", "select", "textarea", "summary":
		return true
	case "input":
		return !strings.EqualFold(dom.Attr(n, "type"), "hidden")
	case "audio", "video":
		return dom.HasAttr(n, "controls")
	}
	return false
}

// checkKeyboardAccess flags interactive elements a keyboard user
// cannot operate: custom controls that cannot receive focus and carry
// no key handlers, and native controls pulled out of the tab order.
// A focusable custom control with tabindex=-1 is not flagged; scripts
// move focus there in the roving-tabindex pattern.
func (s *Scanner) checkKeyboardAccess(data *AnalysisData) []model.AccessibilityIssue {
	issues := make([]model.AccessibilityIssue, 0)
	insp := data.Context.Inspector

	for _, el := range data.Context.Interactive {
		n := el.Node
		focus, focusable := insp.FocusInfo(n)

		if nativeInteractive(n) {
			if focusable && focus.TabIndexSet && focus.TabIndex < 0 {
				issues = append(issues, model.NewIssue(model.IssueKeyboardInaccessible, el.Info,
					fmt.Sprintf("Native control <%s> is removed from the tab order by tabindex=%d.",
						el.Info.Tag, focus.TabIndex), 0.8))
			}
			continue
		}

		if focusable || hasKeyHandler(n) {
			continue
		}
		issues = append(issues, model.NewIssue(model.IssueKeyboardInaccessible, el.Info,
			fmt.Sprintf("<%s> responds to pointer events but cannot receive keyboard focus.",
				el.Info.Tag), 0.9))
	}
	return issues
}

// checkFocusOrder flags focus-order overrides: positive tabindex values
// that impose an author-defined order, and autofocus attributes that
// move focus on load without user action.
func (s *Scanner) checkFocusOrder(data *AnalysisData) []model.AccessibilityIssue {
	issues := make([]model.AccessibilityIssue, 0)
	for _, f := range data.Context.Focusables {
		if f.TabIndexSet && f.TabIndex > 0 {
			issues = append(issues, model.NewIssue(model.IssueFocusManagement, f.Info,
				fmt.Sprintf("tabindex=%d overrides the natural focus order.", f.TabIndex), 0.95))
		}
		if f.Info.HasAttr("autofocus") {
			issues = append(issues, model.NewIssue(model.IssueFocusManagement, f.Info,
				"autofocus steals focus when the page loads.", 0.85))
		}
	}
	return issues
}

// checkARIA validates ARIA usage across the whole tree: id references
// that resolve to nothing, role values outside the ARIA vocabulary,
// and roles that require an accessible name carrying none. Hidden
// elements are included; broken ARIA stays in the accessibility tree.
func (s *Scanner) checkARIA(data *AnalysisData) []model.AccessibilityIssue {
	issues := make([]model.AccessibilityIssue, 0)
	doc := data.Context.Document
	insp := data.Context.Inspector

	doc.Walk(func(n *html.Node) {
		for _, attr := range []string{"aria-labelledby", "aria-describedby"} {
			ids := strings.Fields(dom.Attr(n, attr))
			if len(ids) == 0 {
				continue
			}
			resolved := false
			for _, id := range ids {
				if doc.ByID(id) != nil {
					resolved = true
					break
				}
			}
			if !resolved {
				issues = append(issues, model.NewIssue(model.IssueInvalidARIA, insp.Inspect(n),
					fmt.Sprintf("%s references missing id %q.", attr, strings.Join(ids, " ")), 0.95))
			}
		}

		if !dom.HasAttr(n, "role") {
			return
		}
		role := ""
		if fields := strings.Fields(strings.ToLower(dom.Attr(n, "role"))); len(fields) > 0 {
			role = fields[0]
		}
		switch {
		case role == "":
			// An empty role attribute falls back to the implicit role.
		case !validAriaRoles[role]:
			issues = append(issues, model.NewIssue(model.IssueInvalidARIA, insp.Inspect(n),
				fmt.Sprintf("role=%q is not a valid ARIA role.", role), 0.95))
		case nameRequiredRoles[role] && insp.AccessibleName(n) == "":
			issues = append(issues, model.NewIssue(model.IssueInvalidARIA, insp.Inspect(n),
				fmt.Sprintf("role=%q requires an accessible name but none is provided.", role), 0.9))
		}
	})
	return issues
}

// checkFormLabels delegates control labeling to the structure
// validator.
func (s *Scanner) checkFormLabels(data *AnalysisData) []model.AccessibilityIssue {
	return violationIssues(s.validator.ValidateFormControls(data.Context.Controls))
}

// checkHeadings delegates heading hierarchy to the structure validator.
func (s *Scanner) checkHeadings(data *AnalysisData) []model.AccessibilityIssue {
	return violationIssues(s.validator.ValidateHeadings(data.Context.Headings))
}

var (
	// colorWordPattern matches the color names people use when
	// pointing at colored UI.
	colorWordPattern = regexp.MustCompile(`(?i)\b(red|green|blue|yellow|orange|purple|pink)\b`)

	// colorInstructionPattern matches the verbs of instructions that
	// direct the reader toward those colors.
	colorInstructionPattern = regexp.MustCompile(`(?i)\b(click|press|select|choose|see|shown|marked|highlighted|indicates?|indicated)\b`)
)

// checkColorOnly flags information conveyed by color alone: links
// distinguished from surrounding prose only by their color, and text
// that instructs the reader to look for a color. Both are heuristics
// and carry low confidence.
func (s *Scanner) checkColorOnly(data *AnalysisData) []model.AccessibilityIssue {
	issues := make([]model.AccessibilityIssue, 0)
	styles := data.Context.Inspector.Styles()

	for _, el := range data.Context.Links {
		n := el.Node
		if styles.Underlined(n) {
			continue
		}
		parent := dom.ParentElement(n)
		if parent == nil || dom.OwnText(parent) == "" {
			continue
		}
		if styles.TextColor(n) == styles.TextColor(parent) {
			continue
		}
		issues = append(issues, model.NewIssue(model.IssueColorOnlyInformation, el.Info,
			"Link is distinguished from surrounding text by color alone.", 0.6))
	}

	for _, el := range data.Context.TextBlocks {
		text := el.Info.Text
		if colorWordPattern.MatchString(text) && colorInstructionPattern.MatchString(text) {
			issues = append(issues, model.NewIssue(model.IssueColorOnlyInformation, el.Info,
				"Text appears to rely on color alone to convey an instruction.", 0.4))
		}
	}
	return issues
}

// violationIssues converts structural violations into reportable
// issues.
func violationIssues(violations []structure.Violation) []model.AccessibilityIssue {
	issues := make([]model.AccessibilityIssue, 0, len(violations))
	for _, v := range violations {
		issues = append(issues, v.Issue())
	}
	return issues
}
