// Package matcher matches report filenames against glob, regex and template
// patterns and extracts the named fields a filename carries.
//
// A template is a literal filename with placeholders, e.g.
// "{date}_{label}_投资建议.md". Placeholders compile to named regex groups;
// regex patterns may name their own groups with (?P<name>...).
package matcher

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style glob patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
	// Template uses literal filenames with {field} placeholders.
	Template
	// Auto attempts to detect the pattern type.
	Auto
)

// Field placeholders understood by templates.
const (
	FieldDate  = "date"
	FieldLabel = "label"
)

// fieldPatterns are the regex fragments placeholders compile to.
var fieldPatterns = map[string]string{
	FieldDate:  `\d{4}-\d{2}-\d{2}`,
	FieldLabel: `.+?`,
}

var placeholder = regexp.MustCompile(`\{([a-z]+)\}`)

// Matcher is the main interface for pattern matching operations.
type Matcher interface {
	// Match checks if the input matches the pattern
	Match(input string) bool
	// Fields returns the named fields captured from input.
	Fields(input string) (map[string]string, bool)
	// Pattern returns the original pattern string.
	Pattern() string
	// Type returns the pattern type being used.
	Type() PatternType
}

// matcher is the concrete implementation of the Matcher interface.
type matcher struct {
	pattern         string
	patternType     PatternType
	compiled        *regexp.Regexp
	globPattern     string
	caseInsensitive bool
}

// Options configures the matcher behavior.
type Options struct {
	// CaseInsensitive makes matching case-insensitive
	CaseInsensitive bool
	// Anchored adds ^ and $ to regex patterns if not present
	Anchored bool
}

// DefaultOptions returns the default options.
func DefaultOptions() *Options {
	return &Options{
		CaseInsensitive: false,
		Anchored:        false,
	}
}

// New creates a new Matcher with the specified pattern and type.
func New(patternType PatternType, pattern string, opts ...*Options) (Matcher, error) {
	var options *Options
	if len(opts) > 0 && opts[0] != nil {
		options = opts[0]
	} else {
		options = DefaultOptions()
	}

	m := &matcher{
		pattern:     pattern,
		patternType: patternType,
	}

	// Auto-detect pattern type if needed
	if patternType == Auto {
		m.patternType = detectPatternType(pattern)
	}

	// Apply options and compile pattern
	if err := m.compile(options); err != nil {
		return nil, fmt.Errorf("failed to compile pattern: %w", err)
	}

	return m, nil
}

// MustNew creates a new Matcher and panics if there's an error.
func MustNew(patternType PatternType, pattern string, opts ...*Options) Matcher {
	m, err := New(patternType, pattern, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// compile prepares the pattern for matching.
func (m *matcher) compile(opts *Options) error {
	m.caseInsensitive = opts.CaseInsensitive

	switch m.patternType {
	case Glob:
		m.globPattern = m.pattern
		if opts.CaseInsensitive {
			m.globPattern = strings.ToLower(m.globPattern)
		}
		// Validate glob pattern
		if _, err := filepath.Match(m.globPattern, ""); err != nil {
			return fmt.Errorf("invalid glob pattern: %w", err)
		}
		return nil
	case Template:
		pattern, err := TemplateToRegex(m.pattern)
		if err != nil {
			return err
		}
		return m.compileRegex(pattern, opts)
	case Regex:
		pattern := m.pattern
		// Add anchors if requested
		if opts.Anchored {
			if !strings.HasPrefix(pattern, "^") {
				pattern = "^" + pattern
			}
			if !strings.HasSuffix(pattern, "$") {
				pattern = pattern + "$"
			}
		}
		return m.compileRegex(pattern, opts)
	default:
		return fmt.Errorf("unsupported pattern type: %v", m.patternType)
	}
}

func (m *matcher) compileRegex(pattern string, opts *Options) error {
	// Add case-insensitive flag if needed
	if opts.CaseInsensitive && !strings.HasPrefix(pattern, "(?i)") {
		pattern = "(?i)" + pattern
	}
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid regex pattern: %w", err)
	}
	m.compiled = compiled
	return nil
}

// Match checks if the input matches the pattern.
func (m *matcher) Match(input string) bool {
	if m.patternType == Glob {
		compareInput := input
		if m.caseInsensitive {
			compareInput = strings.ToLower(input)
		}
		matched, _ := filepath.Match(m.globPattern, compareInput)
		return matched
	}
	return m.compiled.MatchString(input)
}

// Fields returns the named groups captured from input. Glob patterns match
// without fields.
func (m *matcher) Fields(input string) (map[string]string, bool) {
	if m.patternType == Glob {
		return map[string]string{}, m.Match(input)
	}
	sub := m.compiled.FindStringSubmatch(input)
	if sub == nil {
		return nil, false
	}
	fields := make(map[string]string)
	for i, name := range m.compiled.SubexpNames() {
		if name != "" {
			fields[name] = sub[i]
		}
	}
	return fields, true
}

// Pattern returns the original pattern string.
func (m *matcher) Pattern() string {
	return m.pattern
}

// Type returns the pattern type being used.
func (m *matcher) Type() PatternType {
	return m.patternType
}

// detectPatternType attempts to detect if a pattern is a template, a glob or
// a regex.
func detectPatternType(pattern string) PatternType {
	if placeholder.MatchString(pattern) {
		return Template
	}

	// Check for common regex metacharacters not used in glob
	regexIndicators := []string{
		"^", "$", "\\d", "\\w", "\\s", "\\D", "\\W", "\\S",
		"(?:", "(?i)", "(?P<", "{", "}", "+", "|", "(", ")",
	}
	for _, indicator := range regexIndicators {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}

	// Default to glob for simple strings
	return Glob
}

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Template:
		return "template"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// TemplateToRegex converts a template to an anchored regex with one named
// group per placeholder. Unknown placeholders are an error.
func TemplateToRegex(template string) (string, error) {
	var regex strings.Builder
	regex.WriteString("^")

	rest := template
	for {
		loc := placeholder.FindStringSubmatchIndex(rest)
		if loc == nil {
			regex.WriteString(regexp.QuoteMeta(rest))
			break
		}
		regex.WriteString(regexp.QuoteMeta(rest[:loc[0]]))
		name := rest[loc[2]:loc[3]]
		fragment, ok := fieldPatterns[name]
		if !ok {
			return "", fmt.Errorf("unknown template field %q", name)
		}
		fmt.Fprintf(&regex, "(?P<%s>%s)", name, fragment)
		rest = rest[loc[1]:]
	}

	regex.WriteString("$")
	return regex.String(), nil
}

// Expand fills the placeholders of a template. Placeholders without a value
// are left as written.
func Expand(template string, fields map[string]string) string {
	return placeholder.ReplaceAllStringFunc(template, func(p string) string {
		if v, ok := fields[p[1:len(p)-1]]; ok {
			return v
		}
		return p
	})
}
