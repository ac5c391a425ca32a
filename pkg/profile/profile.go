// Package profile holds the immutable configuration that drives every stage of
// the aggregation pipeline: keyword sets, column rules, normalization
// vocabularies, similarity thresholds, source ordering and rendered labels.
//
// A Profile is built once (Default or Load) and passed by pointer into each
// component. Components never mutate it; callers that need a variant use Clone.
package profile

// Direction names used in keyword rules.
const (
	Increase  = "increase"
	Decrease  = "decrease"
	Unchanged = "unchanged"
)

// Layout scopes.
const (
	// ScopeHeading reads the first table under the section heading.
	ScopeHeading = "heading"
	// ScopeDocument reads every table in the document.
	ScopeDocument = "document"
)

// Layout value units.
const (
	UnitPercent = "percent"
	UnitAmount  = "amount"
	// UnitAuto treats a value column as percent when its header carries a
	// percent marker and as an amount otherwise.
	UnitAuto = "auto"
)

// Profile is the full set of tunables for one family of reports.
type Profile struct {
	Name       string     `yaml:"name" validate:"required"`
	Keywords   Keywords   `yaml:"keywords"`
	Sections   Sections   `yaml:"sections"`
	Normalize  Normalize  `yaml:"normalize"`
	Similarity Similarity `yaml:"similarity"`
	Sources    Sources    `yaml:"sources"`
	Categories Categories `yaml:"categories"`
	Labels     Labels     `yaml:"labels"`
	Weekly     Weekly     `yaml:"weekly"`
	Plan       Plan       `yaml:"plan"`
}

// Rule maps a keyword found in a phrase to a direction.
type Rule struct {
	Keyword   string `yaml:"keyword" validate:"required"`
	Direction string `yaml:"direction" validate:"oneof=increase decrease unchanged"`
}

// Keywords drives direction classification. Rules are checked in the order
// Maintain, then the kind-specific list, then Fallback.
type Keywords struct {
	Maintain []string `yaml:"maintain" validate:"min=1,dive,required"`
	Category []Rule   `yaml:"category" validate:"dive"`
	Item     []Rule   `yaml:"item" validate:"dive"`
	Fallback []Rule   `yaml:"fallback" validate:"dive"`

	// Arrows classify adjustment cells such as "↑2%".
	Arrows []Rule `yaml:"arrows" validate:"dive"`

	// NoNew phrases mark an explicit "no new themes" statement.
	NoNew []string `yaml:"no_new" validate:"dive,required"`
	// NoNewTopics are topic cells that carry the same meaning.
	NoNewTopics []string `yaml:"no_new_topics"`
}

// ColumnRule resolves a header containing every Include, at least one AnyOf
// when AnyOf is set, and no Exclude.
type ColumnRule struct {
	Include []string `yaml:"include" validate:"min=1,dive,required"`
	AnyOf   []string `yaml:"any_of,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// Column roles a layout may mark optional.
const (
	RoleValue     = "value"
	RoleBefore    = "before"
	RoleDelta     = "delta"
	RoleDirection = "direction"
	RoleBasis     = "basis"
)

// Layout is one table shape a section may be written in.
type Layout struct {
	Name  string `yaml:"name" validate:"required"`
	Scope string `yaml:"scope" validate:"oneof=heading document"`
	Unit  string `yaml:"unit" validate:"oneof=percent amount auto"`

	Key       []ColumnRule `yaml:"key" validate:"min=1,dive"`
	Value     []ColumnRule `yaml:"value,omitempty" validate:"dive"`
	Before    []ColumnRule `yaml:"before,omitempty" validate:"dive"`
	Delta     []ColumnRule `yaml:"delta,omitempty" validate:"dive"`
	Direction []ColumnRule `yaml:"direction,omitempty" validate:"dive"`
	Basis     []ColumnRule `yaml:"basis,omitempty" validate:"dive"`

	// Optional lists configured roles whose column may be absent.
	Optional []string `yaml:"optional,omitempty" validate:"dive,oneof=value before delta direction basis"`
	// Arrows reads the direction column for arrow markers only.
	Arrows bool `yaml:"arrows,omitempty"`
}

// Derived names the phrases used when a direction is computed from numbers.
type Derived struct {
	Increase string `yaml:"increase" validate:"required"`
	Decrease string `yaml:"decrease" validate:"required"`
	Hold     string `yaml:"hold" validate:"required"`
}

// Section describes one report section.
type Section struct {
	// Heading is the marker located in source reports and daily outputs.
	Heading string `yaml:"heading" validate:"required"`
	// Title is the daily output heading; it must contain Heading.
	Title string `yaml:"title" validate:"required"`
	// WeeklyTitle is the weekly output heading.
	WeeklyTitle string `yaml:"weekly_title"`
	// KeyHeader is the first column header of the rendered table.
	KeyHeader string   `yaml:"key_header" validate:"required"`
	Derived   Derived  `yaml:"derived"`
	Layouts   []Layout `yaml:"layouts" validate:"min=1,dive"`
}

// Highlights describes the bullet list of top changes in source reports.
type Highlights struct {
	Heading     string `yaml:"heading" validate:"required"`
	Title       string `yaml:"title" validate:"required"`
	TopN        int    `yaml:"top_n" validate:"gte=1"`
	MixedN      int    `yaml:"mixed_n" validate:"gte=0"`
	ReasonRunes int    `yaml:"reason_runes" validate:"gte=1"`
	MaxRunes    int    `yaml:"max_runes" validate:"gte=1"`
	// Keywords are the direction words looked up in a bullet, in order.
	Keywords []string `yaml:"keywords" validate:"min=1,dive,required"`
}

// Sections groups the report sections.
type Sections struct {
	Categories Section    `yaml:"categories"`
	Items      Section    `yaml:"items"`
	Themes     Section    `yaml:"themes"`
	Highlights Highlights `yaml:"highlights"`

	// Totals are key cells skipped as summary rows.
	Totals []string `yaml:"totals"`
	// PercentMarkers flag a value header as percent under UnitAuto.
	PercentMarkers []string `yaml:"percent_markers" validate:"min=1"`
}

// Replacement rewrites a substring before boilerplate stripping.
type Replacement struct {
	From string `yaml:"from" validate:"required"`
	To   string `yaml:"to"`
}

// Alias collapses a whole normalized key matching Pattern into Name.
type Alias struct {
	Pattern string `yaml:"pattern" validate:"required"`
	Name    string `yaml:"name" validate:"required"`
}

// Rules configures one normalizer.
type Rules struct {
	Replacements []Replacement `yaml:"replacements" validate:"dive"`
	Boilerplate  []string      `yaml:"boilerplate" validate:"dive,required"`
	Punctuation  string        `yaml:"punctuation"`
	CodeDigits   int           `yaml:"code_digits" validate:"gte=0"`
	Aliases      []Alias       `yaml:"aliases" validate:"dive"`

	// ShareClasses are trailing letters dropped by Variants.
	ShareClasses string `yaml:"share_classes"`
	// FeederMarker precedes a share class in feeder fund names.
	FeederMarker string `yaml:"feeder_marker"`
}

// Normalize holds the normalizer rules per entity kind.
type Normalize struct {
	Theme Rules `yaml:"theme"`
	Item  Rules `yaml:"item"`
}

// Token modes.
const (
	TokensWords   = "words"
	TokensBigrams = "bigrams"
)

// Match configures similarity between two normalized keys.
type Match struct {
	// BrandGuard rejects pairs whose leading ideographs differ.
	BrandGuard bool `yaml:"brand_guard"`
	BrandMin   int  `yaml:"brand_min" validate:"gte=0"`
	BrandMax   int  `yaml:"brand_max" validate:"gtefield=BrandMin"`

	SubstringMin int     `yaml:"substring_min" validate:"gte=1"`
	MinShared    int     `yaml:"min_shared" validate:"gte=1"`
	MinJaccard   float64 `yaml:"min_jaccard" validate:"gte=0,lte=1"`
	Tokens       string  `yaml:"tokens" validate:"oneof=words bigrams"`

	// Accumulate compares against the union of a group's tokens.
	Accumulate bool `yaml:"accumulate"`
}

// Similarity holds match rules per entity kind.
type Similarity struct {
	Theme Match `yaml:"theme"`
	Item  Match `yaml:"item"`
}

// SourceAlias maps a raw label prefix to a canonical display name.
type SourceAlias struct {
	Prefix string `yaml:"prefix" validate:"required"`
	Name   string `yaml:"name" validate:"required"`
}

// Sources fixes canonical naming and column order. The list order is the
// column order; unknown sources follow lexicographically.
type Sources struct {
	Aliases []SourceAlias `yaml:"aliases" validate:"dive"`
}

// Categories is the closed category vocabulary.
type Categories struct {
	Order   []string          `yaml:"order" validate:"min=1,dive,required"`
	Aliases map[string]string `yaml:"aliases"`
}

// Labels is the rendered vocabulary of consensus verdicts.
type Labels struct {
	Increase     string `yaml:"increase" validate:"required"`
	Decrease     string `yaml:"decrease" validate:"required"`
	Unchanged    string `yaml:"unchanged" validate:"required"`
	Unanimous    string `yaml:"unanimous" validate:"required"`
	Mostly       string `yaml:"mostly" validate:"required"`
	Disagreement string `yaml:"disagreement" validate:"required"`
	BiasPrefix   string `yaml:"bias_prefix" validate:"required"`
	NoBias       string `yaml:"no_bias" validate:"required"`
	Insufficient string `yaml:"insufficient" validate:"required"`
	Range        string `yaml:"range" validate:"required"`

	// Rendered document vocabulary.
	Title     string `yaml:"title" validate:"required"`
	Agreement string `yaml:"agreement" validate:"required"`
	Summary   string `yaml:"summary" validate:"required"`
	Note      string `yaml:"note" validate:"required"`
	Agreed    string `yaml:"agreed" validate:"required"`

	// MostlyRatio is the vote share at which agreement is "mostly".
	MostlyRatio float64 `yaml:"mostly_ratio" validate:"gt=0,lte=1"`
}

// Actions are the weekly verdict names for one entity kind.
type Actions struct {
	Increase string `yaml:"increase" validate:"required"`
	Decrease string `yaml:"decrease" validate:"required"`
}

// Weekly configures the signal engine.
type Weekly struct {
	ActionThreshold float64  `yaml:"action_threshold" validate:"gt=0,lte=1"`
	TrendThreshold  float64  `yaml:"trend_threshold" validate:"gt=0,lte=1"`
	Hold            string   `yaml:"hold" validate:"required"`
	Category        Actions  `yaml:"category"`
	Item            Actions  `yaml:"item"`
	TailHeaders     []string `yaml:"tail_headers" validate:"min=1"`
	FocusSize       int      `yaml:"focus_size" validate:"gte=1"`
}

// Plan configures mapping of report item names to the authoritative plan.
type Plan struct {
	MinJaccard float64 `yaml:"min_jaccard" validate:"gt=0,lte=1"`
}

// Clone returns a deep copy of p.
func (p *Profile) Clone() *Profile {
	c := *p
	c.Keywords.Maintain = cloneSlice(p.Keywords.Maintain)
	c.Keywords.Category = cloneSlice(p.Keywords.Category)
	c.Keywords.Item = cloneSlice(p.Keywords.Item)
	c.Keywords.Fallback = cloneSlice(p.Keywords.Fallback)
	c.Keywords.Arrows = cloneSlice(p.Keywords.Arrows)
	c.Keywords.NoNew = cloneSlice(p.Keywords.NoNew)
	c.Keywords.NoNewTopics = cloneSlice(p.Keywords.NoNewTopics)
	c.Sections.Categories = p.Sections.Categories.clone()
	c.Sections.Items = p.Sections.Items.clone()
	c.Sections.Themes = p.Sections.Themes.clone()
	c.Sections.Highlights.Keywords = cloneSlice(p.Sections.Highlights.Keywords)
	c.Sections.Totals = cloneSlice(p.Sections.Totals)
	c.Sections.PercentMarkers = cloneSlice(p.Sections.PercentMarkers)
	c.Normalize.Theme = p.Normalize.Theme.clone()
	c.Normalize.Item = p.Normalize.Item.clone()
	c.Sources.Aliases = cloneSlice(p.Sources.Aliases)
	c.Categories.Order = cloneSlice(p.Categories.Order)
	c.Categories.Aliases = make(map[string]string, len(p.Categories.Aliases))
	for k, v := range p.Categories.Aliases {
		c.Categories.Aliases[k] = v
	}
	c.Weekly.TailHeaders = cloneSlice(p.Weekly.TailHeaders)
	return &c
}

func (s Section) clone() Section {
	c := s
	c.Layouts = make([]Layout, len(s.Layouts))
	for i, l := range s.Layouts {
		l.Key = cloneRules(l.Key)
		l.Value = cloneRules(l.Value)
		l.Before = cloneRules(l.Before)
		l.Delta = cloneRules(l.Delta)
		l.Direction = cloneRules(l.Direction)
		l.Basis = cloneRules(l.Basis)
		l.Optional = cloneSlice(l.Optional)
		c.Layouts[i] = l
	}
	return c
}

func (r Rules) clone() Rules {
	c := r
	c.Replacements = cloneSlice(r.Replacements)
	c.Boilerplate = cloneSlice(r.Boilerplate)
	c.Aliases = cloneSlice(r.Aliases)
	return c
}

func cloneRules(rules []ColumnRule) []ColumnRule {
	if rules == nil {
		return nil
	}
	out := make([]ColumnRule, len(rules))
	for i, r := range rules {
		out[i] = ColumnRule{
			Include: cloneSlice(r.Include),
			AnyOf:   cloneSlice(r.AnyOf),
			Exclude: cloneSlice(r.Exclude),
		}
	}
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append([]T(nil), s...)
}
