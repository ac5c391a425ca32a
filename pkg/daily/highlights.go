package daily

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/agentstation/quorum/pkg/cell"
	"github.com/agentstation/quorum/pkg/constants"
	"github.com/agentstation/quorum/pkg/grouping"
	"github.com/agentstation/quorum/pkg/normalize"
)

// Digest sentences.
const (
	digestFallback = "当日各报告未提供可解析的“%s”，因此无法基于该部分做横向综述。"
	digestLead     = "综合当日%d份报告的“%s”，可以概括为："
	digestUp       = "多份报告倾向把定投多放在%s"
	digestDown     = "同时，多份报告建议适当收缩%s"
	digestReasons  = "，常见理由包括："
	digestMixed    = "%s分歧较大（%d份建议加一点、%d份建议减一点）"
	digestMixedWhy = "，原因多提到："
	digestMixedPre = "在分歧方面，"
	digestEnd      = "。"
	reasonPicks    = 2
)

// change is one top-change bullet of a report.
type change struct {
	source string
	item   string
	key    string
	dir    cell.Direction
	reason string
}

// parseChanges reads the bullets under the highlights heading up to the next
// heading. A bullet reads "item：direction from→to — reason".
func (a *Aggregator) parseChanges(text, source string) []change {
	h := a.profile.Sections.Highlights
	lines := strings.Split(text, "\n")
	start := slices.IndexFunc(lines, func(s string) bool { return strings.Contains(s, h.Heading) })
	if start < 0 {
		return nil
	}

	var out []change
	for _, ln := range lines[start+1:] {
		s := strings.TrimSpace(ln)
		if strings.HasPrefix(s, "#") {
			break
		}
		if !strings.HasPrefix(s, "*") && !strings.HasPrefix(s, "-") {
			continue
		}
		s = strings.TrimSpace(strings.TrimLeft(s, "*-"))
		item, rest, ok := strings.Cut(s, "：")
		item, rest = strings.TrimSpace(item), strings.TrimSpace(rest)
		if !ok || item == "" || rest == "" {
			continue
		}

		head, reason, found := strings.Cut(rest, "—")
		if !found {
			head, reason, _ = strings.Cut(rest, " - ")
		}

		c := change{
			source: source,
			item:   item,
			key:    a.itemNorm.Key(item),
			dir:    cell.None,
			reason: strings.TrimSpace(reason),
		}
		for _, k := range h.Keywords {
			if strings.Contains(head, k) {
				c.dir = a.classifier.Classify(k, cell.Item)
				break
			}
		}
		out = append(out, c)
	}
	return out
}

// changeGroup is one item of the digest with its vote counts.
type changeGroup struct {
	name     string
	sources  int
	up, down int
	reasons  string
}

// digest condenses the top-change bullets of all documents into a paragraph.
func (a *Aggregator) digest(docs []parsed, sourceCount int) string {
	h := a.profile.Sections.Highlights
	gr := grouping.New(grouping.Items(a.profile))
	changes := make(map[*grouping.Group][]change)
	for _, d := range docs {
		for _, c := range d.changes {
			g := gr.Add(grouping.Member{Source: c.source, Name: c.item, Key: c.key})
			changes[g] = append(changes[g], c)
		}
	}
	if len(changes) == 0 || sourceCount == 0 {
		return fmt.Sprintf(digestFallback, h.Heading)
	}

	var stats []changeGroup
	for _, g := range gr.Groups() {
		cg := changeGroup{name: g.MainName(), sources: len(g.Sources())}
		var reasons []string
		for _, c := range changes[g] {
			switch c.dir {
			case cell.Increase:
				cg.up++
			case cell.Decrease:
				cg.down++
			}
			if c.reason != "" {
				reasons = append(reasons, c.reason)
			}
		}
		cg.reasons = topReasons(reasons)
		stats = append(stats, cg)
	}

	up := pickTop(stats, h.TopN, func(g changeGroup) int { return g.up })
	down := pickTop(stats, h.TopN, func(g changeGroup) int { return g.down })
	mixed := pickTop(stats, h.MixedN, func(g changeGroup) int {
		if g.up == 0 || g.down == 0 {
			return 0
		}
		return g.up + g.down
	})

	var b strings.Builder
	fmt.Fprintf(&b, digestLead, sourceCount, h.Heading)
	a.digestClause(&b, digestUp, up)
	a.digestClause(&b, digestDown, down)
	if len(mixed) > 0 {
		segs := make([]string, 0, len(mixed))
		for _, g := range mixed {
			seg := fmt.Sprintf(digestMixed, g.name, g.up, g.down)
			if r := a.clip(g.reasons); r != "" {
				seg += digestMixedWhy + r
			}
			segs = append(segs, seg)
		}
		b.WriteString(digestMixedPre + strings.Join(segs, constants.NoteSeparator) + digestEnd)
	}

	paragraph := strings.TrimSpace(strings.ReplaceAll(b.String(), "\n", ""))
	if r := []rune(paragraph); len(r) > h.MaxRunes {
		paragraph = strings.TrimRight(string(r[:h.MaxRunes]), " \t")
	}
	return paragraph
}

func (a *Aggregator) digestClause(b *strings.Builder, format string, groups []changeGroup) {
	if len(groups) == 0 {
		return
	}
	names := make([]string, len(groups))
	var reasons []string
	for i, g := range groups {
		names[i] = g.name
		if r := a.clip(g.reasons); r != "" {
			reasons = append(reasons, r)
		}
	}
	fmt.Fprintf(b, format, strings.Join(names, constants.ListSeparator))
	if len(reasons) > 0 {
		b.WriteString(digestReasons + strings.Join(reasons, constants.NoteSeparator))
	}
	b.WriteString(digestEnd)
}

// clip collapses whitespace and cuts a reason to the configured rune count.
func (a *Aggregator) clip(s string) string {
	t := strings.Join(strings.Fields(s), " ")
	if r := []rune(t); len(r) > a.profile.Sections.Highlights.ReasonRunes {
		t = strings.TrimRight(string(r[:a.profile.Sections.Highlights.ReasonRunes]), " ")
	}
	return t
}

// pickTop returns up to n groups with a positive weight, by weight, then
// source count, then name.
func pickTop(stats []changeGroup, n int, weight func(changeGroup) int) []changeGroup {
	sorted := slices.Clone(stats)
	slices.SortStableFunc(sorted, func(x, y changeGroup) int {
		if c := cmp.Compare(weight(y), weight(x)); c != 0 {
			return c
		}
		if c := cmp.Compare(y.sources, x.sources); c != 0 {
			return c
		}
		return strings.Compare(x.name, y.name)
	})
	var out []changeGroup
	for _, g := range sorted {
		if len(out) == n || weight(g) <= 0 {
			break
		}
		out = append(out, g)
	}
	return out
}

// topReasons returns the most frequent distinct reasons joined by the name
// separator; ties go to the shorter reason.
func topReasons(reasons []string) string {
	freq := make(map[string]int)
	var distinct []string
	for _, r := range reasons {
		if freq[r] == 0 {
			distinct = append(distinct, r)
		}
		freq[r]++
	}
	slices.SortFunc(distinct, func(x, y string) int {
		if c := cmp.Compare(freq[y], freq[x]); c != 0 {
			return c
		}
		return normalize.ByLength(x, y)
	})
	if len(distinct) > reasonPicks {
		distinct = distinct[:reasonPicks]
	}
	return strings.Join(distinct, constants.NameSeparator)
}
