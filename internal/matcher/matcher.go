// Package matcher aligns artifact blocks with template blocks by
// (kind, name), level by level.
package matcher

import (
	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/marker"
	"github.com/goliatone/go-docmark/internal/templates"
)

// Pair is one matched template/artifact block.
type Pair struct {
	Template *marker.Block
	Artifact *marker.Block
}

// Attributes returns the effective attributes of the pair. Template values
// win; artifact markers may only fill fields the template leaves unset.
func (p Pair) Attributes() marker.Attributes {
	if p.Template == nil {
		return p.Artifact.Attributes.Clone()
	}
	out := p.Template.Attributes.Clone()
	art := p.Artifact.Attributes
	if out.Level == 0 {
		out.Level = art.Level
	}
	if len(out.Covers) == 0 && len(art.Covers) > 0 {
		out.Covers = append([]string(nil), art.Covers...)
	}
	out.ToCode = out.ToCode || art.ToCode
	out.Priority = out.Priority || art.Priority
	return out
}

// Result holds every pair, at every depth, in artifact document order, plus
// the structural issues found while matching.
type Result struct {
	Pairs  []Pair
	Issues []diagnostics.Issue
	// Unmatched are artifact blocks with no template counterpart.
	Unmatched []*marker.Block
}

// Lookup returns the template block paired with an artifact block.
func (r Result) Lookup(artifact *marker.Block) *marker.Block {
	for _, pair := range r.Pairs {
		if pair.Artifact == artifact {
			return pair.Template
		}
	}
	return nil
}

// Match aligns the two block lists recursively. Order is never an error;
// only presence and multiplicity are checked.
func Match(tplBlocks, artBlocks []*marker.Block, policy templates.Policy) Result {
	var res Result
	matchLevel(tplBlocks, artBlocks, policy, &res, nil)
	return res
}

func matchLevel(tplBlocks, artBlocks []*marker.Block, policy templates.Policy, res *Result, parent *marker.Block) {
	slots := make(map[marker.Key][]*marker.Block, len(tplBlocks))
	order := make([]marker.Key, 0, len(tplBlocks))
	for _, tb := range tplBlocks {
		key := tb.Key()
		if _, ok := slots[key]; !ok {
			order = append(order, key)
		}
		slots[key] = append(slots[key], tb)
	}

	used := make(map[marker.Key]int, len(slots))
	for _, ab := range artBlocks {
		key := ab.Key()
		candidates, known := slots[key]
		if !known {
			res.Unmatched = append(res.Unmatched, ab)
			if issue, ok := unknownIssue(ab, policy); ok {
				res.Issues = append(res.Issues, issue)
			}
			continue
		}

		idx := used[key]
		var tb *marker.Block
		switch {
		case idx < len(candidates):
			tb = candidates[idx]
		case candidates[len(candidates)-1].Attributes.IsRepeatable():
			tb = candidates[len(candidates)-1]
		default:
			res.Issues = append(res.Issues, diagnostics.Errorf(diagnostics.CodeUnexpectedRepeat, ab.StartLine, ab.Path,
				"block %s appears more times than the template allows (%d)", key, len(candidates)))
			used[key] = idx + 1
			continue
		}
		used[key] = idx + 1

		res.Pairs = append(res.Pairs, Pair{Template: tb, Artifact: ab})
		if tb.Kind == marker.KindFree && len(tb.Children) == 0 {
			// an empty free block accepts any nested structure
			continue
		}
		matchLevel(tb.Children, ab.Children, policy, res, ab)
	}

	for _, key := range order {
		candidates := slots[key]
		for i := used[key]; i < len(candidates); i++ {
			tb := candidates[i]
			if !tb.Attributes.IsRequired() {
				continue
			}
			res.Issues = append(res.Issues, missingIssue(tb, parent))
		}
	}
}

func unknownIssue(ab *marker.Block, policy templates.Policy) (diagnostics.Issue, bool) {
	switch policy {
	case templates.PolicyIgnore:
		return diagnostics.Issue{}, false
	case templates.PolicyError:
		return diagnostics.Errorf(diagnostics.CodeUnknownBlock, ab.StartLine, ab.Path,
			"block %s is not part of the template", ab.Key()), true
	default:
		return diagnostics.Warnf(diagnostics.CodeUnknownBlock, ab.StartLine, ab.Path,
			"block %s is not part of the template", ab.Key()), true
	}
}

// missingIssue points at the enclosing artifact block, or line 1 at the top
// level, so the line is meaningful in the artifact.
func missingIssue(tb *marker.Block, parent *marker.Block) diagnostics.Issue {
	line, path := 1, tb.Path
	if parent != nil {
		line = parent.StartLine
		path = parent.Path + "/" + tb.Key().String()
	}
	return diagnostics.Errorf(diagnostics.CodeMissingRequired, line, path,
		"required block %s is missing (template line %d)", tb.Key(), tb.StartLine)
}
