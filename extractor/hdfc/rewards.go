package hdfc

import (
	"regexp"
	"strings"

	"github.com/aqlanhadi/stmtparse/extractor/common"
	"github.com/aqlanhadi/stmtparse/extractor/generic"
	"github.com/aqlanhadi/stmtparse/extractor/reconcile"
)

var countRegex = regexp.MustCompile(`^(?:\d{1,3}(?:,\d{3})+|\d+)$`)

// Rewards understands both summary templates: the compact "Reward Points: N"
// line with an unlabelled four-number row, and the older labelled
// five-column table.
func (p *Parser) Rewards(doc *common.Document) common.RewardExtraction {
	if r, ok := p.compactRewards(doc.Text); ok {
		return r
	}
	if r, ok := p.tableRewards(doc.Text); ok {
		return r
	}
	return p.base.Rewards(doc)
}

func (p *Parser) compactRewards(text string) (common.RewardExtraction, bool) {
	re, m := common.FirstMatch(p.cfg.RewardBalance, text)
	if re == nil {
		return common.RewardExtraction{}, false
	}
	closing, ok := generic.ParseCount(common.Submatch(re, m, "value"))
	if !ok {
		return common.RewardExtraction{}, false
	}

	loc := re.FindStringIndex(text)
	window := text[loc[1]:min(len(text), loc[1]+rewardWindow)]
	problem := reconcile.RewardBalance()
	for _, run := range countRuns(window) {
		for i := 0; i+4 <= len(run); i++ {
			group := run[i : i+4]
			for j, v := range group {
				if v != closing {
					continue
				}
				if c, err := problem.SolveAnchored(group, reconcile.RewardClosing, j); err == nil {
					p.log.Debug("compact reward row reconciled")
					return reconcile.RewardsOf(c), true
				}
			}
		}
	}
	return common.RewardExtraction{Closing: closing}, true
}

func (p *Parser) tableRewards(text string) (common.RewardExtraction, bool) {
	for _, re := range p.cfg.RewardSummary {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		window := text[loc[1]:min(len(text), loc[1]+rewardWindow)]

		table := reconcile.RewardTable()
		if end, ok := p.labelsInOrder(window); ok {
			if group := firstRun(countRuns(window[end:]), 5); group != nil {
				if table.Residual(group) == 0 {
					return reconcile.TableRewardsOf(reconcile.Candidate{Values: group, Order: []int{0, 1, 2, 3, 4}}), true
				}
				if c, err := table.Solve(group); err == nil {
					return reconcile.TableRewardsOf(c), true
				}
			}
		}

		// partial or missing labels
		runs := countRuns(window)
		if group := firstRun(runs, 5); group != nil {
			if c, err := table.Solve(group); err == nil {
				return reconcile.TableRewardsOf(c), true
			}
		}
		if group := firstRun(runs, 4); group != nil {
			if c, err := reconcile.RewardBalance().Solve(group); err == nil {
				return reconcile.RewardsOf(c), true
			}
		}
	}
	return common.RewardExtraction{}, false
}

// labelsInOrder reports whether every column label appears, in column order,
// and where the last one ends.
func (p *Parser) labelsInOrder(window string) (int, bool) {
	pos := 0
	for _, label := range p.cfg.RewardLabels {
		loc := firstIndex(label, window[pos:])
		if loc == nil {
			return 0, false
		}
		pos += loc[1]
	}
	return pos, true
}

func firstIndex(res []*regexp.Regexp, s string) []int {
	for _, re := range res {
		if loc := re.FindStringIndex(s); loc != nil {
			return loc
		}
	}
	return nil
}

// countRuns splits s into maximal runs of consecutive integer fields.
func countRuns(s string) [][]int64 {
	var runs [][]int64
	var run []int64
	for _, field := range strings.Fields(s) {
		if countRegex.MatchString(field) {
			if v, ok := generic.ParseCount(field); ok {
				run = append(run, v)
				continue
			}
		}
		if len(run) > 0 {
			runs = append(runs, run)
			run = nil
		}
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}
	return runs
}

// firstRun returns the first n values of the first run at least n long.
func firstRun(runs [][]int64, n int) []int64 {
	for _, run := range runs {
		if len(run) >= n {
			return run[:n]
		}
	}
	return nil
}
