package sbi

import (
	"strings"

	"github.com/aqlanhadi/stmtparse/extractor/common"
	"github.com/aqlanhadi/stmtparse/extractor/generic"
	"github.com/aqlanhadi/stmtparse/extractor/reconcile"
	"github.com/sirupsen/logrus"
)

const (
	contextWindow = 220
	anchorWindow  = 90
)

// anchors maps a column label printed right before a number group to the
// role of the group's first number. Checked in order.
var anchors = []struct {
	label string
	role  int
}{
	{"closing balance", reconcile.RewardClosing},
	{"previous balance", reconcile.RewardPrevious},
	{"earned", reconcile.RewardEarned},
	{"redeemed", reconcile.RewardRedeemed},
}

// Rewards finds a four-number group near the reward summary labels and
// assigns it with previous + earned - redeemed == closing. The layout varies
// between the numbers before or after the header, so a label directly in
// front of the group pins its first number.
func (p *Parser) Rewards(doc *common.Document) common.RewardExtraction {
	text := doc.Flat
	problem := reconcile.RewardBalance()

	for _, re := range p.cfg.RewardGroup {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			start, end := loc[0], loc[1]
			ctx := strings.ToLower(text[max(0, start-contextWindow):min(len(text), end+contextWindow)])
			if !strings.Contains(ctx, "previous balance") || !strings.Contains(ctx, "earned") {
				continue
			}

			group, ok := numbers(text, loc)
			if !ok {
				continue
			}
			pre := strings.ToLower(text[max(0, start-anchorWindow):start])
			post := strings.ToLower(text[end:min(len(text), end+anchorWindow)])

			c, err := p.assign(problem, group, pre, post)
			if err != nil {
				p.log.WithError(err).Debug("reward group does not reconcile")
				continue
			}
			r := reconcile.RewardsOf(c)
			p.log.WithFields(logrus.Fields{"closing": r.Closing, "earned": r.Earned}).Debug("reward points reconciled")
			return r
		}
	}
	return common.RewardExtraction{}
}

func (p *Parser) assign(problem reconcile.Problem, group []int64, pre, post string) (reconcile.Candidate, error) {
	for _, a := range anchors {
		if strings.Contains(pre, a.label) {
			if c, err := problem.SolveAnchored(group, a.role, 0); err == nil {
				return c, nil
			}
			return problem.Solve(group)
		}
	}
	// numbers directly above a Previous/Earned/Redeemed/Closing header
	if strings.Contains(post, "previous balance") && strings.Contains(post, "earned") && problem.Residual(group) == 0 {
		return reconcile.Candidate{Values: group, Order: []int{0, 1, 2, 3}}, nil
	}
	return problem.Solve(group)
}

func numbers(text string, loc []int) ([]int64, bool) {
	var group []int64
	for i := 2; i+1 < len(loc); i += 2 {
		if loc[i] < 0 {
			return nil, false
		}
		v, ok := generic.ParseCount(text[loc[i]:loc[i+1]])
		if !ok {
			return nil, false
		}
		group = append(group, v)
	}
	return group, len(group) == 4
}
