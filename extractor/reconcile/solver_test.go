package reconcile

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/aqlanhadi/stmtparse/extractor/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermute_LexicographicAndComplete(t *testing.T) {
	var got [][]int
	permute(3, func(o []int) { got = append(got, append([]int(nil), o...)) })

	assert.Equal(t, [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}, got)

	n := 0
	permute(5, func([]int) { n++ })
	assert.Equal(t, 120, n)
}

func TestAccountSummary_DocumentOrder(t *testing.T) {
	group := []int64{0, 0, 515398, 0, 515400}

	c, err := AccountSummary(3).Solve(group)
	require.NoError(t, err)

	s := SummaryOf(c)
	assert.Equal(t, int64(0), s.PreviousBalanceMinor)
	assert.Equal(t, int64(0), s.CreditsMinor)
	assert.Equal(t, int64(515398), s.DebitsMinor)
	assert.Equal(t, int64(0), s.FeesMinor)
	assert.Equal(t, int64(515400), s.TotalOutstandingMinor)
	assert.True(t, s.Reconciles(3))
}

func TestAccountSummary_ShuffledColumns(t *testing.T) {
	// outstanding, previous, debits, credits, fees
	group := []int64{1250000, 1000000, 450000, 200000, 0}

	c, err := AccountSummary(2).Solve(group)
	require.NoError(t, err)

	s := SummaryOf(c)
	assert.Equal(t, int64(1250000), s.TotalOutstandingMinor)
	assert.Equal(t, int64(0), s.FeesMinor)
	assert.True(t, s.Reconciles(2))
}

func TestAccountSummary_RoundTripProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	problem := AccountSummary(3)

	for i := 0; i < 200; i++ {
		prev := rng.Int63n(5_000_000)
		credits := rng.Int63n(prev + 1)
		debits := rng.Int63n(3_000_000)
		fees := rng.Int63n(50_000)
		out := prev - credits + debits + fees + rng.Int63n(3)
		group := []int64{prev, credits, debits, fees, out}
		rng.Shuffle(len(group), func(a, b int) { group[a], group[b] = group[b], group[a] })

		c, err := problem.Solve(group)
		if err != nil {
			continue
		}
		s := SummaryOf(c)
		assert.True(t, s.Reconciles(3), "case %d: %+v", i, s)
		assert.ElementsMatch(t, group, c.Values)
	}
}

func TestSolve_NoAssignment(t *testing.T) {
	_, err := AccountSummary(2).Solve([]int64{1, 10, 100, 1000, 100000})

	require.Error(t, err)
	assert.True(t, errors.Is(err, &common.Error{Code: common.CodeReconciliationFailed}))
}

func TestSolve_WrongGroupSize(t *testing.T) {
	_, err := RewardBalance().Solve([]int64{1, 2, 3})
	assert.Error(t, err)
}

func TestRewardBalance_PrefersPlausibleAssignment(t *testing.T) {
	c, err := RewardBalance().Solve([]int64{3988, 57, 0, 4045})
	require.NoError(t, err)

	r := RewardsOf(c)
	assert.Equal(t, int64(4045), r.Closing)
	assert.Equal(t, int64(57), r.Earned)
	assert.Equal(t, int64(3988), *r.Previous)
	assert.Equal(t, int64(0), *r.Redeemed)
}

func TestRewardBalance_Anchored(t *testing.T) {
	c, err := RewardBalance().SolveAnchored([]int64{4045, 0, 3988, 57}, RewardClosing, 0)
	require.NoError(t, err)

	r := RewardsOf(c)
	assert.Equal(t, int64(4045), r.Closing)
	assert.Equal(t, int64(57), r.Earned)
	assert.Equal(t, int64(3988), *r.Previous)
}

func TestRewardBalance_AnchorWithoutSolution(t *testing.T) {
	_, err := RewardBalance().SolveAnchored([]int64{10, 20, 40, 80}, RewardClosing, 0)
	assert.Error(t, err)

	_, err = RewardBalance().SolveAnchored([]int64{4045, 0, 3988, 57}, 9, 0)
	assert.Error(t, err)
}

func TestRewardTable_FoldsRedeemed(t *testing.T) {
	c, err := RewardTable().Solve([]int64{1200, 340, 500, 40, 1000})
	require.NoError(t, err)

	r := TableRewardsOf(c)
	assert.Equal(t, int64(1000), r.Closing)
	assert.Equal(t, int64(340), r.Earned)
	assert.Equal(t, int64(1200), *r.Previous)
	assert.Equal(t, int64(540), *r.Redeemed)
}
