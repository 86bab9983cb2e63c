package policy_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/predictarena/pushkit/pkg/policy"
)

func TestRolloutBucket_Deterministic(t *testing.T) {
	t.Parallel()

	for _, userID := range []string{"u1", "user-abc", "", "a-very-long-user-identifier-0001"} {
		first := policy.RolloutBucket(userID)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, policy.RolloutBucket(userID), userID)
		}
		assert.GreaterOrEqual(t, first, 0)
		assert.Less(t, first, 100)
	}
}

func TestRolloutBucket_Distribution(t *testing.T) {
	t.Parallel()

	// The empirical allow rate over many users should converge to the
	// configured percentage within sampling error.
	const users = 20000
	const percentage = 30

	allowed := 0
	for i := 0; i < users; i++ {
		if policy.RolloutBucket(fmt.Sprintf("user-%d", i)) < percentage {
			allowed++
		}
	}

	rate := float64(allowed) / users * 100
	assert.InDelta(t, percentage, rate, 2.0)
}
