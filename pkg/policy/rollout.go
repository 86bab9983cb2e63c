package policy

import (
	"hash/fnv"

	"github.com/predictarena/pushkit/pkg/catalog"
)

// RolloutBucket deterministically maps a user id into [0,100). FNV-1a keeps
// the assignment stable across processes and evaluations, so a user is
// consistently in or out of a given rollout percentage.
func RolloutBucket(userID string) int {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return int(h.Sum32() % 100)
}

// rolloutAllows applies staged-rollout gating: disabled suppresses everyone,
// 100 or more allows everyone, otherwise the user's bucket must fall below
// the percentage.
func rolloutAllows(userID string, r catalog.Rollout) bool {
	if !r.Enabled {
		return false
	}
	if r.Percentage >= 100 {
		return true
	}
	return RolloutBucket(userID) < r.Percentage
}
