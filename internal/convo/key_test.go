package convo_test

import (
	"testing"

	"socialgo/backend/internal/convo"

	"github.com/stretchr/testify/assert"
)

func TestKey_OrderIndependent(t *testing.T) {
	pairs := [][2]string{
		{"a1", "b1"},
		{"b1", "a1"},
		{"user_zzz", "user_aaa"},
		{"68f0c2", "68f0c1"},
	}

	for _, p := range pairs {
		assert.Equal(t, convo.Key(p[0], p[1]), convo.Key(p[1], p[0]))
	}
}

func TestKey_SortedConcatenation(t *testing.T) {
	assert.Equal(t, "a1:b1", convo.Key("a1", "b1"))
	assert.Equal(t, "a1:b1", convo.Key("b1", "a1"))
}

func TestKey_DistinctPairsDistinctKeys(t *testing.T) {
	assert.NotEqual(t, convo.Key("a1", "b1"), convo.Key("a1", "c1"))
	assert.NotEqual(t, convo.Key("a1", "b1"), convo.Key("a2", "b1"))
}
