package matchengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
	assert.NoError(t, Weights{Rank: 2, Track: 2, Profile: 2}.Validate())

	assert.Error(t, Weights{Rank: 1, Track: 0.5, Profile: 0}.Validate())
	assert.Error(t, Weights{Rank: 1, Track: 0.5, Profile: -1}.Validate())
	assert.Error(t, Weights{Rank: 0.5, Track: 1, Profile: 0.25}.Validate())
	assert.Error(t, Weights{Rank: 1, Track: 0.25, Profile: 0.5}.Validate())
}

func TestScoreMonotonicInRank(t *testing.T) {
	scorer := NewScorer(DefaultWeights())
	student := Student{ID: 1}
	course := Course{ID: 10, Vacancies: 1}

	prev := scorer.Score(student, Preference{StudentID: 1, CourseID: 10, Rank: 1}, course)
	for rank := 2; rank <= 8; rank++ {
		cur := scorer.Score(student, Preference{StudentID: 1, CourseID: 10, Rank: rank}, course)
		assert.Less(t, cur, prev, "rank %d should score below rank %d", rank, rank-1)
		prev = cur
	}
}

func TestScoreTrackMatch(t *testing.T) {
	scorer := NewScorer(DefaultWeights())
	course := Course{ID: 10, Track: "Optimization"}

	t.Run("preference track takes precedence", func(t *testing.T) {
		student := Student{ID: 1, Interests: []string{"Operations"}}
		withMatch := scorer.Score(student, Preference{Rank: 1, Track: "Optimization"}, course)
		withoutMatch := scorer.Score(student, Preference{Rank: 1, Track: "Operations"}, course)
		assert.InDelta(t, 0.5, withMatch-withoutMatch, 1e-9)
	})

	t.Run("falls back to student interests", func(t *testing.T) {
		interested := Student{ID: 1, Interests: []string{"Operations", "Optimization"}}
		uninterested := Student{ID: 2, Interests: []string{"Operations"}}
		pref := Preference{Rank: 1}
		assert.Greater(t, scorer.Score(interested, pref, course), scorer.Score(uninterested, pref, course))
	})

	t.Run("no course track never matches", func(t *testing.T) {
		student := Student{ID: 1, Interests: []string{"Optimization"}}
		bare := Course{ID: 11}
		a := scorer.Score(student, Preference{Rank: 1}, bare)
		b := scorer.Score(Student{ID: 2}, Preference{Rank: 1}, bare)
		assert.Equal(t, a, b)
	})
}

func TestScoreProfileCompleteness(t *testing.T) {
	scorer := NewScorer(DefaultWeights())
	course := Course{ID: 10}
	pref := Preference{Rank: 1}

	full := scorer.Score(Student{HasResume: true, HasTranscript: true}, pref, course)
	half := scorer.Score(Student{HasResume: true}, pref, course)
	otherHalf := scorer.Score(Student{HasTranscript: true}, pref, course)
	none := scorer.Score(Student{}, pref, course)

	assert.Equal(t, half, otherHalf)
	assert.InDelta(t, 0.25, full-half, 1e-9)
	assert.InDelta(t, 0.125, half-none, 1e-9)
}

func TestScoreRankDominatesWithDefaultWeights(t *testing.T) {
	// A bare rank-1 preference (1.0) must beat a rank-5 preference even
	// with track match and full profile (0.2 + 0.5 + 0.25 = 0.95).
	scorer := NewScorer(DefaultWeights())
	course := Course{ID: 10, Track: "Operations"}

	rankOne := scorer.Score(Student{}, Preference{Rank: 1}, course)
	rankFiveLoaded := scorer.Score(
		Student{HasResume: true, HasTranscript: true, Interests: []string{"Operations"}},
		Preference{Rank: 5},
		course,
	)
	require.Greater(t, rankOne, rankFiveLoaded)
}
