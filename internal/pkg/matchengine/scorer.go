package matchengine

import "fmt"

// Weights configures the scorer. The rank term must dominate, then track,
// then profile, so that a student's stated rank stays the primary signal.
type Weights struct {
	Rank    float64
	Track   float64
	Profile float64
}

// DefaultWeights returns the default scoring weights.
func DefaultWeights() Weights {
	return Weights{Rank: 1.0, Track: 0.5, Profile: 0.25}
}

// Validate ensures the ordering Rank >= Track >= Profile > 0.
func (w Weights) Validate() error {
	if w.Profile <= 0 {
		return fmt.Errorf("profile weight must be positive, got %v", w.Profile)
	}
	if w.Rank < w.Track || w.Track < w.Profile {
		return fmt.Errorf("weights must satisfy rank >= track >= profile, got rank=%v track=%v profile=%v",
			w.Rank, w.Track, w.Profile)
	}
	return nil
}

// Scorer computes the desirability score of assigning a student to a course
// through one of their preferences. Deterministic, side-effect free and
// total: every well-formed input yields a score.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score returns
//
//	W_rank * 1/rank + W_track * trackMatch + W_profile * completeness
//
// where trackMatch is 1 when the preference's declared track (or, absent
// that, any of the student's interests) equals the course's track, and
// completeness is 1 for both documents uploaded, 0.5 for one, 0 for none.
func (s *Scorer) Score(student Student, pref Preference, course Course) float64 {
	score := s.weights.Rank * rankFactor(pref.Rank)
	if trackMatch(student, pref, course) {
		score += s.weights.Track
	}
	score += s.weights.Profile * profileCompleteness(student)
	return score
}

// rankFactor decreases monotonically in rank. 1/rank needs no upper bound on
// rank and gives rapidly diminishing weight to lower-priority choices.
func rankFactor(rank int) float64 {
	if rank < 1 {
		rank = 1
	}
	return 1 / float64(rank)
}

func trackMatch(student Student, pref Preference, course Course) bool {
	if course.Track == "" {
		return false
	}
	if pref.Track != "" {
		return pref.Track == course.Track
	}
	for _, interest := range student.Interests {
		if interest == course.Track {
			return true
		}
	}
	return false
}

func profileCompleteness(student Student) float64 {
	switch {
	case student.HasResume && student.HasTranscript:
		return 1
	case student.HasResume || student.HasTranscript:
		return 0.5
	default:
		return 0
	}
}
