package models

import "fmt"

// Track represents one of the program tracks a course belongs to
// and a student can declare interest in.
type Track string

const (
	TrackFinance      Track = "Financial Engineering & Risk Management"
	TrackML           Track = "Machine Learning & Analytics"
	TrackOptimization Track = "Optimization"
	TrackOperations   Track = "Operations"
	TrackStochastic   Track = "Stochastic Modeling and Simulation"
)

// AllTracks lists every valid track value.
var AllTracks = []Track{
	TrackFinance,
	TrackML,
	TrackOptimization,
	TrackOperations,
	TrackStochastic,
}

// ParseTrack converts a string to a Track, rejecting unknown values.
func ParseTrack(s string) (Track, error) {
	for _, t := range AllTracks {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown track: %q", s)
}

// IsValid reports whether the track is one of the known values.
func (t Track) IsValid() bool {
	_, err := ParseTrack(string(t))
	return err == nil
}
