// Package domain defines the core types shared by the prompt parsing and
// activity creation workflows.
package domain

// SportType is the closed set of activity categories accepted by the
// activity-tracking service.
type SportType string

const (
	SportRun                SportType = "Run"
	SportRide               SportType = "Ride"
	SportSwim               SportType = "Swim"
	SportHike               SportType = "Hike"
	SportWalk               SportType = "Walk"
	SportWeightTraining     SportType = "WeightTraining"
	SportYoga               SportType = "Yoga"
	SportCrossCountrySkiing SportType = "CrossCountrySkiing"
	SportRowing             SportType = "Rowing"
	SportElliptical         SportType = "Elliptical"
)

// SportTypes lists every supported sport type.
func SportTypes() []SportType {
	return []SportType{
		SportRun,
		SportRide,
		SportSwim,
		SportHike,
		SportWalk,
		SportWeightTraining,
		SportYoga,
		SportCrossCountrySkiing,
		SportRowing,
		SportElliptical,
	}
}

// ParseSportType maps a string onto the closed enum.
func ParseSportType(value string) (SportType, bool) {
	for _, st := range SportTypes() {
		if string(st) == value {
			return st, true
		}
	}
	return "", false
}

// Valid reports whether the sport type is one of the supported values.
func (s SportType) Valid() bool {
	_, ok := ParseSportType(string(s))
	return ok
}

func (s SportType) String() string {
	return string(s)
}
