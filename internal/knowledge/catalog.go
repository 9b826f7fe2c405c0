package knowledge

import "github.com/smallnumbers0/create-activity/internal/domain"

// Catalog returns the static exercise reference data. It is seeded into the
// search index at startup and never mutated afterwards.
func Catalog() []domain.ExerciseEntry {
	return []domain.ExerciseEntry{
		{
			Name:           "Running",
			SportType:      domain.SportRun,
			Synonyms:       []string{"jogging", "sprinting", "trail running", "road running", "treadmill running"},
			Description:    "Cardiovascular exercise involving rapid foot movement",
			MuscleGroups:   []string{"legs", "core", "cardiovascular"},
			Equipment:      []string{"running shoes", "treadmill", "track"},
			IntensityLevel: "variable",
			LocationTypes:  []string{"outdoor", "gym", "track", "trail", "park"},
			Keywords:       []string{"cardio", "endurance", "pace", "distance", "marathon", "5k", "10k"},
		},
		{
			Name:           "Cycling",
			SportType:      domain.SportRide,
			Synonyms:       []string{"biking", "road cycling", "mountain biking", "spinning", "indoor cycling"},
			Description:    "Pedaling a bicycle for exercise and transportation",
			MuscleGroups:   []string{"legs", "core", "cardiovascular"},
			Equipment:      []string{"bicycle", "helmet", "cycling shoes", "spin bike"},
			IntensityLevel: "variable",
			LocationTypes:  []string{"outdoor", "gym", "road", "trail", "mountain"},
			Keywords:       []string{"pedaling", "gear", "cadence", "hills", "speed", "distance"},
		},
		{
			Name:           "Swimming",
			SportType:      domain.SportSwim,
			Synonyms:       []string{"freestyle", "backstroke", "breaststroke", "butterfly", "laps"},
			Description:    "Aquatic exercise using arm and leg movements",
			MuscleGroups:   []string{"full body", "arms", "legs", "core", "cardiovascular"},
			Equipment:      []string{"swimsuit", "goggles", "pool", "fins"},
			IntensityLevel: "variable",
			LocationTypes:  []string{"pool", "ocean", "lake", "indoor pool", "outdoor pool"},
			Keywords:       []string{"laps", "stroke", "water", "aquatic", "endurance"},
		},
		{
			Name:           "Weight Training",
			SportType:      domain.SportWeightTraining,
			Synonyms:       []string{"strength training", "resistance training", "lifting", "bodybuilding", "powerlifting"},
			Description:    "Exercise using weights to build strength and muscle",
			MuscleGroups:   []string{"variable", "arms", "legs", "chest", "back", "shoulders"},
			Equipment:      []string{"dumbbells", "barbells", "machines", "plates", "bench"},
			IntensityLevel: "high",
			LocationTypes:  []string{"gym", "home gym", "fitness center"},
			Keywords:       []string{"reps", "sets", "weight", "muscle", "strength", "gains", "iron"},
		},
		{
			Name:           "Yoga",
			SportType:      domain.SportYoga,
			Synonyms:       []string{"hot yoga", "vinyasa", "hatha", "bikram", "power yoga", "stretching"},
			Description:    "Mind-body practice combining poses, breathing, and meditation",
			MuscleGroups:   []string{"full body", "core", "flexibility"},
			Equipment:      []string{"yoga mat", "blocks", "straps"},
			IntensityLevel: "variable",
			LocationTypes:  []string{"studio", "home", "park", "beach"},
			Keywords:       []string{"poses", "asanas", "flexibility", "mindfulness", "balance", "meditation"},
		},
		{
			Name:           "Hiking",
			SportType:      domain.SportHike,
			Synonyms:       []string{"trekking", "trail walking", "mountain hiking", "nature walking"},
			Description:    "Walking in natural environments, often on trails",
			MuscleGroups:   []string{"legs", "core", "cardiovascular"},
			Equipment:      []string{"hiking boots", "backpack", "poles", "water"},
			IntensityLevel: "variable",
			LocationTypes:  []string{"trail", "mountain", "forest", "park", "nature"},
			Keywords:       []string{"trail", "elevation", "nature", "outdoor", "adventure", "summit"},
		},
		{
			Name:           "Walking",
			SportType:      domain.SportWalk,
			Synonyms:       []string{"power walking", "speed walking", "casual walking", "strolling"},
			Description:    "Basic locomotion exercise at various intensities",
			MuscleGroups:   []string{"legs", "cardiovascular"},
			Equipment:      []string{"walking shoes", "comfortable clothing"},
			IntensityLevel: "low",
			LocationTypes:  []string{"anywhere", "park", "neighborhood", "treadmill"},
			Keywords:       []string{"steps", "pace", "casual", "leisure", "recovery"},
		},
		{
			Name:           "Rowing",
			SportType:      domain.SportRowing,
			Synonyms:       []string{"crew", "sculling", "ergometer", "rowing machine"},
			Description:    "Full-body exercise using rowing motion",
			MuscleGroups:   []string{"full body", "back", "arms", "legs", "core"},
			Equipment:      []string{"rowing machine", "boat", "oars"},
			IntensityLevel: "high",
			LocationTypes:  []string{"gym", "water", "indoor"},
			Keywords:       []string{"stroke", "catch", "drive", "recovery", "split time"},
		},
		{
			Name:           "Cross-Country Skiing",
			SportType:      domain.SportCrossCountrySkiing,
			Synonyms:       []string{"nordic skiing", "skate skiing", "classic skiing", "ski touring"},
			Description:    "Endurance skiing across flat and rolling terrain",
			MuscleGroups:   []string{"full body", "legs", "arms", "core", "cardiovascular"},
			Equipment:      []string{"skis", "poles", "ski boots"},
			IntensityLevel: "high",
			LocationTypes:  []string{"snow", "trail", "outdoor", "mountain"},
			Keywords:       []string{"glide", "snow", "nordic", "winter", "endurance"},
		},
		{
			Name:           "Elliptical",
			SportType:      domain.SportElliptical,
			Synonyms:       []string{"elliptical trainer", "cross trainer", "elliptical machine"},
			Description:    "Low-impact cardio on a stationary elliptical machine",
			MuscleGroups:   []string{"legs", "arms", "cardiovascular"},
			Equipment:      []string{"elliptical machine"},
			IntensityLevel: "moderate",
			LocationTypes:  []string{"gym", "home gym", "indoor"},
			Keywords:       []string{"low impact", "cardio", "resistance", "stride"},
		},
	}
}
