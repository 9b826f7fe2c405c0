package strava

import (
	"fmt"
	"time"

	"github.com/smallnumbers0/create-activity/internal/domain"
)

// TokenState is the OAuth token triple owned by one client instance.
type TokenState struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// tokenRefreshBuffer refreshes proactively when the token expires within
// this window.
const tokenRefreshBuffer = 5 * time.Minute

func (t TokenState) expiresSoon(now time.Time) bool {
	return t.ExpiresAt > 0 && now.Unix()+int64(tokenRefreshBuffer.Seconds()) >= t.ExpiresAt
}

// tokenResponse is the OAuth token endpoint payload.
type tokenResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresAt    int64    `json:"expires_at"`
	Athlete      *Athlete `json:"athlete,omitempty"`
}

// Athlete is the authenticated athlete's profile.
type Athlete struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

// Activity is the tracking service's representation of a workout.
type Activity struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	SportType      string  `json:"sport_type"`
	StartDateLocal string  `json:"start_date_local"`
	ElapsedTime    int     `json:"elapsed_time"`
	Distance       float64 `json:"distance"`
	Description    string  `json:"description"`
	Trainer        bool    `json:"trainer"`
	Commute        bool    `json:"commute"`
}

// DistanceDisplay renders the stored meter distance as kilometers.
func (a Activity) DistanceDisplay() string {
	return fmt.Sprintf("%.2f km", a.Distance/1000)
}

// NewActivity is the client-side payload for creating an activity.
// Name, SportType, StartDateLocal and ElapsedTime are required.
type NewActivity struct {
	Name           string
	SportType      domain.SportType
	StartDateLocal time.Time
	ElapsedTime    int
	Distance       *float64
	Description    string
	Trainer        bool
	Commute        bool
}

// MissingFieldError reports a required activity field absent before any
// network call is attempted.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing required field: " + e.Field
}

// Validate checks the required create fields client-side.
func (n NewActivity) Validate() error {
	if n.Name == "" {
		return &MissingFieldError{Field: "name"}
	}
	if !n.SportType.Valid() {
		return &MissingFieldError{Field: "sport_type"}
	}
	if n.StartDateLocal.IsZero() {
		return &MissingFieldError{Field: "start_date_local"}
	}
	if n.ElapsedTime <= 0 {
		return &MissingFieldError{Field: "elapsed_time"}
	}
	return nil
}

// ListOptions filters the paginated activity listing.
type ListOptions struct {
	Page    int
	PerPage int
	Before  int64
	After   int64
}

// APIError carries a non-2xx response from the tracking service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tracking service returned %d: %s", e.StatusCode, e.Body)
}
