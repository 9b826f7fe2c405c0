// Package api exposes HTTP handlers for the activity assistant.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/smallnumbers0/create-activity/internal/agent"
	"github.com/smallnumbers0/create-activity/internal/auth"
	"github.com/smallnumbers0/create-activity/internal/domain"
	"github.com/smallnumbers0/create-activity/internal/events"
	"github.com/smallnumbers0/create-activity/internal/knowledge"
	"github.com/smallnumbers0/create-activity/internal/session"
	"github.com/smallnumbers0/create-activity/internal/strava"
)

// Generator produces activity names and descriptions.
type Generator = agent.Generator

// PromptParser extracts structured intents from free text.
type PromptParser = agent.PromptParser

// Dependencies collects the handler's collaborators. Strava carries the
// OAuth application credentials; per-request clients are derived from it
// with the caller's stored tokens.
type Dependencies struct {
	Sessions  session.Repository
	Knowledge *knowledge.Service
	Parser    PromptParser
	Generator Generator
	Publisher events.Publisher
	Strava    strava.Config
	Logger    *log.Logger
}

// Handler coordinates HTTP requests with the agent workflows.
type Handler struct {
	deps   Dependencies
	logger *log.Logger
}

// NewHandler builds a Handler.
func NewHandler(deps Dependencies) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{deps: deps, logger: logger}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/auth/url", h.authURL)
	mux.HandleFunc("/v1/auth/exchange", h.authExchange)
	mux.HandleFunc("/v1/activities/prompt", h.createFromPrompt)
	mux.HandleFunc("/v1/activities/quick", h.createQuick)
	mux.HandleFunc("/v1/activities/recent", h.recentActivities)
	mux.HandleFunc("/v1/activities/", h.activityByID)
	mux.HandleFunc("/v1/athlete", h.athlete)
	mux.HandleFunc("/v1/exercises", h.exercises)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// authURL returns the tracker authorization URL to redirect the user to.
func (h *Handler) authURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := h.requireScope(w, r, auth.ScopeActivitiesWrite); !ok {
		return
	}

	client := strava.NewClient(h.deps.Strava)
	writeJSON(w, http.StatusOK, AuthURLResponse{
		AuthorizationURL: client.AuthorizationURL(nil),
	})
}

// authExchange trades an OAuth code for tokens and stores the session.
func (h *Handler) authExchange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := h.requireScope(w, r, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	var req ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "code is required")
		return
	}

	client := strava.NewClient(h.deps.Strava)
	tokens, athlete, err := client.ExchangeCode(r.Context(), req.Code)
	if err != nil {
		h.writeStravaError(w, err)
		return
	}

	sess := session.Session{
		UserID:       claims.Subject,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
	}
	resp := ExchangeResponse{Authenticated: true}
	if athlete != nil {
		sess.AthleteID = athlete.ID
		resp.Athlete = athlete
	}
	if err := h.deps.Sessions.Put(r.Context(), sess); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) createFromPrompt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := h.requireScope(w, r, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	var req PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "prompt is required")
		return
	}

	ag, err := h.agentFor(r.Context(), claims.Subject)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	result := ag.CreateActivityFromPrompt(r.Context(), req.Prompt)
	writeWorkflowResult(w, result)
}

func (h *Handler) createQuick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := h.requireScope(w, r, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	var req QuickActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	sport, valid := domain.ParseSportType(req.SportType)
	if !valid {
		writeError(w, http.StatusBadRequest, "validation_failed", "unknown sport_type")
		return
	}
	if req.DurationMinutes <= 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "duration_minutes must be > 0")
		return
	}

	ag, err := h.agentFor(r.Context(), claims.Subject)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	input := agent.QuickActivityInput{
		SportType:       sport,
		DurationMinutes: req.DurationMinutes,
		DistanceKM:      req.DistanceKM,
		Name:            req.Name,
	}
	if req.Style != "" {
		input.Style = domain.StyleOrDefault(req.Style)
	}
	result := ag.CreateQuickActivity(r.Context(), input)
	writeWorkflowResult(w, result)
}

func (h *Handler) activityByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/activities/")
	if rest == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing activity id")
		return
	}

	enhance := false
	if trimmed, found := strings.CutSuffix(rest, "/enhance"); found {
		rest = trimmed
		enhance = true
	}
	activityID, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid activity id")
		return
	}

	switch {
	case enhance && r.Method == http.MethodPost:
		h.enhanceActivity(w, r, activityID)
	case !enhance && r.Method == http.MethodPut:
		h.updateActivity(w, r, activityID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) updateActivity(w http.ResponseWriter, r *http.Request, activityID int64) {
	claims, ok := h.requireScope(w, r, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	var req UpdateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	ag, err := h.agentFor(r.Context(), claims.Subject)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	input := agent.UpdateInput{
		ActivityID:            activityID,
		Updates:               req.Updates,
		RegenerateName:        req.RegenerateName,
		RegenerateDescription: req.RegenerateDescription,
	}
	if req.Style != "" {
		input.Style = domain.StyleOrDefault(req.Style)
	}
	updated, err := ag.UpdateActivityWithAI(r.Context(), input)
	if err != nil {
		if errors.Is(err, strava.ErrEmptyUpdate) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		h.writeStravaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) enhanceActivity(w http.ResponseWriter, r *http.Request, activityID int64) {
	claims, ok := h.requireScope(w, r, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	var req EnhanceRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
	}

	ag, err := h.agentFor(r.Context(), claims.Subject)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	style := domain.StyleMotivational
	if req.Style != "" {
		style = domain.StyleOrDefault(req.Style)
	}
	description, err := ag.EnhanceActivityDescription(r.Context(), activityID, style)
	if err != nil {
		h.writeStravaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EnhanceResponse{ActivityID: activityID, Description: description})
}

func (h *Handler) recentActivities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := h.requireScope(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	count := 10
	if raw := r.URL.Query().Get("count"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > 50 {
				parsed = 50
			}
			count = parsed
		}
	}

	ag, err := h.agentFor(r.Context(), claims.Subject)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	activities, err := ag.RecentActivities(r.Context(), count)
	if err != nil {
		h.writeStravaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RecentActivitiesResponse{Items: activities})
}

func (h *Handler) athlete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := h.requireScope(w, r, auth.ScopeAthleteRead, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	ag, err := h.agentFor(r.Context(), claims.Subject)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	profile, err := ag.AthleteProfile(r.Context())
	if err != nil {
		h.writeStravaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// exercises searches the exercise catalog. With a query it runs a ranked
// search; with only a sport it returns that sport's entries.
func (h *Handler) exercises(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := h.requireScope(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite); !ok {
		return
	}

	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 20 {
			limit = parsed
		}
	}

	if query := strings.TrimSpace(r.URL.Query().Get("query")); query != "" {
		matches := h.deps.Knowledge.Search(r.Context(), query, limit)
		writeJSON(w, http.StatusOK, ExerciseSearchResponse{Matches: matches})
		return
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("sport")); raw != "" {
		sport, valid := domain.ParseSportType(raw)
		if !valid {
			writeError(w, http.StatusBadRequest, "validation_failed", "unknown sport")
			return
		}
		writeJSON(w, http.StatusOK, ExerciseListResponse{Items: h.deps.Knowledge.SuggestionsFor(sport)})
		return
	}

	writeError(w, http.StatusBadRequest, "validation_failed", "query or sport parameter required")
}

// requireScope extracts claims and checks that at least one scope matches.
func (h *Handler) requireScope(w http.ResponseWriter, r *http.Request, scopes ...string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	for _, scope := range scopes {
		if claims.HasScope(scope) {
			return claims, true
		}
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+scopes[0]+" required")
	return nil, false
}

// agentFor builds an agent bound to the caller's stored tracker session.
// Token refreshes are persisted back through the session repository.
func (h *Handler) agentFor(ctx context.Context, userID string) (*agent.Agent, error) {
	sess, err := h.deps.Sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	cfg := h.deps.Strava
	cfg.OnTokenRefresh = func(state strava.TokenState) {
		updated := *sess
		updated.AccessToken = state.AccessToken
		updated.RefreshToken = state.RefreshToken
		updated.ExpiresAt = state.ExpiresAt
		if err := h.deps.Sessions.Put(ctx, updated); err != nil {
			h.logger.Printf("refreshed tokens for user %s not persisted: %v", userID, err)
		}
	}
	client := strava.NewClient(cfg)
	client.SetTokens(sess.AccessToken, sess.RefreshToken, sess.ExpiresAt)

	return agent.New(agent.Config{
		Parser:    h.deps.Parser,
		Generator: h.deps.Generator,
		Tracker:   client,
		Publisher: h.deps.Publisher,
		UserID:    userID,
		Logger:    h.logger,
	}), nil
}

func (h *Handler) writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "not_authenticated", domain.ErrNotAuthenticated.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "server_error", err.Error())
}

func (h *Handler) writeStravaError(w http.ResponseWriter, err error) {
	var apiErr *strava.APIError
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "not_authenticated", err.Error())
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		writeError(w, status, "tracker_error", apiErr.Error())
	default:
		writeError(w, http.StatusBadGateway, "tracker_error", err.Error())
	}
}

// writeWorkflowResult maps agent outcomes to HTTP. Workflow-level failures
// keep the result envelope so callers see the parsed message.
func writeWorkflowResult(w http.ResponseWriter, result agent.WorkflowResult) {
	if result.Status == agent.StatusError {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// AuthURLResponse carries the OAuth redirect target.
type AuthURLResponse struct {
	AuthorizationURL string `json:"authorization_url"`
}

// ExchangeRequest is the payload for POST /v1/auth/exchange.
type ExchangeRequest struct {
	Code string `json:"code"`
}

// ExchangeResponse reports the stored session's athlete.
type ExchangeResponse struct {
	Authenticated bool            `json:"authenticated"`
	Athlete       *strava.Athlete `json:"athlete,omitempty"`
}

// PromptRequest is the payload for POST /v1/activities/prompt.
type PromptRequest struct {
	Prompt string `json:"prompt"`
}

// QuickActivityRequest is the payload for POST /v1/activities/quick.
type QuickActivityRequest struct {
	SportType       string   `json:"sport_type"`
	DurationMinutes float64  `json:"duration_minutes"`
	DistanceKM      *float64 `json:"distance_km,omitempty"`
	Name            *string  `json:"name,omitempty"`
	Style           string   `json:"style,omitempty"`
}

// UpdateActivityRequest is the payload for PUT /v1/activities/{id}.
type UpdateActivityRequest struct {
	Updates               map[string]any `json:"updates"`
	RegenerateName        bool           `json:"regenerate_name"`
	RegenerateDescription bool           `json:"regenerate_description"`
	Style                 string         `json:"style,omitempty"`
}

// EnhanceRequest is the payload for POST /v1/activities/{id}/enhance.
type EnhanceRequest struct {
	Style string `json:"style,omitempty"`
}

// EnhanceResponse returns the applied description.
type EnhanceResponse struct {
	ActivityID  int64  `json:"activity_id"`
	Description string `json:"description"`
}

// RecentActivitiesResponse packages the recent-activity listing.
type RecentActivitiesResponse struct {
	Items []strava.Activity `json:"items"`
}

// ExerciseSearchResponse packages ranked catalog matches.
type ExerciseSearchResponse struct {
	Matches []domain.ExerciseMatch `json:"matches"`
}

// ExerciseListResponse packages catalog entries for one sport.
type ExerciseListResponse struct {
	Items []domain.ExerciseEntry `json:"items"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
