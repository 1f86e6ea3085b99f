package main

import (
	"html"
	"net/http"
	"net/url"
	"time"

	"github.com/aleister1102/globalping-bots/internal/datastore"
	"github.com/google/uuid"
)

const (
	authorizeURL    = "https://slack.com/oauth/v2/authorize"
	botScopes       = "commands,chat:write"
	stateCookieName = "globalping_oauth_state"
)

// handleInstall starts the OAuth flow with a one-time state cookie.
func (s *Server) handleInstall(w http.ResponseWriter, r *http.Request) {
	cfg := s.config().Slack
	if !cfg.OAuthEnabled() || s.store == nil {
		http.Error(w, "installation is not enabled", http.StatusNotFound)
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/slack/oauth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	})

	q := url.Values{}
	q.Set("client_id", cfg.ClientID)
	q.Set("scope", botScopes)
	q.Set("state", state)
	if cfg.RedirectURL != "" {
		q.Set("redirect_uri", cfg.RedirectURL)
	}
	http.Redirect(w, r, authorizeURL+"?"+q.Encode(), http.StatusFound)
}

// handleOAuthCallback exchanges the code for a bot token and stores it.
func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	cfg := s.config().Slack
	if !cfg.OAuthEnabled() || s.store == nil {
		http.Error(w, "installation is not enabled", http.StatusNotFound)
		return
	}

	query := r.URL.Query()
	if reason := query.Get("error"); reason != "" {
		writePage(w, http.StatusBadRequest, "Installation cancelled: "+reason)
		return
	}

	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
		writePage(w, http.StatusBadRequest, "Installation link expired. Please start again.")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Path: "/slack/oauth", MaxAge: -1})

	code := query.Get("code")
	if code == "" {
		writePage(w, http.StatusBadRequest, "Missing authorization code.")
		return
	}

	resp, err := s.oauthExchange(r.Context(), s.httpClient, cfg.ClientID, cfg.ClientSecret, code, cfg.RedirectURL)
	if err != nil {
		s.logger.Error().Err(err).Msg("OAuth code exchange failed")
		writePage(w, http.StatusBadGateway, "Slack rejected the installation. Please try again.")
		return
	}

	inst := datastore.Installation{
		TeamID:       resp.Team.ID,
		TeamName:     resp.Team.Name,
		EnterpriseID: resp.Enterprise.ID,
		BotUserID:    resp.BotUserID,
		BotToken:     resp.AccessToken,
		Scope:        resp.Scope,
	}
	if err := s.store.SaveInstallation(r.Context(), inst); err != nil {
		s.logger.Error().Err(err).Str("team_id", inst.TeamID).Msg("Failed to save installation")
		writePage(w, http.StatusInternalServerError, "Could not save the installation.")
		return
	}

	writePage(w, http.StatusOK, "Globalping is installed in "+inst.TeamName+". Try /globalping help in any channel.")
}

func writePage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte("<!doctype html><title>Globalping</title><p>" + html.EscapeString(message) + "</p>"))
}
