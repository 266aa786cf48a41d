package httpapi

import (
	"net/http"
	"net/url"

	"github.com/isaidso/auth/internal/cryptox"
)

const stateCookieName = "oauth_state"

// handleGoogleRedirect mints an anti-forgery state, pins it in a short-lived
// cookie, and sends the browser to the provider's consent page.
func (s *Server) handleGoogleRedirect(w http.ResponseWriter, r *http.Request) {
	state, err := cryptox.MakeRandString(32)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, s.provider.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// handleGoogleCallback completes the code exchange, resolves or links the
// local account, and hands the minted pair to the frontend via redirect query
// parameters.
func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
		writeJSON(w, http.StatusUnauthorized, messageResponse("Invalid state parameter."))
		return
	}
	// One shot: the state cannot be replayed.
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

	code := query.Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, messageResponse("Missing authorization code."))
		return
	}

	identity, err := s.provider.FetchIdentity(r.Context(), code)
	if err != nil {
		s.logger.Error(r.Context(), "federated identity fetch failed", "error", err)
		writeJSON(w, http.StatusUnauthorized, messageResponse("Unable to authenticate with Google."))
		return
	}

	user, err := s.identity.ResolveOrLinkFederated(r.Context(),
		identity.ExternalID, identity.Email, identity.Name, identity.AvatarURL)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	pair, err := s.tokens.IssuePairForUser(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.devices.Record(r.Context(), user.ID, clientIP(r), r.UserAgent())
	s.logger.Info(r.Context(), "federated login", "user_id", user.ID)

	target := s.config.FrontendBaseURL + "/auth/callback?" + url.Values{
		"access_token":  {pair.AccessToken},
		"refresh_token": {pair.RefreshToken},
	}.Encode()
	http.Redirect(w, r, target, http.StatusFound)
}
