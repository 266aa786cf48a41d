package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"

	"github.com/go-chi/chi/v5"

	"github.com/isaidso/auth/internal/common"
	"github.com/isaidso/auth/internal/server/models"
	"github.com/isaidso/auth/internal/server/services"
)

const minPasswordLen = 8

type registerRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Username string  `json:"username"`
	Name     *string `json:"name"`
	Country  *string `json:"country"`
	Avatar   *string `json:"avatar"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token                string `json:"token"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// tokenResponse is the body returned by every endpoint that logs the user in.
type tokenResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse("Invalid request body."))
		return false
	}
	return true
}

func validEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	switch {
	case req.Name == "":
		writeJSON(w, http.StatusUnprocessableEntity, fieldError("The name field is required.", "name", "The name field is required."))
		return
	case !validEmail(req.Email):
		writeJSON(w, http.StatusUnprocessableEntity, fieldError("The email must be a valid email address.", "email", "The email must be a valid email address."))
		return
	case len(req.Password) < minPasswordLen:
		writeJSON(w, http.StatusUnprocessableEntity, fieldError("The password must be at least 8 characters.", "password", "The password must be at least 8 characters."))
		return
	case req.Password != req.PasswordConfirmation:
		writeJSON(w, http.StatusUnprocessableEntity, fieldError("The password confirmation does not match.", "password", "The password confirmation does not match."))
		return
	}

	user, err := s.identity.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			writeJSON(w, http.StatusUnprocessableEntity, fieldError("The email has already been taken.", "email", "The email has already been taken."))
			return
		}
		s.serverError(w, r, err)
		return
	}

	if err := s.credentials.IssueEmailVerification(r.Context(), user); err != nil {
		s.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse("Registration successful! Please check your email to verify your account."))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validEmail(req.Email) || req.Password == "" {
		writeJSON(w, http.StatusUnprocessableEntity, fieldError("The given data was invalid.", "email", "The email field is required."))
		return
	}

	user, err := s.identity.ResolveByPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrEmailNotRegistered):
			writeJSON(w, http.StatusUnprocessableEntity, fieldError("The provided email is not registered.", "email", "The provided email is not registered."))
		case errors.Is(err, common.ErrEmailNotVerified):
			writeJSON(w, http.StatusForbidden, fieldError("Please verify your email address.", "email", "Please check your email to verify your account."))
		case errors.Is(err, common.ErrWrongLoginMethod):
			writeJSON(w, http.StatusUnprocessableEntity, fieldError("Please login with Google.", "email", "This account uses Google Login."))
		case errors.Is(err, common.ErrBadCredentials):
			writeJSON(w, http.StatusUnprocessableEntity, fieldError("Incorrect password.", "password", "Incorrect password."))
		default:
			s.serverError(w, r, err)
		}
		return
	}

	s.issueTokens(w, r, user, http.StatusOK)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, messageResponse("Unauthenticated."))
		return
	}
	if err := s.tokens.Revoke(r.Context(), token.ID); err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse("Logged out"))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	secret := bearerToken(r)
	if secret == "" {
		writeJSON(w, http.StatusUnauthorized, messageResponse("Unauthenticated."))
		return
	}

	pair, userID, err := s.tokens.Rotate(r.Context(), secret)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidTokenType):
			writeJSON(w, http.StatusUnauthorized, messageResponse("Invalid token type"))
		case errors.Is(err, common.ErrorUnauthorized):
			writeJSON(w, http.StatusUnauthorized, messageResponse("Unauthenticated."))
		default:
			s.serverError(w, r, err)
		}
		return
	}

	s.devices.Record(r.Context(), userID, clientIP(r), r.UserAgent())

	user, err := s.identity.GetUser(r.Context(), userID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, messageResponse("Unauthenticated."))
		return
	}
	user, err := s.identity.GetUser(r.Context(), token.UserID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, messageResponse("Unauthenticated."))
		return
	}

	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || len(req.Username) > 20 {
		writeJSON(w, http.StatusUnprocessableEntity, fieldError("The username field is required.", "username", "The username field is required."))
		return
	}

	user, err := s.identity.UpdateProfile(r.Context(), token.UserID, services.UpdateProfileParams{
		Username: req.Username,
		Name:     req.Name,
		Country:  req.Country,
		Avatar:   req.Avatar,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorConflict):
			writeJSON(w, http.StatusUnprocessableEntity, fieldError("The username has already been taken.", "username", "The username has already been taken."))
		case errors.Is(err, common.ErrorValidation):
			writeJSON(w, http.StatusUnprocessableEntity, fieldError("The avatar must be a valid image.", "avatar", "The avatar must be a valid image."))
		default:
			s.serverError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	secret := chi.URLParam(r, "token")

	user, pair, err := s.credentials.ConsumeEmailVerification(r.Context(), secret)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrCredentialExpired):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Verification token has expired"})
		case errors.Is(err, common.ErrorNotFound):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid verification token"})
		default:
			s.serverError(w, r, err)
		}
		return
	}

	s.devices.Record(r.Context(), user.ID, clientIP(r), r.UserAgent())

	writeJSON(w, http.StatusOK, tokenResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

const forgotPasswordMessage = "If your email is registered, you will receive a password reset link."

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validEmail(req.Email) {
		writeJSON(w, http.StatusUnprocessableEntity, fieldError("The email must be a valid email address.", "email", "The email must be a valid email address."))
		return
	}

	// The generic message is returned whether or not the address is
	// registered; a credential is only issued when it is.
	if _, err := s.identity.GetUserByEmail(r.Context(), req.Email); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeJSON(w, http.StatusOK, messageResponse(forgotPasswordMessage))
			return
		}
		s.serverError(w, r, err)
		return
	}

	if err := s.credentials.IssuePasswordReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, common.ErrUpstreamFailure) {
			s.logger.Error(r.Context(), "password reset email failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, messageResponse("Failed to send email. Please try again later."))
			return
		}
		s.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse(forgotPasswordMessage))
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	switch {
	case req.Token == "" || !validEmail(req.Email):
		writeJSON(w, http.StatusUnprocessableEntity, fieldError("The given data was invalid.", "token", "The token field is required."))
		return
	case len(req.Password) < minPasswordLen:
		writeJSON(w, http.StatusUnprocessableEntity, fieldError("The password must be at least 8 characters.", "password", "The password must be at least 8 characters."))
		return
	case req.Password != req.PasswordConfirmation:
		writeJSON(w, http.StatusUnprocessableEntity, fieldError("The password confirmation does not match.", "password", "The password confirmation does not match."))
		return
	}

	user, pair, err := s.credentials.ConsumePasswordReset(r.Context(), req.Token, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrCredentialExpired):
			writeJSON(w, http.StatusBadRequest, messageResponse("Token expired."))
		case errors.Is(err, common.ErrSubjectMissing):
			writeJSON(w, http.StatusNotFound, messageResponse("User not found."))
		case errors.Is(err, common.ErrorNotFound):
			writeJSON(w, http.StatusBadRequest, messageResponse("Invalid token."))
		default:
			s.serverError(w, r, err)
		}
		return
	}

	s.devices.Record(r.Context(), user.ID, clientIP(r), r.UserAgent())

	writeJSON(w, http.StatusOK, tokenResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// issueTokens mints a pair for user, records the device event, and writes the
// standard login response.
func (s *Server) issueTokens(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	pair, err := s.tokens.IssuePairForUser(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.devices.Record(r.Context(), user.ID, clientIP(r), r.UserAgent())
	s.logger.Info(r.Context(), "user logged in", "user_id", user.ID, "device", services.ClassifyUserAgent(r.UserAgent()))

	writeJSON(w, status, tokenResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, messageResponse("Internal server error."))
}
