package server

import (
	"encoding/json"
	"net/http"

	"github.com/manjeet0006/fullstack-chat/internal/auth"
	"github.com/manjeet0006/fullstack-chat/internal/model"
	"github.com/manjeet0006/fullstack-chat/internal/utils/log"

	"go.uber.org/zap"
)

type (
	signupRequest struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	updateProfileRequest struct {
		ProfilePic string `json:"profilePic"`
	}
)

func (s *HttpServer) HandleSignup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if req.FullName == "" || req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "all fields are required")
			return
		}
		if len(req.Password) < 6 {
			writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
			return
		}

		existing, err := s.userRepo.GetByEmail(ctx, req.Email)
		if err != nil {
			log.Error("signup lookup failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if existing != nil {
			writeError(w, http.StatusBadRequest, "email already exists")
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			log.Error("hash password failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		user := &model.User{
			FullName: req.FullName,
			Email:    req.Email,
			Password: hash,
		}
		if _, err := s.userRepo.Create(ctx, user); err != nil {
			log.Error("create user failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if !s.setSessionCookie(w, user.ID.Hex()) {
			return
		}
		writeJSON(w, http.StatusCreated, user)
	}
}

func (s *HttpServer) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, err := s.userRepo.GetByEmail(ctx, req.Email)
		if err != nil {
			log.Error("login lookup failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if user == nil || !auth.CheckPassword(user.Password, req.Password) {
			writeError(w, http.StatusBadRequest, "invalid credentials")
			return
		}

		if !s.setSessionCookie(w, user.ID.Hex()) {
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *HttpServer) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(auth.CookieName); err == nil && cookie.Value != "" {
			if err := s.authService.RevokeToken(r.Context(), cookie.Value); err != nil {
				log.Error("revoke token failed", zap.Error(err))
			}
		}

		http.SetCookie(w, &http.Cookie{
			Name:     auth.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
	}
}

func (s *HttpServer) HandleCheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := callerID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized - invalid token")
			return
		}

		user, err := s.userRepo.GetByID(r.Context(), id)
		if err != nil {
			log.Error("check lookup failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if user == nil {
			writeError(w, http.StatusUnauthorized, "unauthorized - user not found")
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *HttpServer) HandleUpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := callerID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized - invalid token")
			return
		}

		var req updateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.ProfilePic == "" {
			writeError(w, http.StatusBadRequest, "profile pic is required")
			return
		}

		user, err := s.userRepo.UpdateProfilePic(r.Context(), id, req.ProfilePic)
		if err != nil {
			log.Error("update profile failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if user == nil {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *HttpServer) setSessionCookie(w http.ResponseWriter, userID string) bool {
	token, err := s.authService.IssueToken(userID)
	if err != nil {
		log.Error("issue token failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.TokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return true
}
