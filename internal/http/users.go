package httpserver

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/filmdex/filmdex/internal/repository"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		s.respondValidationError(w, err)
		return
	}

	user, err := s.repo.Users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error("login lookup error", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.respondError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Username)
	if err != nil {
		s.logger.Error("token generation failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	s.respondJSON(w, http.StatusOK, loginResponse{
		Message: "User login successfully",
		Token:   token,
	})
}
