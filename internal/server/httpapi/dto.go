package httpapi

import (
	"time"

	"github.com/dmitrijs2005/authgate/internal/server/models"
)

// Request bodies follow the action-handler envelope: {"input": {...}}.

type signupRequest struct {
	Input struct {
		UserData struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
		} `json:"userData"`
	} `json:"input"`
}

type loginRequest struct {
	Input struct {
		Credentials struct {
			EmailOrUsername string `json:"emailOrUsername"`
			Password        string `json:"password"`
		} `json:"credentials"`
	} `json:"input"`
}

type forgotPasswordRequest struct {
	Input struct {
		Email string `json:"email"`
	} `json:"input"`
}

type resetPasswordRequest struct {
	Input struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	} `json:"input"`
}

type profileResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func newProfileResponse(p *models.Profile) profileResponse {
	return profileResponse{ID: p.ID, Username: p.UserName, Email: p.Email, CreatedAt: p.CreatedAt}
}
