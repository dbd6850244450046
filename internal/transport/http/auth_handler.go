package http

import (
	"fmt"
	"net/http"
	"time"

	"campus-quiz-service/internal/app"
	"campus-quiz-service/internal/domain"
)

type registerRequest struct {
	Username      string `json:"username" validate:"required"`
	Password      string `json:"password" validate:"required"`
	FullName      string `json:"full_name" validate:"required"`
	Qualification string `json:"qualification"`
	DOB           string `json:"dob"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string          `json:"access_token"`
	User        domain.UserView `json:"user"`
}

func (api *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	in := app.RegisterInput{
		Username:      req.Username,
		Password:      req.Password,
		FullName:      req.FullName,
		Qualification: req.Qualification,
	}
	if req.DOB != "" {
		dob, err := time.Parse("2006-01-02", req.DOB)
		if err != nil {
			respondError(w, r, fmt.Errorf("%w: dob must be YYYY-MM-DD", domain.ErrValidation))
			return
		}
		in.DOB = &dob
	}

	if _, err := api.Auth.Register(r.Context(), in); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusCreated, "User registered successfully")
}

func (api *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	token, user, err := api.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, loginResponse{AccessToken: token, User: user})
}

func (api *API) handleProfile(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r)
	user, err := api.Auth.Profile(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
