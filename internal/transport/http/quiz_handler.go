package http

import (
	"net/http"
)

type submitRequest struct {
	Answers   map[string]string `json:"answers"`
	TimeTaken int               `json:"time_taken"`
}

func (api *API) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	start, err := api.Sessions.Start(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, start)
}

func (api *API) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req submitRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	claims, _ := claimsFrom(r)
	result, err := api.Sessions.Submit(r.Context(), id, claims.UserID, req.Answers, req.TimeTaken)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (api *API) handleQuizResults(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "score_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	results, err := api.Sessions.Results(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}
