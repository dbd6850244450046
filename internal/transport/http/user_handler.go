package http

import (
	"net/http"
)

func (api *API) handleUserDashboard(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r)
	dashboard, err := api.Dashboard.UserDashboard(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, dashboard)
}

// handleUserSubjects serves the same cached listing the admin view uses;
// both sides see only active subjects.
func (api *API) handleUserSubjects(w http.ResponseWriter, r *http.Request) {
	api.handleListSubjects(w, r)
}

func (api *API) handleUserChapters(w http.ResponseWriter, r *http.Request) {
	views, err := api.Catalog.ListChapters(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

func (api *API) handleUserQuizzes(w http.ResponseWriter, r *http.Request) {
	views, err := api.Catalog.ListQuizzes(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

func (api *API) handleUserScores(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r)
	views, err := api.Dashboard.UserScores(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}
