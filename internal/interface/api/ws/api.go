package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"happyBot/internal/domain"
	"happyBot/internal/usecase/commands"
)

type CatalogProvider func() []commands.CommandDescriptor

type GamesReporter interface {
	Sessions() []string
	Pending() (domain.RestartRequest, bool)
}

type apiHandlers struct {
	catalog CatalogProvider
	games   GamesReporter
}

func newAPIHandlers(cfg Config) *apiHandlers {
	return &apiHandlers{
		catalog: cfg.Catalog,
		games:   cfg.Games,
	}
}

func (a *apiHandlers) register(mux *http.ServeMux) {
	mux.HandleFunc("/api/commands", a.withCORS(a.handleCommands))
	mux.HandleFunc("/api/games", a.withCORS(a.handleGames))
}

func (a *apiHandlers) withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func (a *apiHandlers) handleCommands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var out []commands.CommandDescriptor
	if a.catalog != nil {
		out = a.catalog()
	}
	if out == nil {
		out = []commands.CommandDescriptor{}
	}
	writeJSON(w, http.StatusOK, out)
}

type pendingRestartResponse struct {
	ExitCode int    `json:"exit_code"`
	Source   string `json:"source"`
}

type gamesResponse struct {
	Active         []string                `json:"active"`
	PendingRestart *pendingRestartResponse `json:"pending_restart,omitempty"`
}

func (a *apiHandlers) handleGames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	resp := gamesResponse{Active: []string{}}
	if a.games != nil {
		if sessions := a.games.Sessions(); sessions != nil {
			resp.Active = sessions
		}
		if req, ok := a.games.Pending(); ok {
			resp.PendingRestart = &pendingRestartResponse{ExitCode: req.ExitCode, Source: req.Source}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ws: api encode error: %v", err)
	}
}
