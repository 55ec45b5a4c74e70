package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/clearfolio/clearfolio/internal/common"
	"github.com/clearfolio/clearfolio/internal/services/portfolio"
)

// ParseRequest is the body of POST /api/portfolio/parse.
type ParseRequest struct {
	// Statement is the raw statement text: a CSV export or a copy-paste
	// from a PDF viewer.
	Statement string `json:"statement"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handlePortfolioParse(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req ParseRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Statement) == "" {
		WriteError(w, http.StatusBadRequest, "Field 'statement' is required")
		return
	}

	result, err := s.portfolio.ParsePortfolio(r.Context(), req.Statement)
	if err != nil {
		if errors.Is(err, portfolio.ErrNoPositions) {
			WriteErrorWithHint(w, http.StatusUnprocessableEntity,
				"No positions found in statement",
				"Check that the text contains holding rows with a symbol and a quantity")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to parse statement: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
