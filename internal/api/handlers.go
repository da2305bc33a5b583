package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"pairIndex/internal/model"
)

const indexText = "Token info in pool service."

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleIndex handles GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(indexText))
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleTokenInfo handles GET /token-info?token=<symbol>
func (s *Server) handleTokenInfo(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("token")
	addr, ok := s.symbols.Resolve(symbol)
	if !ok {
		s.logger.Debug("unknown token symbol", zap.String("token", symbol))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: http.StatusText(http.StatusBadRequest)})
		return
	}

	records, err := s.store.QueryByAddress(r.Context(), addr)
	if err != nil {
		s.logger.Error("query token info", zap.String("token", symbol), zap.String("address", addr), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal Error"})
		return
	}

	if records == nil {
		records = []model.TokenRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
