package stub

import (
	"encoding/json"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

func (s *Server) handleGetKwhRate(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"key":   "kwh-rate",
		"value": strconv.FormatFloat(s.store.getKwhRate(), 'f', 2, 64),
	})
}

type updateKwhRateRequest struct {
	Value    float64 `json:"value"`
	Password string  `json:"password"`
}

// handleUpdateKwhRate changes the global default rate. Beyond the admin
// role gate, the caller must re-supply their own password as a step-up
// confirmation within the existing session.
func (s *Server) handleUpdateKwhRate(w http.ResponseWriter, r *http.Request) {
	var req updateKwhRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Value <= 0 {
		respondError(w, http.StatusBadRequest, "rate must be a positive number")
		return
	}

	caller := callerFrom(r)
	rec := s.store.userByID(caller.ID)
	if rec == nil || bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(req.Password)) != nil {
		respondError(w, http.StatusForbidden, "password confirmation failed")
		return
	}

	s.store.setKwhRate(req.Value)
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "kwh rate updated",
		"key":     "kwh-rate",
		"value":   strconv.FormatFloat(req.Value, 'f', 2, 64),
	})
}
