package stub

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"meterbill-dashboard/internal/domain"
)

func (s *Server) handleListMeters(w http.ResponseWriter, r *http.Request) {
	landlordID := r.URL.Query().Get("landlordId")
	// Landlords only ever see their own meters, whatever they ask for.
	if caller := callerFrom(r); caller != nil && caller.Role == domain.RoleLandlord {
		landlordID = caller.ID
	}
	respondJSON(w, http.StatusOK, map[string]any{"meters": s.store.listMeters(landlordID)})
}

func (s *Server) handleGetMeter(w http.ResponseWriter, r *http.Request) {
	meter := s.store.meterByID(mux.Vars(r)["id"])
	if meter == nil {
		respondError(w, http.StatusNotFound, "meter not found")
		return
	}
	if caller := callerFrom(r); caller != nil && caller.Role == domain.RoleLandlord && meter.Landlord.ID != caller.ID {
		respondError(w, http.StatusForbidden, "insufficient permissions for this action")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"meter": meter})
}

type createMeterRequest struct {
	MeterNumber string   `json:"meterNumber"`
	PlotNumber  string   `json:"plotNumber"`
	LandlordID  string   `json:"landlordId"`
	Coordinates string   `json:"coordinates"`
	Location    string   `json:"location"`
	KwhRate     *float64 `json:"kwhRate"`
}

func (s *Server) handleCreateMeter(w http.ResponseWriter, r *http.Request) {
	var req createMeterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MeterNumber == "" || req.PlotNumber == "" || req.LandlordID == "" {
		respondError(w, http.StatusBadRequest, "meter number, plot number and landlord are required")
		return
	}
	if req.KwhRate != nil && *req.KwhRate <= 0 {
		respondError(w, http.StatusBadRequest, "kwh rate must be a positive number")
		return
	}

	landlord := s.store.userByID(req.LandlordID)
	if landlord == nil {
		respondError(w, http.StatusNotFound, "landlord not found")
		return
	}
	if landlord.Role != domain.RoleLandlord {
		respondError(w, http.StatusBadRequest, "meter owner must have the LANDLORD role")
		return
	}

	meter := &domain.Meter{
		ID:          uuid.NewString(),
		MeterNumber: req.MeterNumber,
		PlotNumber:  req.PlotNumber,
		Coordinates: req.Coordinates,
		Location:    req.Location,
		KwhRate:     req.KwhRate,
		IsActive:    true,
		CreatedAt:   s.Now(),
		Landlord: domain.MeterLandlord{
			ID:          landlord.ID,
			PhoneNumber: landlord.PhoneNumber,
			Name:        landlord.Name,
			Role:        landlord.Role,
		},
	}
	if err := s.store.addMeter(meter); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"message": "meter created", "meter": meter})
}

type updateMeterRequest struct {
	PlotNumber  string   `json:"plotNumber"`
	Coordinates string   `json:"coordinates"`
	Location    string   `json:"location"`
	KwhRate     *float64 `json:"kwhRate"`
	IsActive    *bool    `json:"isActive"`
}

func (s *Server) handleUpdateMeter(w http.ResponseWriter, r *http.Request) {
	var req updateMeterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.KwhRate != nil && *req.KwhRate <= 0 {
		respondError(w, http.StatusBadRequest, "kwh rate must be a positive number")
		return
	}

	id := mux.Vars(r)["id"]
	s.store.mu.Lock()
	meter, ok := s.store.meters[id]
	if !ok {
		s.store.mu.Unlock()
		respondError(w, http.StatusNotFound, "meter not found")
		return
	}
	// meterNumber and landlord are immutable; only presentation and
	// billing attributes may change.
	if req.PlotNumber != "" {
		meter.PlotNumber = req.PlotNumber
	}
	if req.Coordinates != "" {
		meter.Coordinates = req.Coordinates
	}
	if req.Location != "" {
		meter.Location = req.Location
	}
	if req.KwhRate != nil {
		meter.KwhRate = req.KwhRate
	}
	if req.IsActive != nil {
		meter.IsActive = *req.IsActive
	}
	updated := *meter
	s.store.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]any{"message": "meter updated", "meter": updated})
}
