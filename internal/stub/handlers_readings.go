package stub

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"meterbill-dashboard/internal/domain"
)

func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	meterID := r.URL.Query().Get("meterId")
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)

	all := s.store.listReadings(meterID)
	items, pagination := paginate(all, page, limit)
	respondJSON(w, http.StatusOK, map[string]any{"readings": items, "pagination": pagination})
}

func (s *Server) handleGetReading(w http.ResponseWriter, r *http.Request) {
	reading := s.store.readingByID(mux.Vars(r)["id"])
	if reading == nil {
		respondError(w, http.StatusNotFound, "reading not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"reading": reading})
}

// handleCreateReading records a reading from a multipart submission and,
// when consumption is positive, generates the bill.
func (s *Server) handleCreateReading(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		respondError(w, http.StatusBadRequest, "photo must be 5MB or smaller")
		return
	}

	meterID := r.FormValue("meterId")
	if meterID == "" {
		respondError(w, http.StatusBadRequest, "meterId is required")
		return
	}
	value, err := strconv.ParseFloat(r.FormValue("reading"), 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "reading must be a number")
		return
	}
	if value < 0 {
		respondError(w, http.StatusBadRequest, "reading must be a non-negative number")
		return
	}

	photo, header, err := r.FormFile("photo")
	if err != nil {
		respondError(w, http.StatusBadRequest, "photo evidence is required")
		return
	}
	photo.Close()
	if header.Size > maxPhotoBytes {
		respondError(w, http.StatusBadRequest, "photo must be 5MB or smaller")
		return
	}

	meter := s.store.meterByID(meterID)
	if meter == nil {
		respondError(w, http.StatusNotFound, "meter not found")
		return
	}
	if !meter.IsActive {
		respondError(w, http.StatusBadRequest, "meter is inactive")
		return
	}

	// The authoritative consumption check: the ledger is append-only and
	// monotonic per meter.
	var previous *float64
	if last := s.store.lastReading(meterID); last != nil {
		if value < last.Reading {
			respondError(w, http.StatusBadRequest,
				fmt.Sprintf("reading %.2f cannot be less than the previous reading %.2f", value, last.Reading))
			return
		}
		prev := last.Reading
		previous = &prev
	}

	technician := callerFrom(r)
	now := s.Now()
	reading := &readingRecord{
		MeterReading: domain.MeterReading{
			ID:              uuid.NewString(),
			Reading:         value,
			PreviousReading: previous,
			ReadingDate:     now,
			CreatedAt:       now,
			PhotoPath:       "/uploads/readings/" + uuid.NewString() + filepath.Ext(header.Filename),
			Meter: domain.ReadingMeter{
				MeterNumber: meter.MeterNumber,
				PlotNumber:  meter.PlotNumber,
				Landlord:    meter.Landlord,
			},
			Technician: domain.ReadingTechnician{
				Name:        technician.Name,
				PhoneNumber: technician.PhoneNumber,
			},
		},
		meterID:      meterID,
		technicianID: technician.ID,
	}
	if previous != nil {
		units := value - *previous
		reading.UnitsConsumed = &units
	}
	s.store.addReading(reading)

	resp := map[string]any{"message": "reading recorded", "reading": reading.MeterReading}
	if bill := s.generateBill(meter, reading, now); bill != nil {
		resp["bill"] = bill
	}
	respondJSON(w, http.StatusCreated, resp)
}

// generateBill creates the PENDING bill for a reading with positive
// consumption. The meter's rate override wins over the global default;
// both units and rate are fixed into the bill at creation time.
func (s *Server) generateBill(meter *domain.Meter, reading *readingRecord, now time.Time) *domain.Bill {
	units := reading.Consumption()
	if units <= 0 {
		return nil
	}

	rate := s.store.getKwhRate()
	if meter.KwhRate != nil {
		rate = *meter.KwhRate
	}

	bill := &billRecord{
		Bill: domain.Bill{
			ID:            uuid.NewString(),
			BillNumber:    s.store.nextBillNumber(),
			UnitsConsumed: units,
			RatePerUnit:   rate,
			TotalAmount:   units * rate,
			BillDate:      now,
			DueDate:       now.AddDate(0, 0, 30),
			Status:        domain.BillStatusPending,
			CreatedAt:     now,
			Meter: domain.BillMeter{
				MeterNumber: meter.MeterNumber,
				PlotNumber:  meter.PlotNumber,
				Location:    meter.Location,
			},
			Landlord: domain.BillLandlord{
				Name:        meter.Landlord.Name,
				PhoneNumber: meter.Landlord.PhoneNumber,
			},
			Reading: domain.BillReading{
				Reading:         reading.Reading,
				PreviousReading: reading.PreviousReading,
				ReadingDate:     reading.ReadingDate,
				Technician:      reading.Technician,
			},
		},
		meterID:    reading.meterID,
		landlordID: meter.Landlord.ID,
		readingID:  reading.MeterReading.ID,
	}
	s.store.addBill(bill)
	return &bill.Bill
}
