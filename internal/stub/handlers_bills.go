package stub

import (
	"net/http"

	"github.com/gorilla/mux"

	"meterbill-dashboard/internal/domain"
)

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	status := domain.BillStatus(r.URL.Query().Get("status"))
	landlordID := r.URL.Query().Get("landlordId")
	// Landlords only ever see their own bills.
	if caller := callerFrom(r); caller != nil && caller.Role == domain.RoleLandlord {
		landlordID = caller.ID
	}
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)

	all := s.store.listBills(status, landlordID)
	items, pagination := paginate(all, page, limit)
	respondJSON(w, http.StatusOK, map[string]any{"bills": items, "pagination": pagination})
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	bill := s.store.billByID(mux.Vars(r)["id"])
	if bill == nil {
		respondError(w, http.StatusNotFound, "bill not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"bill": bill})
}

func (s *Server) handlePayBill(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if s.store.billByID(id) == nil {
		respondError(w, http.StatusNotFound, "bill not found")
		return
	}

	bill, conflict := s.store.payBill(id, s.Now())
	if conflict != "" {
		respondError(w, http.StatusConflict, conflict)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "bill marked as paid", "bill": bill})
}

func (s *Server) handleBillingSummary(w http.ResponseWriter, r *http.Request) {
	landlordID := ""
	if caller := callerFrom(r); caller != nil && caller.Role == domain.RoleLandlord {
		landlordID = caller.ID
	}
	respondJSON(w, http.StatusOK, map[string]any{"summary": s.store.summary(landlordID)})
}

func (s *Server) handleUpdateOverdue(w http.ResponseWriter, r *http.Request) {
	updated := s.store.markOverdue(s.Now())
	respondJSON(w, http.StatusOK, map[string]any{
		"message":      "overdue bills updated",
		"updatedCount": updated,
	})
}
