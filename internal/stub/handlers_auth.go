package stub

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"meterbill-dashboard/internal/domain"
)

type loginRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PhoneNumber == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "phone number and password are required")
		return
	}

	rec := s.store.userByPhone(req.PhoneNumber)
	if rec == nil || bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "invalid phone number or password")
		return
	}

	token, err := s.issueToken(rec.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "login successful",
		"user":    rec.User,
		"token":   token,
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"user": callerFrom(r)})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"users": s.store.listUsers()})
}

type createUserRequest struct {
	PhoneNumber string      `json:"phoneNumber"`
	Password    string      `json:"password"`
	Role        domain.Role `json:"role"`
	Name        string      `json:"name"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PhoneNumber == "" {
		respondError(w, http.StatusBadRequest, "phone number is required")
		return
	}
	if !req.Role.Valid() {
		respondError(w, http.StatusBadRequest, "role must be one of ADMIN, TECHNICIAN, LANDLORD")
		return
	}

	// Generate a password when the admin did not supply one; it is
	// returned once in this response and never again.
	password := req.Password
	generated := ""
	if password == "" {
		var err error
		password, err = generatePassword()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to generate password")
			return
		}
		generated = password
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := s.store.addUser(req.PhoneNumber, req.Name, req.Role, hash, s.Now())
	if err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}

	resp := map[string]any{"message": "user created", "user": user}
	if generated != "" {
		resp["generatedPassword"] = generated
	}
	respondJSON(w, http.StatusCreated, resp)
}

type updateUserRequest struct {
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role != "" && !req.Role.Valid() {
		respondError(w, http.StatusBadRequest, "role must be one of ADMIN, TECHNICIAN, LANDLORD")
		return
	}

	user, ok := s.store.updateUser(mux.Vars(r)["id"], req.Name, req.Role)
	if !ok {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "user updated", "user": user})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if caller := callerFrom(r); caller != nil && caller.ID == id {
		respondError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}
	if !s.store.deleteUser(id) {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "user deleted"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec := s.store.userByID(id)
	if rec == nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}

	password, err := generatePassword()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate password")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	s.store.setPassword(id, hash)

	respondJSON(w, http.StatusOK, map[string]any{
		"message":     "password reset",
		"newPassword": password,
		"user":        rec.User,
	})
}
