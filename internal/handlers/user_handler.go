package handlers

import (
	"net/http"

	"stellarstep/internal/security"
	"stellarstep/internal/service"
)

// UserHandler handles user profile and parent-access HTTP requests
type UserHandler struct {
	userService *service.UserService
	tokenIssuer *security.ParentTokenIssuer
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService, tokenIssuer *security.ParentTokenIssuer) *UserHandler {
	return &UserHandler{
		userService: userService,
		tokenIssuer: tokenIssuer,
	}
}

// Create handles POST /api/user/create: idempotent create-or-get
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirebaseUID string `json:"firebaseUid"`
		Email       string `json:"email"`
		Username    string `json:"username"`
		AvatarID    int    `json:"avatarId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, created, err := h.userService.CreateOrGet(req.FirebaseUID, req.Email, req.Username, req.AvatarID)
	if err != nil {
		respondServiceError(w, "Failed to create user", err)
		return
	}

	if !created {
		respondJSON(w, http.StatusOK, map[string]any{
			"message": "User already exists",
			"user":    user,
		})
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    user,
	})
}

// Get handles GET /api/user/{firebaseUid}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByFirebaseUID(r.PathValue("firebaseUid"))
	if err != nil {
		respondServiceError(w, "Failed to get user", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Update handles PUT /api/user/{firebaseUid}: partial profile update
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username *string `json:"username"`
		AvatarID *int    `json:"avatarId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.userService.UpdateProfile(r.PathValue("firebaseUid"), req.Username, req.AvatarID)
	if err != nil {
		respondServiceError(w, "Failed to update profile", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated",
		"user":    user,
	})
}

// SetParentPassword handles POST /api/user/parent-password
func (h *UserHandler) SetParentPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirebaseUID string `json:"firebaseUid"`
		Password    string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.userService.SetParentPassword(req.FirebaseUID, req.Password); err != nil {
		respondServiceError(w, "Failed to set password", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Parent password set successfully",
	})
}

// VerifyParent handles POST /api/user/verify-parent. A successful match also
// returns a short-lived parent access token when token issuing is configured.
func (h *UserHandler) VerifyParent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirebaseUID string `json:"firebaseUid"`
		Password    string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	valid, err := h.userService.VerifyParentPassword(req.FirebaseUID, req.Password)
	if err != nil {
		respondServiceError(w, "Verification failed", err)
		return
	}

	fields := map[string]any{"valid": valid}
	if valid && h.tokenIssuer != nil && h.tokenIssuer.Enabled() {
		token, err := h.tokenIssuer.Issue(req.FirebaseUID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Verification failed", err)
			return
		}
		fields["token"] = token
	}

	respondJSON(w, http.StatusOK, fields)
}
