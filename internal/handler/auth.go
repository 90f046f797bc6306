package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/towelexpress/storefront/internal/domain/user"
	"github.com/towelexpress/storefront/internal/verify"
)

type phoneRequest struct {
	Phone string `json:"phone"`
}

type loginResponse struct {
	Success bool       `json:"success"`
	Token   string     `json:"token,omitempty"`
	User    *user.User `json:"user,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// Login authenticates by phone number alone and mints a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	if err := decodeJSON(r, &req); err != nil || req.Phone == "" {
		writeJSON(w, r, http.StatusBadRequest, loginResponse{
			Success: false,
			Error:   "Brak numeru telefonu",
		})
		return
	}

	result, err := h.users.Login(r.Context(), req.Phone)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeJSON(w, r, http.StatusNotFound, loginResponse{
				Success: false,
				Error:   "Nie znaleziono użytkownika z tym numerem telefonu",
			})
			return
		}
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, loginResponse{
		Success: true,
		Token:   result.Token,
		User:    result.User,
	})
}

type registerRequest struct {
	Phone           string       `json:"phone"`
	FirstName       string       `json:"first_name"`
	LastName        string       `json:"last_name"`
	Email           string       `json:"email"`
	CustomerType    string       `json:"customer_type"`
	CompanyName     string       `json:"company_name"`
	TaxID           string       `json:"nip"`
	BillingAddress  user.Address `json:"billing_address"`
	ShippingAddress user.Address `json:"shipping_address"`
}

type registerResponse struct {
	Success bool       `json:"success"`
	User    *user.User `json:"user"`
	Message string     `json:"message"`
}

// Register creates a user. Duplicate phones and missing required fields both
// answer 400, matching what the registration wizard expects.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Phone == "" || req.FirstName == "" || req.LastName == "" {
		writeError(w, r, http.StatusBadRequest, "Phone, first name and last name are required")
		return
	}

	created, err := h.users.Register(r.Context(), user.Registration{
		Phone:           req.Phone,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		CustomerType:    user.CustomerType(req.CustomerType),
		CompanyName:     req.CompanyName,
		TaxID:           req.TaxID,
		BillingAddress:  req.BillingAddress,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			writeError(w, r, http.StatusBadRequest, "Użytkownik z tym numerem telefonu już istnieje")
			return
		}
		var vErr *user.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, r, http.StatusBadRequest, vErr.Error())
			return
		}
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, registerResponse{
		Success: true,
		User:    created,
		Message: "User registered successfully",
	})
}

type checkUserResponse struct {
	Exists bool   `json:"exists"`
	Phone  string `json:"phone"`
}

// CheckUser reports whether a phone number is already registered, so the
// client can route to login or registration.
func (h *Handler) CheckUser(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	if err := decodeJSON(r, &req); err != nil || req.Phone == "" {
		writeError(w, r, http.StatusBadRequest, "Phone number is required")
		return
	}

	exists, err := h.users.Exists(r.Context(), req.Phone)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, checkUserResponse{Exists: exists, Phone: req.Phone})
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendSMS issues a verification code for the phone. Delivery is stubbed; the
// code lands in the server log.
func (h *Handler) SendSMS(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	if err := decodeJSON(r, &req); err != nil || req.Phone == "" {
		writeError(w, r, http.StatusBadRequest, "Phone number is required")
		return
	}

	if err := h.verifier.Issue(r.Context(), req.Phone); err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, messageResponse{
		Success: true,
		Message: "SMS sent successfully",
	})
}

type verifyLoginRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type verifyLoginResponse struct {
	Success bool       `json:"success"`
	User    *user.User `json:"user"`
	Message string     `json:"message"`
}

// VerifyLogin checks a verification code and, when it matches, returns the
// user registered under the phone.
func (h *Handler) VerifyLogin(w http.ResponseWriter, r *http.Request) {
	var req verifyLoginRequest
	if err := decodeJSON(r, &req); err != nil || req.Phone == "" || req.Code == "" {
		writeError(w, r, http.StatusBadRequest, "Phone and code are required")
		return
	}

	if err := h.verifier.Check(r.Context(), req.Phone, req.Code); err != nil {
		if errors.Is(err, verify.ErrCodeMismatch) {
			writeError(w, r, http.StatusBadRequest, "Invalid verification code")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	u, err := h.users.GetByPhone(r.Context(), req.Phone)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "User not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, verifyLoginResponse{
		Success: true,
		User:    u,
		Message: "User logged in successfully",
	})
}
