package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log"
	"net/http"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/neopaysim/backend/internal/middleware"
	"github.com/neopaysim/backend/internal/services"
	"github.com/neopaysim/backend/internal/store"
)

type QRHandler struct {
	store     store.Store
	validator *services.ValidationHelper
}

func NewQRHandler(st store.Store) *QRHandler {
	return &QRHandler{
		store:     st,
		validator: services.NewValidationHelper(),
	}
}

// ParseQR validates a scanned or uploaded payment URI. The response always
// carries the discriminated parse result; a rejected payload is not an
// HTTP error, it is a valid answer to the question "can I pay this?".
func (h *QRHandler) ParseQR(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QRData string `json:"qrData" validate:"required"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result := services.ParseUPIURI(req.QRData)
	services.WriteJSON(w, http.StatusOK, result)
}

// GenerateQR renders a collect-payment QR code for the caller's own
// virtual payment address. A zero amount produces an open QR where the
// payer chooses the amount.
func (h *QRHandler) GenerateQR(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req struct {
		Amount int64  `json:"amount" validate:"gte=0"`
		Note   string `json:"note" validate:"max=100"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		services.SendErrorResponse(w, "User not found", http.StatusNotFound, nil)
		return
	}
	accounts, err := h.store.GetAccountsByUser(r.Context(), userID)
	if err != nil || len(accounts) == 0 {
		if err != nil && !errors.Is(err, store.ErrAccountNotFound) {
			log.Printf("[QR] Account lookup failed for %s: %v", userID, err)
		}
		services.SendErrorResponse(w, "Account not found", http.StatusNotFound, nil)
		return
	}

	vpa := fmt.Sprintf("%s@neopay", accounts[0].AccountNumber)
	uri := services.BuildUPIURI(vpa, user.Name, req.Amount, req.Note)

	qr, err := qrcode.New(uri, qrcode.Medium)
	if err != nil {
		log.Printf("[QR] QR encode failed for %s: %v", userID, err)
		services.SendErrorResponse(w, "Failed to generate QR code", http.StatusInternalServerError, nil)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		log.Printf("[QR] PNG encode failed for %s: %v", userID, err)
		services.SendErrorResponse(w, "Failed to generate QR code", http.StatusInternalServerError, nil)
		return
	}

	services.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"uri":     uri,
		"qrImage": base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
}
