package services

import (
	cryptorand "crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"golang.org/x/crypto/argon2"

	"github.com/neopaysim/backend/internal/middleware"
	"github.com/neopaysim/backend/internal/models"
	"github.com/neopaysim/backend/internal/store"
)

type AuthService struct {
	store     store.Store
	ids       IDSource
	validator *ValidationHelper
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Mobile string `json:"mobile" validate:"required,len=10,numeric" example:"9727180908"`
	PIN    string `json:"pin" validate:"required,len=4,numeric" example:"1809"`
}

// RegisterRequest represents the onboarding payload
type RegisterRequest struct {
	Mobile string `json:"mobile" validate:"required,len=10,numeric" example:"9876543210"`
	Name   string `json:"name" validate:"required,min=2" example:"Armaan Thakkar"`
	PIN    string `json:"pin" validate:"required,len=4,numeric" example:"1234"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token   string                 `json:"token"`
	User    models.User            `json:"user"`
	Account *models.VirtualAccount `json:"account,omitempty"`
}

func NewAuthService(st store.Store, ids IDSource) *AuthService {
	return &AuthService{
		store:     st,
		ids:       ids,
		validator: NewValidationHelper(),
	}
}

// Register handles onboarding: it creates the user and their single
// virtual account, and returns a session token.
func (s *AuthService) Register(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Registration attempt from IP: %s", r.RemoteAddr)

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req RegisterRequest
	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.ValidateStruct(&req); err != nil {
		log.Printf("[AUTH] Registration validation failed: %v", err)
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	pinHash, err := HashPIN(req.PIN)
	if err != nil {
		log.Printf("[AUTH] PIN hashing failed for %s: %v", req.Mobile, err)
		SendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
		return
	}

	user := &models.User{
		ID:          s.ids.NewID(),
		Mobile:      req.Mobile,
		Name:        req.Name,
		PINHash:     pinHash,
		KYCStatus:   models.KYCPending,
		OnboardedAt: time.Now(),
	}
	if err := s.store.AddUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateID) {
			SendErrorResponse(w, "Mobile Already Registered", http.StatusConflict, nil)
			return
		}
		log.Printf("[AUTH] User creation failed for %s: %v", req.Mobile, err)
		SendErrorResponse(w, "Failed to create user", http.StatusInternalServerError, nil)
		return
	}

	account := &models.VirtualAccount{
		ID:            s.ids.NewID(),
		UserID:        user.ID,
		AccountNumber: generateAccountNumber(),
		IFSC:          "NEOP0000001",
		Type:          models.AccountSavings,
		Label:         "Savings Account",
	}
	if err := s.store.AddAccount(r.Context(), account); err != nil {
		log.Printf("[AUTH] Account creation failed for %s: %v", req.Mobile, err)
		SendErrorResponse(w, "Failed to create account", http.StatusInternalServerError, nil)
		return
	}

	token, err := generateJWT(user.ID)
	if err != nil {
		log.Printf("[AUTH] JWT generation failed for user %s: %v", user.ID, err)
		SendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[AUTH] User created successfully - ID: %s, Mobile: %s", user.ID, user.Mobile)
	WriteJSON(w, http.StatusCreated, AuthResponse{Token: token, User: *user, Account: account})
}

// Login authenticates a user by mobile number and PIN.
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Login attempt from IP: %s", r.RemoteAddr)

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req LoginRequest
	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	user, err := s.store.GetUserByMobile(r.Context(), req.Mobile)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			SendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
			return
		}
		log.Printf("[AUTH] User lookup failed for %s: %v", req.Mobile, err)
		SendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
		return
	}

	if !VerifyPIN(req.PIN, user.PINHash) {
		log.Printf("[AUTH] Invalid PIN for mobile %s", req.Mobile)
		SendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}

	token, err := generateJWT(user.ID)
	if err != nil {
		log.Printf("[AUTH] JWT generation failed for user %s: %v", user.ID, err)
		SendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[AUTH] Login successful for user %s", user.ID)
	WriteJSON(w, http.StatusOK, AuthResponse{Token: token, User: *user})
}

// GetUserAccount returns the authenticated user's profile and account.
func (s *AuthService) GetUserAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	user, err := s.store.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			SendErrorResponse(w, "User not found", http.StatusNotFound, nil)
			return
		}
		log.Printf("[AUTH] Failed to fetch user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch user details", http.StatusInternalServerError, nil)
		return
	}

	accounts, err := s.store.GetAccountsByUser(r.Context(), userID)
	if err != nil {
		log.Printf("[AUTH] Failed to fetch accounts for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch account details", http.StatusInternalServerError, nil)
		return
	}

	resp := AuthResponse{User: *user}
	if len(accounts) > 0 {
		resp.Account = &accounts[0]
	}
	WriteJSON(w, http.StatusOK, resp)
}

func generateJWT(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour).Unix(),
	})
	return token.SignedString([]byte(viper.GetString("jwt.secret_key")))
}

// HashPIN hashes a login PIN with argon2id; the salt is stored alongside
// the hash as salt$hash, both base64.
func HashPIN(pin string) (string, error) {
	salt := make([]byte, viper.GetInt("argon2.salt_length"))
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(pin), salt,
		uint32(viper.GetInt("argon2.time")),
		uint32(viper.GetInt("argon2.memory")),
		uint8(viper.GetInt("argon2.threads")),
		uint32(viper.GetInt("argon2.key_length")))
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

// VerifyPIN checks a PIN against a stored salt$hash value.
func VerifyPIN(pin, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}
	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(pin), salt,
		uint32(viper.GetInt("argon2.time")),
		uint32(viper.GetInt("argon2.memory")),
		uint8(viper.GetInt("argon2.threads")),
		uint32(viper.GetInt("argon2.key_length")))
	return subtle.ConstantTimeCompare(hash, computed) == 1
}

func generateAccountNumber() string {
	const digits = "0123456789"
	b := make([]byte, 13)
	for i := range b {
		b[i] = digits[rand.Intn(len(digits))]
	}
	return string(b)
}
