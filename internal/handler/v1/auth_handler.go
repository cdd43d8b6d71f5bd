package v1

import (
	"net/http"

	"github.com/arogyacare/arogya-api/internal/domain"
	"github.com/arogyacare/arogya-api/internal/domain/identity"
	"github.com/arogyacare/arogya-api/internal/service"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	registrationSvc *service.RegistrationService
	authSvc         *service.AuthService
	resetSvc        *service.ResetService
}

func NewAuthHandler(registrationSvc *service.RegistrationService, authSvc *service.AuthService, resetSvc *service.ResetService) *AuthHandler {
	return &AuthHandler{
		registrationSvc: registrationSvc,
		authSvc:         authSvc,
		resetSvc:        resetSvc,
	}
}

type registerRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	NationalID  string `json:"national_id"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

type identityResponse struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	NationalID  string `json:"national_id"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
}

func toIdentityResponse(ident *identity.Identity) identityResponse {
	return identityResponse{
		ID:          ident.ID,
		DisplayName: ident.DisplayName,
		Email:       ident.Email,
		NationalID:  ident.NationalID,
		Phone:       ident.Phone,
		Role:        string(ident.Role),
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	ident, err := h.registrationSvc.Register(c.Request.Context(), &identity.RegisterCommand{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		NationalID:  req.NationalID,
		Phone:       req.Phone,
		Password:    req.Password,
		Role:        domain.Role(req.Role),
	}, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, toIdentityResponse(ident))
}

type loginRequest struct {
	NationalID string `json:"national_id"`
	Password   string `json:"password"`
	Role       string `json:"role"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.authSvc.Login(c.Request.Context(), req.NationalID, req.Password, domain.Role(req.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, session)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid refresh token"})
		return
	}

	respondOK(c, pair)
}

type resetRequestRequest struct {
	NationalID string `json:"national_id"`
}

func (h *AuthHandler) RequestReset(c *gin.Context) {
	var req resetRequestRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.resetSvc.RequestReset(c.Request.Context(), req.NationalID, c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"status": "reset code sent"})
}

type resetVerifyRequest struct {
	NationalID string `json:"national_id"`
	Code       string `json:"code"`
}

func (h *AuthHandler) VerifyReset(c *gin.Context) {
	var req resetVerifyRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.resetSvc.Verify(req.NationalID, req.Code); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"status": "code verified"})
}

type resetCompleteRequest struct {
	NationalID  string `json:"national_id"`
	NewPassword string `json:"new_password"`
}

func (h *AuthHandler) CompleteReset(c *gin.Context) {
	var req resetCompleteRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.resetSvc.CompleteReset(c.Request.Context(), req.NationalID, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"status": "password updated"})
}
