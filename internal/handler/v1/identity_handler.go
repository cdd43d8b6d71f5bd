package v1

import (
	"github.com/arogyacare/arogya-api/internal/domain/identity"
	"github.com/arogyacare/arogya-api/internal/service"
	"github.com/gin-gonic/gin"
)

// IdentityHandler exposes the administrative listing of registered
// identities. Password hashes never leave the repository layer's
// model; the response type strips them.
type IdentityHandler struct {
	repo     identity.Repository
	auditSvc *service.AuditService
}

func NewIdentityHandler(repo identity.Repository, auditSvc *service.AuditService) *IdentityHandler {
	return &IdentityHandler{repo: repo, auditSvc: auditSvc}
}

func (h *IdentityHandler) List(c *gin.Context) {
	idents, err := h.repo.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]identityResponse, 0, len(idents))
	for _, ident := range idents {
		out = append(out, toIdentityResponse(ident))
	}

	if claims, ok := claimsFrom(c); ok {
		h.auditSvc.LogAsync(c.Request.Context(), service.AuditEntry{
			IdentityID: claims.IdentityID,
			Role:       string(claims.Role),
			Action:     "list",
			Outcome:    "success",
			IPAddress:  c.ClientIP(),
			RequestID:  c.GetString(requestIDKey),
		})
	}

	respondOK(c, out)
}
