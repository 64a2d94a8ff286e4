// internal/handlers/verification.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/authentrace/provenance-backend/internal/services"
	"github.com/authentrace/provenance-backend/internal/utils"
)

// VerificationHandler serves the public QR-scan lookup. No account is
// required: anyone holding a product can scan its code and check the
// provenance chain.
type VerificationHandler struct {
	itemService *services.ItemService
}

func NewVerificationHandler(itemService *services.ItemService) *VerificationHandler {
	return &VerificationHandler{
		itemService: itemService,
	}
}

// GET /verify/:itemId
func (h *VerificationHandler) VerifyItem(c *gin.Context) {
	itemID := c.Param("itemId")

	history, err := h.itemService.Verify(c.Request.Context(), itemID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"authentic":     true,
		"item":          history.Item,
		"current_owner": history.CurrentOwner,
		"transactions":  history.Transactions,
	})
}
