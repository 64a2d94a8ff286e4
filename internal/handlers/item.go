// internal/handlers/item.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/authentrace/provenance-backend/internal/i18n"
	"github.com/authentrace/provenance-backend/internal/ledger"
	"github.com/authentrace/provenance-backend/internal/models"
	"github.com/authentrace/provenance-backend/internal/services"
	"github.com/authentrace/provenance-backend/internal/utils"
)

type ItemHandler struct {
	itemService *services.ItemService
	accounts    ledger.AccountDirectory
}

func NewItemHandler(itemService *services.ItemService, accounts ledger.AccountDirectory) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
		accounts:    accounts,
	}
}

// currentUser loads the authenticated account set by the auth
// middleware. Returns nil after writing the error response.
func currentUser(c *gin.Context, accounts ledger.AccountDirectory) *models.User {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return nil
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return nil
	}

	user, err := accounts.AccountByID(c.Request.Context(), userID)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return nil
	}
	if user == nil {
		utils.UnauthorizedResponse(c, "")
		return nil
	}
	return user
}

// POST /items
func (h *ItemHandler) Mint(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	actor := currentUser(c, h.accounts)
	if actor == nil {
		return
	}

	var req services.MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.itemService.Mint(c.Request.Context(), actor, &req)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyItemMinted),
		"item":        result.Item,
		"transaction": result.Transaction,
		"qr_payload":  result.QRPayload,
	})
}

// POST /items/:itemId/transfer
func (h *ItemHandler) Transfer(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	itemID := c.Param("itemId")

	actor := currentUser(c, h.accounts)
	if actor == nil {
		return
	}

	var req services.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	record, err := h.itemService.Transfer(c.Request.Context(), actor, itemID, &req)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyItemTransferred),
		"transaction": record,
	})
}

// GET /items/:itemId/history
func (h *ItemHandler) History(c *gin.Context) {
	itemID := c.Param("itemId")

	history, err := h.itemService.History(c.Request.Context(), itemID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	utils.SuccessResponse(c, history)
}

// GET /items/owned
func (h *ItemHandler) Owned(c *gin.Context) {
	actor := currentUser(c, h.accounts)
	if actor == nil {
		return
	}

	owned, err := h.itemService.Owned(c.Request.Context(), actor.ID)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"items": owned,
		"count": len(owned),
	})
}

// GET /items/:itemId/qr
func (h *ItemHandler) QRPayload(c *gin.Context) {
	itemID := c.Param("itemId")

	// The payload only makes sense for an item that exists.
	if _, err := h.itemService.History(c.Request.Context(), itemID); err != nil {
		respondLedgerError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"item_id":    itemID,
		"qr_payload": h.itemService.QRPayload(itemID),
	})
}

// POST /items/:itemId/certificate
func (h *ItemHandler) AttachCertificate(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	itemID := c.Param("itemId")

	actor := currentUser(c, h.accounts)
	if actor == nil {
		return
	}

	file, header, err := c.Request.FormFile("certificate")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "certificate"), err.Error())
		return
	}
	defer file.Close()

	item, err := h.itemService.AttachCertificate(c.Request.Context(), actor, itemID, file, header)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrItemNotFound),
			errors.Is(err, ledger.ErrNotMinted),
			errors.Is(err, ledger.ErrNotOwner):
			respondLedgerError(c, err)
		default:
			// Upload validation failures (size, file type).
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"item": item,
	})
}
