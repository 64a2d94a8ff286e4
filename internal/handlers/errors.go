// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/authentrace/provenance-backend/internal/i18n"
	"github.com/authentrace/provenance-backend/internal/ledger"
	"github.com/authentrace/provenance-backend/internal/utils"
)

// respondLedgerError translates the ledger error taxonomy into HTTP
// responses. Anything it does not recognize is a 500.
func respondLedgerError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	switch {
	case errors.Is(err, ledger.ErrNotMinted), errors.Is(err, ledger.ErrItemNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "ITEM_NOT_FOUND",
			i18n.T(lang, i18n.KeyItemNotFound), nil)

	case errors.Is(err, ledger.ErrAlreadyMinted):
		utils.ErrorResponse(c, http.StatusConflict, "ALREADY_MINTED",
			i18n.T(lang, i18n.KeyItemAlreadyMinted), nil)

	case errors.Is(err, ledger.ErrNotOwner):
		utils.ErrorResponse(c, http.StatusForbidden, "NOT_OWNER",
			i18n.T(lang, i18n.KeyItemNotOwner), nil)

	case errors.Is(err, ledger.ErrUnverifiedManufacturer):
		utils.ErrorResponse(c, http.StatusForbidden, "UNVERIFIED_MANUFACTURER",
			i18n.T(lang, i18n.KeyAccountUnverified), nil)

	case errors.Is(err, ledger.ErrUnknownTargetAccount):
		utils.ErrorResponse(c, http.StatusNotFound, "UNKNOWN_TARGET_ACCOUNT",
			i18n.T(lang, i18n.KeyAccountNotFound), nil)

	case errors.Is(err, ledger.ErrSelfTransfer):
		utils.ErrorResponse(c, http.StatusBadRequest, "SELF_TRANSFER",
			i18n.T(lang, i18n.KeyItemSelfTransfer), nil)

	case errors.Is(err, ledger.ErrDuplicateTransaction):
		utils.ErrorResponse(c, http.StatusConflict, "DUPLICATE_TRANSACTION",
			i18n.T(lang, i18n.KeyItemConflict), nil)

	case errors.Is(err, ledger.ErrConcurrentModification):
		utils.ErrorResponse(c, http.StatusConflict, "CONCURRENT_MODIFICATION",
			i18n.T(lang, i18n.KeyItemConflict), nil)

	default:
		utils.InternalErrorResponse(c, "")
	}
}
