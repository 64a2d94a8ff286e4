// internal/i18n/keys.go
package i18n

// Translation keys used across handlers and middleware.
const (
	// Auth
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAuthTokenExpired = "auth.token_expired"
	KeyAuthInvalidLogin = "auth.invalid_login"
	KeyAuthRegistered   = "auth.registered"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Items and transfers
	KeyItemMinted        = "item.minted"
	KeyItemNotFound      = "item.not_found"
	KeyItemTransferred   = "item.transferred"
	KeyItemNotOwner      = "item.not_owner"
	KeyItemAlreadyMinted = "item.already_minted"
	KeyItemConflict      = "item.conflict"
	KeyItemSelfTransfer  = "item.self_transfer"

	// Accounts
	KeyAccountNotFound   = "account.not_found"
	KeyAccountUnverified = "account.unverified"
	KeyAccountVerified   = "account.verified"
)
