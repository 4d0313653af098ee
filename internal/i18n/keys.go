// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAuthTokenExpired = "auth.token_expired"
	KeyAuthForbidden    = "auth.forbidden"

	// Profiles
	KeyProfileUpdated  = "profile.updated"
	KeyProfileNotFound = "profile.not_found"

	// Products
	KeyProductCreated        = "product.created"
	KeyProductDeleted        = "product.deleted"
	KeyProductNotFound       = "product.not_found"
	KeyProductApproved       = "product.approved"
	KeyProductRejected       = "product.rejected"
	KeyProductNoFile         = "product.no_file"
	KeySplitOverAllocated    = "product.split_over_allocated"
	KeyUnknownCollaborator   = "product.unknown_collaborator"
	KeySelfPurchaseForbidden = "product.self_purchase_forbidden"

	// Purchases
	KeyPurchaseSuccess  = "purchase.success"
	KeyPurchaseOwned    = "purchase.already_owned"
	KeyPurchaseRequired = "purchase.required"

	// Reviews
	KeyReviewCreated  = "review.created"
	KeyReviewExists   = "review.already_reviewed"
	KeyReviewRating   = "review.invalid_rating"
	KeyReviewNotFound = "review.not_found"

	// Blog
	KeyPostCreated  = "post.created"
	KeyPostUpdated  = "post.updated"
	KeyPostDeleted  = "post.deleted"
	KeyPostNotFound = "post.not_found"

	// Admin
	KeyAdminAccessDenied    = "admin.access_denied"
	KeyAdminSettingsUpdated = "admin.settings_updated"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// System
	KeySystemError       = "system.error"
	KeySystemRateLimited = "system.rate_limited"
)
