package routes

const (
	Health = "/health"

	// Public listing reads.
	Listings    = "/api/v1/listings"
	ListingByID = "/api/v1/listings/{propertyID}"

	// Seller endpoints (authenticated).
	MyListings            = "/api/v1/my/listings"
	ListingImages         = "/api/v1/my/listings/{propertyID}/images"
	ListingRemovalRequest = "/api/v1/my/listings/{propertyID}/removal-request"
	ListingProgress       = "/api/v1/my/listings/{propertyID}/progress"

	// Admin moderation.
	AdminListings              = "/api/v1/admin/listings"
	AdminListingByID           = "/api/v1/admin/listings/{propertyID}"
	AdminListingApprove        = "/api/v1/admin/listings/{propertyID}/approve"
	AdminListingReject         = "/api/v1/admin/listings/{propertyID}/reject"
	AdminListingRequestInfo    = "/api/v1/admin/listings/{propertyID}/request-info"
	AdminListingRemove         = "/api/v1/admin/listings/{propertyID}/remove"
	AdminListingRestore        = "/api/v1/admin/listings/{propertyID}/restore"
	AdminListingRemovalApprove = "/api/v1/admin/listings/{propertyID}/removal/approve"
	AdminListingRemovalCancel  = "/api/v1/admin/listings/{propertyID}/removal/cancel"
	AdminListingProgress       = "/api/v1/admin/listings/{propertyID}/progress"

	// Transactions (admin-driven pipeline).
	Transactions             = "/api/v1/admin/transactions"
	TransactionByID          = "/api/v1/admin/transactions/{transactionID}"
	TransactionStage         = "/api/v1/admin/transactions/{transactionID}/stage"
	TransactionNotifications = "/api/v1/admin/transactions/{transactionID}/notifications"

	// Support tickets.
	Tickets        = "/api/v1/tickets"
	MyTickets      = "/api/v1/my/tickets"
	TicketByID     = "/api/v1/tickets/{ticketID}"
	TicketMessages = "/api/v1/tickets/{ticketID}/messages"
	TicketStatus   = "/api/v1/admin/tickets/{ticketID}/status"
	AdminTickets   = "/api/v1/admin/tickets"

	// Billing.
	BillingCheckout = "/api/v1/billing/checkout-session"
)
