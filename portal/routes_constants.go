package portal

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth routes
	RouteAuthPage     = "/"
	RouteAuthLogin    = "/auth/login"
	RouteAuthRegister = "/auth/register"
	RouteAuthLogout   = "/auth/logout"

	// Onboarding funnel pages
	RouteRegister = "/register"
	RouteUpload   = "/upload"
	RouteDeals    = "/deals"
	RouteLive     = "/live"

	// Actions
	RouteDealsPublish = "/deals/publish"

	// Admin console
	RouteAdminHome = "/admin"

	// Operational
	RouteHealthz = "/healthz"
	RouteMetrics = "/metrics"

	// Everything under /api is rewritten to the backend service.
	RouteAPIPrefix = "/api/"
)
