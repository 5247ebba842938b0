package gate

// Route targets the gate redirects to. Defined here so every caller agrees on
// the exact paths.
const (
	RouteHome                = "/"
	RouteLogin               = "/auth/login"
	RouteApplicantOnboarding = "/onboarding/applicant"
	RouteCenterOnboarding    = "/onboarding/center"
)
