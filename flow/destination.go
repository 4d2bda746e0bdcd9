package flow

// Destination is the single place an authenticated partner should be.
type Destination int

const (
	Auth Destination = iota
	Register
	UploadAssets
	PublishDeals
	Live
	AdminHome
)

func (d Destination) String() string {
	switch d {
	case Auth:
		return "AUTH"
	case Register:
		return "REGISTER"
	case UploadAssets:
		return "UPLOAD_ASSETS"
	case PublishDeals:
		return "PUBLISH_DEALS"
	case Live:
		return "LIVE"
	case AdminHome:
		return "ADMIN_HOME"
	default:
		return "UNKNOWN"
	}
}

// State is the partner onboarding triple, recomputed from the backend on
// every resolution and never cached.
type State struct {
	HasRestaurant bool
	HasAssets     bool
	HasDeals      bool
}

// DestinationFor is the resolution table. First match wins; every reachable
// triple maps to exactly one destination.
func DestinationFor(s State) Destination {
	switch {
	case !s.HasRestaurant:
		return Register
	case !s.HasAssets:
		return UploadAssets
	case !s.HasDeals:
		return PublishDeals
	default:
		return Live
	}
}
