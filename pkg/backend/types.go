package backend

import "time"

// API paths, relative to the base URL.
const (
	PathTeamTree       = "/api/v1/user/team/tree"
	PathPlacementQueue = "/api/v1/user/team/placement-queue"
	PathPlace          = "/api/v1/user/team/place"
)

// PendingUser is a recruit waiting to be placed in the sponsor's downline.
type PendingUser struct {
	UserID       string    `json:"userId"`
	FullName     string    `json:"fullName"`
	PackageValue float64   `json:"packageUSD"`
	SponsorID    string    `json:"sponsorId,omitempty"`
	JoinedAt     time.Time `json:"createdAt,omitzero"`
}

// PlacementRequest asks the backend to place NewUserID under
// PlacementParentID.
type PlacementRequest struct {
	NewUserID         string `json:"newUserId"`
	PlacementParentID string `json:"placementParentId"`
}

// PlacementResult is the backend's acknowledgement of a placement.
type PlacementResult struct {
	Message string `json:"message"`
}

// errorBody is the backend's error envelope. Both spellings occur.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}
