package tryon

import "time"

// Category partitions wardrobe items.
type Category string

const (
	CategoryTop    Category = "top"
	CategoryBottom Category = "bottom"
)

// Asset is a backend-confirmed image: the mannequin reference or one
// wardrobe item. Wardrobe assets carry an id and category; the mannequin is a
// per-user singleton and carries neither.
type Asset struct {
	ID         string    `json:"id,omitempty"`
	Category   Category  `json:"category,omitempty"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Mannequin is the singleton reference photo; both fields are nil when the
// user has none.
type Mannequin struct {
	URL        *string    `json:"url"`
	UploadedAt *time.Time `json:"uploadedAt"`
}

// UploadTicket is the ephemeral, single-use credential for one direct
// client-to-storage write. Valid for one confirm call; never persisted.
type UploadTicket struct {
	UploadURL string `json:"uploadUrl"`
	FilePath  string `json:"filePath"`
	ItemID    string `json:"itemId,omitempty"`
}

// Profile is the backend's record for the authenticated user.
type Profile struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	ProviderUID string    `json:"providerUid"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HealthStatus is the backend's unauthenticated liveness answer.
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
