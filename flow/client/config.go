package client

import (
	"errors"
	"net/http"
)

// Config groups the process-wide collaborator settings. It is built once
// at process start and passed to NewSet; engine logic never reads ambient
// configuration.
type Config struct {
	// DraftingURL, ReviewURL and DeliveryURL are the collaborator
	// endpoints. All three are required.
	DraftingURL string
	ReviewURL   string
	DeliveryURL string

	// HTTPClient is shared by all three clients. Nil selects each
	// client's default timeout.
	HTTPClient *http.Client
}

// Set bundles one client per collaborator.
type Set struct {
	Drafting Drafting
	Review   Review
	Delivery Delivery
}

// NewSet builds the three HTTP collaborator clients from one Config.
func NewSet(cfg Config) (Set, error) {
	if cfg.DraftingURL == "" || cfg.ReviewURL == "" || cfg.DeliveryURL == "" {
		return Set{}, errors.New("drafting, review and delivery URLs are all required")
	}
	return Set{
		Drafting: NewHTTPDrafting(cfg.DraftingURL, cfg.HTTPClient),
		Review:   NewHTTPReview(cfg.ReviewURL, cfg.HTTPClient),
		Delivery: NewHTTPDelivery(cfg.DeliveryURL, cfg.HTTPClient),
	}, nil
}
