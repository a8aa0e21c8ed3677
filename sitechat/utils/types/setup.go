// sitechat/utils/types/setup.go
package types

// SetupRequest is the setup form posted to "/".
type SetupRequest struct {
	WebsiteURL  string `json:"website_url"`
	APIKey      string `json:"api_key"`
	APIProvider string `json:"api_provider"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}
