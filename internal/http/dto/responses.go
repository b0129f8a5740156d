package dto

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

// PagedData wraps a list payload with the unpaged total.
type PagedData struct {
	Items  any `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type CSRFTokenResponse struct {
	Token string `json:"token"`
}

type PasswordResetResponse struct {
	Message string `json:"message"`
	// Token is populated outside production only, where no mail
	// delivery is wired up.
	Token string `json:"token,omitempty"`
}
