package dtos

type ConfirmationResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
