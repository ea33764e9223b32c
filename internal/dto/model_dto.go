package dto

type ModelResponse struct {
	Name string `json:"name"`
}
