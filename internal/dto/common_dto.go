package dto

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	DB          string `json:"db"`
	Subscribers int    `json:"subscribers"`
	Reports     int    `json:"reports"`
}
