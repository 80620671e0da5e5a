package handler

const relaySuccessMessage = "POST request processed successfully"

// HealthResponse is returned by the root endpoint.
type HealthResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Method  string `json:"method"`
}

// RelayResponse wraps whatever the upstream client returned, completion or
// error string alike.
type RelayResponse struct {
	Received string `json:"received"`
	Message  string `json:"message"`
}

// ErrorResponse is returned when the inbound body is not a JSON object.
type ErrorResponse struct {
	Error string `json:"error"`
}
