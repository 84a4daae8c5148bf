// File: internal/dtos/response.go
package dtos

// SuccessResponse represents a successful API response
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// CreateSuccessResponse creates a standard success response
func CreateSuccessResponse(data interface{}, message string) SuccessResponse {
	return SuccessResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
}

// CreateErrorResponse creates a standard error response
func CreateErrorResponse(error string, details []string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error:   error,
		Details: details,
	}
}
