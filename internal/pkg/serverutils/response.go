// FILE: internal/pkg/serverutils/response.go
package serverutils

// ApiResponse is the envelope every successful handler returns.
type ApiResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) ApiResponse[T] {
	return ApiResponse[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

type ApiError struct {
	Success bool         `json:"success"`
	Error   ApiErrorBody `json:"error"`
}

type ApiErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func ErrorResponse(code int, message string) ApiError {
	return ApiError{
		Success: false,
		Error: ApiErrorBody{
			Code:    code,
			Message: message,
		},
	}
}
