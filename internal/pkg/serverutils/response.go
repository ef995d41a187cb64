package serverutils

type BaseResponse[T any] struct {
	Success    bool              `json:"success"`
	Code       int               `json:"code"`
	Message    string            `json:"message"`
	Data       T                 `json:"data,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	RedirectTo string            `json:"redirect_to,omitempty"`
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Success: true,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) BaseResponse[any] {
	return BaseResponse[any]{
		Success: false,
		Code:    code,
		Message: message,
	}
}

// RedirectResponse is the JSON body for API requests the gate turns away.
func RedirectResponse(code int, message, redirectTo string) BaseResponse[any] {
	resp := ErrorResponse(code, message)
	resp.RedirectTo = redirectTo
	return resp
}
