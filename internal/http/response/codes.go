package response

import "net/http"

const (
	CodeBadRequest         = http.StatusBadRequest
	CodeNotFound           = http.StatusNotFound
	CodeTooManyRequests    = http.StatusTooManyRequests
	CodeInternal           = http.StatusInternalServerError
	CodeServiceUnavailable = http.StatusServiceUnavailable
)
