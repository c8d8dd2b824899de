package response

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorResponse - единый формат ответа об ошибке
//
//	{"success": false, "error": 401, "message": "Token expired.", "code": "token_expired"}
//
// code заполняется только для ошибок авторизации.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   int    `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Стандартные сообщения
const (
	MessageBadRequest       = "bad request"
	MessageNotFound         = "resource not found"
	MessageMethodNotAllowed = "method not allowed"
	MessageInternalError    = "server error"
	MessageUnauthorized     = "not authorized"
	MessageForbidden        = "forbidden"
)

// JSON пишет payload с указанным статусом
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":500,"message":"server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// Error пишет конверт ошибки без кода
func Error(w http.ResponseWriter, status int, message string) {
	ErrorWithCode(w, status, message, "")
}

// ErrorWithCode пишет конверт ошибки с машинным кодом
func ErrorWithCode(w http.ResponseWriter, status int, message, code string) {
	JSON(w, status, &ErrorResponse{
		Success: false,
		Error:   status,
		Message: message,
		Code:    code,
	})
}

// NotFound - обработчик для неизвестных путей (router.NotFoundHandler)
func NotFound(w http.ResponseWriter, r *http.Request) {
	Error(w, http.StatusNotFound, MessageNotFound)
}

// MethodNotAllowed - обработчик для router.MethodNotAllowedHandler
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Error(w, http.StatusMethodNotAllowed, MessageMethodNotAllowed)
}
