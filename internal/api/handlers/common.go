package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"tradebots/internal/api/response"
	"tradebots/internal/service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxBodySize - ограничение размера тела запроса (1MB)
const maxBodySize = 1 << 20

var (
	errInvalidBody = errors.New("invalid request body")
	errInvalidID   = errors.New("invalid id")

	nullBody = []byte("null")
)

// decodeJSON читает тело запроса в dst. Пустое тело и литерал null - ошибки.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}

	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		return fmt.Errorf("%w: empty body", errInvalidBody)
	case bytes.Equal(data, nullBody):
		return fmt.Errorf("%w: null body", errInvalidBody)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

// pathID достает {id} из пути. Формат гарантирует маршрут ([0-9]+),
// здесь остается только переполнение int.
func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return 0, errInvalidID
	}
	return id, nil
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	response.JSON(w, status, payload)
}

func respondBadRequest(w http.ResponseWriter) {
	response.Error(w, http.StatusBadRequest, response.MessageBadRequest)
}

func respondInternalError(w http.ResponseWriter) {
	response.Error(w, http.StatusInternalServerError, response.MessageInternalError)
}

// logMutationError: ожидаемые отказы (ErrBadRequest, невалидное тело) - warn,
// прочее - error
func logMutationError(logger *zap.Logger, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if errors.Is(err, service.ErrBadRequest) || errors.Is(err, errInvalidBody) {
		logger.Warn(msg, fields...)
		return
	}
	logger.Error(msg, fields...)
}
