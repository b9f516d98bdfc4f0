package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"tradejournal/src/model"
	"tradejournal/src/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type errorResponse struct {
	Detail interface{} `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, detail interface{}) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeRepoError maps store and validation errors onto HTTP statuses.
// Unknown references in a trade body are a validation problem, not a 404.
func writeRepoError(w http.ResponseWriter, err error, op string) {
	var validation model.ValidationErrors
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusUnprocessableEntity, validation)
	case errors.Is(err, repository.ErrTradeNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrStrategyNotFound), errors.Is(err, repository.ErrAccountNotFound):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, repository.ErrStrategyInUse), errors.Is(err, repository.ErrAccountInUse):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, gorm.ErrDuplicatedKey):
		writeError(w, http.StatusConflict, "a record with this name already exists")
	default:
		logger.WithField("op", op).WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// decodeJSON strictly decodes the request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// idParam reads the {id} route parameter. It writes a 400 and returns false
// when the id is not a uuid.
func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
