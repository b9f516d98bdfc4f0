package handler

import (
	"context"
	"errors"
	"net/http"

	"tradejournal/src/model"
	"tradejournal/src/repository"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
)

type strategyStore interface {
	Create(ctx context.Context, strategy *model.Strategy) error
	List(ctx context.Context) ([]model.Strategy, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Strategy, error)
	Update(ctx context.Context, strategy *model.Strategy) error
	Delete(ctx context.Context, id uuid.UUID) error
}

func ListStrategiesHandler(repo strategyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		strategies, err := repo.List(r.Context())
		if err != nil {
			writeRepoError(w, err, "ListStrategies")
			return
		}
		if strategies == nil {
			strategies = []model.Strategy{}
		}
		writeJSON(w, http.StatusOK, strategies)
	}
}

func CreateStrategyHandler(repo strategyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload model.StrategyPayload
		if err := decodeJSON(r, &payload); err != nil {
			logger.WithError(err).Warn("invalid strategy payload")
			writeError(w, http.StatusBadRequest, "Invalid payload")
			return
		}
		if err := payload.Validate(); err != nil {
			writeRepoError(w, err, "CreateStrategy")
			return
		}

		strategy := payload.ToStrategy()
		if err := repo.Create(r.Context(), strategy); err != nil {
			writeRepoError(w, err, "CreateStrategy")
			return
		}
		writeJSON(w, http.StatusCreated, strategy)
	}
}

func GetStrategyHandler(repo strategyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		strategy, err := repo.FindByID(r.Context(), id)
		if err != nil {
			writeRepoError(w, err, "GetStrategy")
			return
		}
		if strategy == nil {
			writeError(w, http.StatusNotFound, "Strategy not found")
			return
		}
		writeJSON(w, http.StatusOK, strategy)
	}
}

func UpdateStrategyHandler(repo strategyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}

		var payload model.StrategyUpdatePayload
		if err := decodeJSON(r, &payload); err != nil {
			logger.WithError(err).Warn("invalid strategy update payload")
			writeError(w, http.StatusBadRequest, "Invalid payload")
			return
		}
		if err := payload.Validate(); err != nil {
			writeRepoError(w, err, "UpdateStrategy")
			return
		}

		strategy, err := repo.FindByID(r.Context(), id)
		if err != nil {
			writeRepoError(w, err, "UpdateStrategy")
			return
		}
		if strategy == nil {
			writeError(w, http.StatusNotFound, "Strategy not found")
			return
		}

		payload.Apply(strategy)
		if err := repo.Update(r.Context(), strategy); err != nil {
			writeRepoError(w, err, "UpdateStrategy")
			return
		}
		writeJSON(w, http.StatusOK, strategy)
	}
}

func DeleteStrategyHandler(repo strategyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		if err := repo.Delete(r.Context(), id); err != nil {
			if errors.Is(err, repository.ErrStrategyNotFound) {
				writeError(w, http.StatusNotFound, "Strategy not found")
				return
			}
			writeRepoError(w, err, "DeleteStrategy")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
