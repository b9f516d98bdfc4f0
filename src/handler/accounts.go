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

type accountStore interface {
	Create(ctx context.Context, account *model.Account) error
	List(ctx context.Context) ([]model.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	Update(ctx context.Context, account *model.Account) error
	Delete(ctx context.Context, id uuid.UUID) error
}

func ListAccountsHandler(repo accountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := repo.List(r.Context())
		if err != nil {
			writeRepoError(w, err, "ListAccounts")
			return
		}
		if accounts == nil {
			accounts = []model.Account{}
		}
		writeJSON(w, http.StatusOK, accounts)
	}
}

func CreateAccountHandler(repo accountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload model.AccountPayload
		if err := decodeJSON(r, &payload); err != nil {
			logger.WithError(err).Warn("invalid account payload")
			writeError(w, http.StatusBadRequest, "Invalid payload")
			return
		}
		if err := payload.Validate(); err != nil {
			writeRepoError(w, err, "CreateAccount")
			return
		}

		account := payload.ToAccount()
		if err := repo.Create(r.Context(), account); err != nil {
			writeRepoError(w, err, "CreateAccount")
			return
		}
		writeJSON(w, http.StatusCreated, account)
	}
}

func GetAccountHandler(repo accountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		account, err := repo.FindByID(r.Context(), id)
		if err != nil {
			writeRepoError(w, err, "GetAccount")
			return
		}
		if account == nil {
			writeError(w, http.StatusNotFound, "Account not found")
			return
		}
		writeJSON(w, http.StatusOK, account)
	}
}

func UpdateAccountHandler(repo accountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}

		var payload model.AccountUpdatePayload
		if err := decodeJSON(r, &payload); err != nil {
			logger.WithError(err).Warn("invalid account update payload")
			writeError(w, http.StatusBadRequest, "Invalid payload")
			return
		}
		if err := payload.Validate(); err != nil {
			writeRepoError(w, err, "UpdateAccount")
			return
		}

		account, err := repo.FindByID(r.Context(), id)
		if err != nil {
			writeRepoError(w, err, "UpdateAccount")
			return
		}
		if account == nil {
			writeError(w, http.StatusNotFound, "Account not found")
			return
		}

		payload.Apply(account)
		if err := repo.Update(r.Context(), account); err != nil {
			writeRepoError(w, err, "UpdateAccount")
			return
		}
		writeJSON(w, http.StatusOK, account)
	}
}

func DeleteAccountHandler(repo accountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		if err := repo.Delete(r.Context(), id); err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				writeError(w, http.StatusNotFound, "Account not found")
				return
			}
			writeRepoError(w, err, "DeleteAccount")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
