package handler

import (
	"context"
	"net/http"

	"tradejournal/src/model"
)

type tagLister interface {
	List(ctx context.Context) ([]model.Tag, error)
}

func ListTagsHandler(repo tagLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := repo.List(r.Context())
		if err != nil {
			writeRepoError(w, err, "ListTags")
			return
		}
		if tags == nil {
			tags = []model.Tag{}
		}
		writeJSON(w, http.StatusOK, tags)
	}
}
