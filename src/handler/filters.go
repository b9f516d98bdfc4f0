package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tradejournal/src/model"
	"tradejournal/src/repository"
	"tradejournal/src/utils"

	"github.com/google/uuid"
)

// parseTradeFilters reads the shared trade filter set from the query string:
// symbol, strategy_id, account_id, session, direction, start_date, end_date.
// A bare YYYY-MM-DD end_date covers the whole day.
func parseTradeFilters(r *http.Request) (repository.TradeSearchOptions, error) {
	q := r.URL.Query()
	var opts repository.TradeSearchOptions

	if v := strings.TrimSpace(q.Get("symbol")); v != "" {
		symbol := utils.NormalizeSymbol(v)
		opts.Symbol = &symbol
	}
	for _, f := range []struct {
		name string
		dst  **uuid.UUID
	}{
		{"strategy_id", &opts.StrategyID},
		{"account_id", &opts.AccountID},
	} {
		if v := q.Get(f.name); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				return opts, fmt.Errorf("invalid %s", f.name)
			}
			*f.dst = &id
		}
	}
	if v := q.Get("session"); v != "" {
		s := model.TradeSession(v)
		if !s.Valid() {
			return opts, fmt.Errorf("invalid session")
		}
		opts.Session = &s
	}
	if v := q.Get("direction"); v != "" {
		d := model.Direction(v)
		if !d.Valid() {
			return opts, fmt.Errorf("invalid direction")
		}
		opts.Direction = &d
	}
	if v := q.Get("start_date"); v != "" {
		t, _, err := parseDateParam(v)
		if err != nil {
			return opts, fmt.Errorf("invalid start_date")
		}
		opts.StartDate = &t
	}
	if v := q.Get("end_date"); v != "" {
		t, dayOnly, err := parseDateParam(v)
		if err != nil {
			return opts, fmt.Errorf("invalid end_date")
		}
		if dayOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		opts.EndDate = &t
	}
	return opts, nil
}

func parseDateParam(v string) (time.Time, bool, error) {
	if t, err := time.Parse(utils.DayLayout, v); err == nil {
		return t, true, nil
	}
	t, err := model.ParseTimestamp(v)
	return t, false, err
}

// parsePagination reads page and per_page, applying the configured bounds.
func parsePagination(r *http.Request, cfg Config) (page, perPage int, err error) {
	page, perPage = 1, cfg.DefaultPageSize
	if v := r.URL.Query().Get("page"); v != "" {
		page, err = strconv.Atoi(v)
		if err != nil || page <= 0 {
			return 0, 0, fmt.Errorf("invalid page")
		}
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		perPage, err = strconv.Atoi(v)
		if err != nil || perPage <= 0 {
			return 0, 0, fmt.Errorf("invalid per_page")
		}
	}
	if perPage > cfg.MaxPageSize {
		perPage = cfg.MaxPageSize
	}
	return page, perPage, nil
}
