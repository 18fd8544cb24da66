package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nikhilarsid/review-service/internal/domain"
	apperrors "github.com/nikhilarsid/review-service/pkg/errors"
)

const (
	opCreate   = "create"
	opUpdate   = "update"
	opDelete   = "delete"
	opList     = "list"
	opListMine = "list_mine"
	opGet      = "get"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_operations_total",
			Help: "Review operations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_list_cache_lookups_total",
			Help: "Review list cache lookups by result.",
		},
		[]string{"result"},
	)
)

func observe(op string, err *error) {
	operationsTotal.WithLabelValues(op, outcome(*err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrCatalogUnavailable):
		return "unavailable"
	case errors.Is(err, apperrors.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return "unauthenticated"
	case errors.Is(err, domain.ErrNotReviewAuthor):
		return "forbidden"
	case errors.Is(err, domain.ErrReviewNotFound), errors.Is(err, domain.ErrProductNotFound):
		return "not_found"
	default:
		return "error"
	}
}
