package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/gamestore/internal/domain/cart"
	"github.com/xenking/gamestore/internal/domain/catalog"
	"github.com/xenking/gamestore/internal/domain/checkout"
	"github.com/xenking/gamestore/internal/domain/ledger"
	"github.com/xenking/gamestore/internal/domain/review"
	"github.com/xenking/gamestore/internal/domain/wallet"
)

// badRequestError marks malformed input: undecodable bodies, failed
// validation, unparsable path values.
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return e.err.Error() }

func (e *badRequestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &badRequestError{err: err}
}

type apiError struct {
	status  int
	message string
}

// classify maps err to a status code and a user-visible message. Unknown
// errors become 500 with a generic message.
func classify(err error) apiError {
	var br *badRequestError
	switch {
	case errors.Is(err, ErrUnauthorized):
		return apiError{http.StatusUnauthorized, "unauthorized"}
	case errors.As(err, &br):
		return apiError{http.StatusBadRequest, br.Error()}

	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, ledger.ErrNotFound):
		return apiError{http.StatusNotFound, err.Error()}

	case errors.Is(err, cart.ErrForbidden),
		errors.Is(err, review.ErrNotOwned):
		return apiError{http.StatusForbidden, err.Error()}

	case errors.Is(err, wallet.ErrInsufficientFunds):
		return apiError{http.StatusPaymentRequired, err.Error()}

	case errors.Is(err, cart.ErrAlreadyOwned),
		errors.Is(err, cart.ErrAlreadyInCart):
		return apiError{http.StatusConflict, err.Error()}

	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, wallet.ErrInvalidAmount),
		errors.Is(err, review.ErrInvalidRating),
		errors.Is(err, review.ErrEmptyComment),
		errors.Is(err, catalog.ErrUnknownCategory):
		return apiError{http.StatusUnprocessableEntity, err.Error()}
	}
	return apiError{http.StatusInternalServerError, "internal error"}
}

// writeError renders err as {"code", "message"}; insufficient funds also
// carry the shortfall.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ae := classify(err)
	if ae.status == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
	}

	var ife *wallet.InsufficientFundsError
	hasShortfall := errors.As(err, &ife)

	writeJSON(w, ae.status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(ae.status)
		e.FieldStart("message")
		e.Str(ae.message)
		if hasShortfall {
			e.FieldStart("shortfall")
			encodeMoney(e, ife.Shortfall)
		}
		e.ObjEnd()
	})
}
