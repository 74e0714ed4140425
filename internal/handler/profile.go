package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/gamestore/internal/domain/auth"
	"github.com/xenking/gamestore/internal/domain/wallet"
)

// getProfile returns the wallet, the latest purchases and the top-up
// presets.
func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	who, _ := auth.FromContext(ctx)

	p, err := h.svc.Wallets.Profile(ctx, who.UserID)
	if err != nil {
		return err
	}
	recent, err := h.svc.Ledger.Recent(ctx, who.UserID, 0)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		h.encodeWalletFields(e, p)
		e.FieldStart("username")
		e.Str(who.Username)
		e.FieldStart("transactions")
		encodeTransactions(e, recent)
		e.FieldStart("topUpPresets")
		e.ArrStart()
		for _, preset := range wallet.TopUpPresets {
			encodeMoney(e, preset)
		}
		e.ArrEnd()
		e.ObjEnd()
	})
	return nil
}

func (h *Handler) setAvatar(w http.ResponseWriter, r *http.Request) error {
	who, _ := auth.FromContext(r.Context())
	var req avatarRequest
	if err := h.readJSON(r, &req); err != nil {
		return err
	}

	p, err := h.svc.Wallets.SetAvatar(r.Context(), who.UserID, req.Avatar)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		h.encodeWalletFields(e, p)
		e.ObjEnd()
	})
	return nil
}

func (h *Handler) topUp(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	who, _ := auth.FromContext(ctx)
	var req topUpRequest
	if err := h.readJSON(r, &req); err != nil {
		return err
	}

	balance, err := h.svc.Wallets.TopUp(ctx, who.UserID, req.Amount)
	if err != nil {
		return err
	}
	zctx.From(ctx).Info("Wallet topped up",
		zap.Int64("user_id", who.UserID),
		zap.String("amount", req.Amount.StringFixed(2)),
	)

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("balance")
		encodeMoney(e, balance)
		e.ObjEnd()
	})
	return nil
}

func (h *Handler) getLibrary(w http.ResponseWriter, r *http.Request) error {
	who, _ := auth.FromContext(r.Context())
	entries, err := h.svc.Library.List(r.Context(), who.UserID)
	if err != nil {
		return errors.Wrap(err, "list library")
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("items")
		e.ArrStart()
		for _, en := range entries {
			e.ObjStart()
			e.FieldStart("product")
			h.encodeProduct(e, en.Product)
			e.FieldStart("acquiredAt")
			encodeTime(e, en.AcquiredAt)
			e.ObjEnd()
		}
		e.ArrEnd()
		e.ObjEnd()
	})
	return nil
}

func (h *Handler) refund(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	who, _ := auth.FromContext(ctx)
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	res, err := h.svc.Checkout.Refund(ctx, who.UserID, id)
	if err != nil {
		return err
	}
	zctx.From(ctx).Info("Refund completed",
		zap.Int64("user_id", who.UserID),
		zap.Int64("transaction_id", id),
		zap.String("amount", res.Transaction.Price.StringFixed(2)),
	)

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("transaction")
		encodeTransaction(e, res.Transaction)
		e.FieldStart("balance")
		encodeMoney(e, res.Balance)
		e.ObjEnd()
	})
	return nil
}
