package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/gamestore/internal/domain/auth"
)

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) error {
	who, _ := auth.FromContext(r.Context())
	c, err := h.svc.Carts.View(r.Context(), who.UserID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		h.encodeCart(e, c)
	})
	return nil
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) error {
	who, _ := auth.FromContext(r.Context())
	var req addItemRequest
	if err := h.readJSON(r, &req); err != nil {
		return err
	}

	item, err := h.svc.Carts.AddItem(r.Context(), who.UserID, req.ProductID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		h.encodeCartItem(e, *item)
	})
	return nil
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) error {
	who, _ := auth.FromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Carts.RemoveItem(r.Context(), who.UserID, id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	who, _ := auth.FromContext(ctx)

	receipt, err := h.svc.Checkout.Checkout(ctx, who.UserID)
	if err != nil {
		return err
	}
	zctx.From(ctx).Info("Checkout completed",
		zap.Int64("user_id", who.UserID),
		zap.String("total", receipt.Total.StringFixed(2)),
		zap.Int("items", len(receipt.Transactions)),
	)

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("total")
		encodeMoney(e, receipt.Total)
		e.FieldStart("balance")
		encodeMoney(e, receipt.Balance)
		e.FieldStart("transactions")
		encodeTransactions(e, receipt.Transactions)
		e.ObjEnd()
	})
	return nil
}
