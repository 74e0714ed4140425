package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/gamestore/internal/domain/auth"
)

func (h *Handler) getWishlist(w http.ResponseWriter, r *http.Request) error {
	who, _ := auth.FromContext(r.Context())
	entries, err := h.svc.Wishlist.List(r.Context(), who.UserID)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("items")
		e.ArrStart()
		for _, en := range entries {
			e.ObjStart()
			e.FieldStart("product")
			h.encodeProduct(e, en.Product)
			e.FieldStart("addedAt")
			encodeTime(e, en.AddedAt)
			e.ObjEnd()
		}
		e.ArrEnd()
		e.ObjEnd()
	})
	return nil
}

func (h *Handler) addToWishlist(w http.ResponseWriter, r *http.Request) error {
	who, _ := auth.FromContext(r.Context())
	id, err := pathID(r, "productId")
	if err != nil {
		return err
	}
	if err := h.svc.Wishlist.Add(r.Context(), who.UserID, id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) removeFromWishlist(w http.ResponseWriter, r *http.Request) error {
	who, _ := auth.FromContext(r.Context())
	id, err := pathID(r, "productId")
	if err != nil {
		return err
	}
	if err := h.svc.Wishlist.Remove(r.Context(), who.UserID, id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
