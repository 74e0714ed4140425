package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/gamestore/internal/domain/auth"
	"github.com/xenking/gamestore/internal/domain/catalog"
	"github.com/xenking/gamestore/internal/domain/review"
)

// listProducts serves the storefront listing: products filtered by the q
// and category query parameters, plus the active banner and featured
// product.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) error {
	l, err := h.svc.Catalog.Browse(r.Context(), catalog.BrowseRequest{
		Query:    r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("products")
		h.encodeProducts(e, l.Products)
		e.FieldStart("banner")
		h.encodeBanner(e, l.Banner)
		e.FieldStart("featured")
		if l.Featured != nil {
			h.encodeProduct(e, *l.Featured)
		} else {
			e.Null()
		}
		e.FieldStart("categories")
		e.ArrStart()
		for _, c := range catalog.Categories() {
			e.ObjStart()
			e.FieldStart("code")
			e.Str(string(c))
			e.FieldStart("label")
			e.Str(c.Label())
			e.ObjEnd()
		}
		e.ArrEnd()
		e.ObjEnd()
	})
	return nil
}

// getProduct serves the product detail page. Authenticated callers also get
// ownership and wishlist flags.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	p, err := h.svc.Catalog.Product(ctx, id)
	if err != nil {
		return err
	}
	reviews, err := h.svc.Reviews.List(ctx, id)
	if err != nil {
		return errors.Wrap(err, "list reviews")
	}

	var owned, wishlisted bool
	if who, ok := auth.FromContext(ctx); ok {
		if owned, err = h.svc.Library.Owns(ctx, who.UserID, id); err != nil {
			return errors.Wrap(err, "check ownership")
		}
		if wishlisted, err = h.svc.Wishlist.Contains(ctx, who.UserID, id); err != nil {
			return errors.Wrap(err, "check wishlist")
		}
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("product")
		h.encodeProduct(e, *p)
		e.FieldStart("reviews")
		e.ArrStart()
		for _, rv := range reviews {
			encodeReview(e, rv)
		}
		e.ArrEnd()
		e.FieldStart("owned")
		e.Bool(owned)
		e.FieldStart("wishlisted")
		e.Bool(wishlisted)
		e.ObjEnd()
	})
	return nil
}

func (h *Handler) createReview(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	who, _ := auth.FromContext(ctx)
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	var req reviewRequest
	if err := h.readJSON(r, &req); err != nil {
		return err
	}

	rv, err := h.svc.Reviews.Create(ctx, who, id, review.CreateRequest{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeReview(e, *rv)
	})
	return nil
}
