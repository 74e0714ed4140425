package handler

import (
	"github.com/go-faster/jx"

	"github.com/xenking/gamestore/internal/domain/cart"
	"github.com/xenking/gamestore/internal/domain/catalog"
	"github.com/xenking/gamestore/internal/domain/ledger"
	"github.com/xenking/gamestore/internal/domain/review"
	"github.com/xenking/gamestore/internal/domain/wallet"
)

func (h *Handler) encodeProduct(e *jx.Encoder, p catalog.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("description")
	e.Str(p.Description)
	e.FieldStart("price")
	encodeMoney(e, p.Price)
	e.FieldStart("category")
	e.Str(string(p.Category))
	e.FieldStart("categoryLabel")
	e.Str(p.Category.Label())
	e.FieldStart("image")
	e.Str(h.imageURL(p.ImageURL))
	e.FieldStart("featured")
	e.Bool(p.Featured)
	e.ObjEnd()
}

func (h *Handler) encodeProducts(e *jx.Encoder, products []catalog.Product) {
	e.ArrStart()
	for _, p := range products {
		h.encodeProduct(e, p)
	}
	e.ArrEnd()
}

func (h *Handler) encodeBanner(e *jx.Encoder, b *catalog.Banner) {
	if b == nil {
		e.Null()
		return
	}
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(b.ID)
	e.FieldStart("title")
	e.Str(b.Title)
	e.FieldStart("image")
	e.Str(h.imageURL(b.ImageURL))
	e.ObjEnd()
}

func (h *Handler) encodeCartItem(e *jx.Encoder, it cart.Item) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(it.ID)
	e.FieldStart("product")
	h.encodeProduct(e, it.Product)
	e.FieldStart("quantity")
	e.Int(it.Quantity)
	e.FieldStart("subtotal")
	encodeMoney(e, it.Subtotal())
	e.ObjEnd()
}

func (h *Handler) encodeCart(e *jx.Encoder, c *cart.Cart) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(c.ID)
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range c.Items {
		h.encodeCartItem(e, it)
	}
	e.ArrEnd()
	e.FieldStart("total")
	encodeMoney(e, c.Total())
	e.ObjEnd()
}

func encodeTransaction(e *jx.Encoder, t ledger.Transaction) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(t.ID)
	e.FieldStart("productId")
	e.Int64(t.ProductID)
	e.FieldStart("productName")
	e.Str(t.ProductName)
	e.FieldStart("price")
	encodeMoney(e, t.Price)
	e.FieldStart("createdAt")
	encodeTime(e, t.CreatedAt)
	e.ObjEnd()
}

func encodeTransactions(e *jx.Encoder, txs []ledger.Transaction) {
	e.ArrStart()
	for _, t := range txs {
		encodeTransaction(e, t)
	}
	e.ArrEnd()
}

func encodeReview(e *jx.Encoder, r review.Review) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(r.ID)
	e.FieldStart("productId")
	e.Int64(r.ProductID)
	e.FieldStart("username")
	e.Str(r.Username)
	e.FieldStart("rating")
	e.Int(r.Rating)
	e.FieldStart("comment")
	e.Str(r.Comment)
	e.FieldStart("createdAt")
	encodeTime(e, r.CreatedAt)
	e.ObjEnd()
}

// encodeWalletFields writes the wallet fields into an open object.
func (h *Handler) encodeWalletFields(e *jx.Encoder, p *wallet.Profile) {
	e.FieldStart("userId")
	e.Int64(p.UserID)
	e.FieldStart("balance")
	encodeMoney(e, p.Balance)
	e.FieldStart("avatar")
	e.Str(h.imageURL(p.AvatarURL))
}
