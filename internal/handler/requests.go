package handler

import (
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

type addItemRequest struct {
	ProductID int64 `validate:"required,gt=0"`
}

func (req *addItemRequest) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "productId":
			v, err := d.Int64()
			req.ProductID = v
			return err
		default:
			return d.Skip()
		}
	})
}

type topUpRequest struct {
	Amount decimal.Decimal
}

func (req *topUpRequest) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "amount":
			v, err := decodeMoney(d)
			req.Amount = v
			return err
		default:
			return d.Skip()
		}
	})
}

type avatarRequest struct {
	Avatar string `validate:"required,max=512"`
}

func (req *avatarRequest) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "avatar":
			v, err := d.Str()
			req.Avatar = v
			return err
		default:
			return d.Skip()
		}
	})
}

type reviewRequest struct {
	Rating  int
	Comment string `validate:"max=4000"`
}

func (req *reviewRequest) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "rating":
			v, err := d.Int()
			req.Rating = v
			return err
		case "comment":
			v, err := d.Str()
			req.Comment = v
			return err
		default:
			return d.Skip()
		}
	})
}
