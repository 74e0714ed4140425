package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const maxBodySize = 1 << 20

// decoder is implemented by request bodies.
type decoder interface {
	Decode(d *jx.Decoder) error
}

// readJSON decodes the request body into v and validates its struct tags.
func (h *Handler) readJSON(r *http.Request, v decoder) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return badRequest(errors.Wrap(err, "read body"))
	}
	if len(body) > maxBodySize {
		return badRequest(errors.New("request body too large"))
	}
	if len(body) == 0 {
		return badRequest(errors.New("request body cannot be empty"))
	}
	if err := v.Decode(jx.DecodeBytes(body)); err != nil {
		return badRequest(errors.Wrap(err, "invalid JSON"))
	}
	if err := h.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return badRequest(errors.Errorf("field %s failed %s validation", fe.Field(), fe.Tag()))
		}
		return badRequest(errors.Wrap(err, "validation"))
	}
	return nil
}

// writeJSON encodes a response body with fn and writes it with status.
func writeJSON(w http.ResponseWriter, status int, fn func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	fn(e)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest(errors.Errorf("invalid %s %q", name, raw))
	}
	return id, nil
}

// encodeMoney writes d as a JSON number with two decimals.
func encodeMoney(e *jx.Encoder, d decimal.Decimal) {
	e.Raw([]byte(d.StringFixed(2)))
}

func encodeTime(e *jx.Encoder, t time.Time) {
	e.Str(t.UTC().Format(time.RFC3339))
}

// decodeMoney accepts a JSON number or a numeric string.
func decodeMoney(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	case jx.Number:
		raw, err := d.Raw()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(raw.String())
	default:
		return decimal.Zero, errors.New("amount must be a number")
	}
}
