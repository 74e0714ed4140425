package main

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/gamestore/db"
	"github.com/xenking/gamestore/internal/domain/auth"
	"github.com/xenking/gamestore/internal/domain/catalog"
)

// seedFile is the decoded seed input.
type seedFile struct {
	Products []catalog.Product
	Banners  []catalog.Banner
}

// loadSeed decodes path, or the embedded catalog when path is empty.
func loadSeed(path string) (*seedFile, error) {
	if path == "" {
		return decodeSeed(bytes.NewReader(db.Catalog))
	}
	f, err := openSeed(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return decodeSeed(f)
}

// openSeed opens path, transparently decompressing .gz files.
func openSeed(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := pgzip.NewReader(bufio.NewReader(f))
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "gzip")
	}
	return &gzipFile{Reader: zr, f: f}, nil
}

type gzipFile struct {
	*pgzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	zerr := g.Reader.Close()
	if err := g.f.Close(); err != nil {
		return err
	}
	return zerr
}

// decodeSeed parses {"products": [...], "banners": [...]}.
func decodeSeed(r io.Reader) (*seedFile, error) {
	var out seedFile
	d := jx.Decode(r, 4096)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "products":
			return d.Arr(func(d *jx.Decoder) error {
				p, err := decodeProduct(d)
				if err != nil {
					return errors.Wrapf(err, "product %d", len(out.Products))
				}
				out.Products = append(out.Products, p)
				return nil
			})
		case "banners":
			return d.Arr(func(d *jx.Decoder) error {
				b, err := decodeBanner(d)
				if err != nil {
					return errors.Wrapf(err, "banner %d", len(out.Banners))
				}
				out.Banners = append(out.Banners, b)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode seed")
	}
	return &out, nil
}

func decodeProduct(d *jx.Decoder) (catalog.Product, error) {
	p := catalog.Product{Active: true}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			p.Name, err = d.Str()
		case "description":
			p.Description, err = d.Str()
		case "price":
			var raw string
			if d.Next() == jx.String {
				raw, err = d.Str()
			} else {
				var n jx.Num
				n, err = d.Num()
				raw = n.String()
			}
			if err != nil {
				return errors.Wrap(err, key)
			}
			if p.Price, err = decimal.NewFromString(raw); err != nil {
				return errors.Wrap(err, key)
			}
		case "category":
			var s string
			if s, err = d.Str(); err != nil {
				return err
			}
			p.Category, err = catalog.ParseCategory(s)
		case "image":
			p.ImageURL, err = d.Str()
		case "active":
			p.Active, err = d.Bool()
		case "featured":
			p.Featured, err = d.Bool()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	if err != nil {
		return p, err
	}
	if p.Name == "" {
		return p, errors.New("name is required")
	}
	if p.Price.IsNegative() {
		return p, errors.Errorf("negative price %s", p.Price)
	}
	p.Price = p.Price.Round(2)
	return p, nil
}

func decodeBanner(d *jx.Decoder) (catalog.Banner, error) {
	b := catalog.Banner{Active: true}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "title":
			b.Title, err = d.Str()
		case "image":
			b.ImageURL, err = d.Str()
		case "active":
			b.Active, err = d.Bool()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	if err != nil {
		return b, err
	}
	if b.Title == "" {
		return b, errors.New("title is required")
	}
	return b, nil
}

// keySpec is a -key flag value of the form "secret:userID:username".
type keySpec struct {
	Secret   string
	UserID   int64
	Username string
}

func parseKeySpec(s string) (keySpec, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return keySpec{}, errors.Errorf("key %q: want secret:userID:username", s)
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return keySpec{}, errors.Wrapf(err, "key %q: user id", s)
	}
	if id <= 0 {
		return keySpec{}, errors.Errorf("key %q: user id must be positive", s)
	}
	return keySpec{Secret: parts[0], UserID: id, Username: parts[2]}, nil
}

func (k keySpec) info(pepper []byte) auth.APIKeyInfo {
	return auth.APIKeyInfo{
		KeyHash:  auth.HashKey(pepper, k.Secret),
		Name:     k.Username + " seed key",
		UserID:   k.UserID,
		Username: k.Username,
	}
}
