package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// errBadRequest marks request decoding failures; the wrapped detail is safe
// to echo back to the client.
var errBadRequest = errors.New("bad request")

const maxBodyBytes = 1 << 20

// readBody drains and size-limits the request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(errBadRequest, "read body")
	}
	if len(data) == 0 {
		return nil, errors.Wrap(errBadRequest, "empty body")
	}
	return data, nil
}

type registerRequest struct {
	Title string
}

func decodeRegisterRequest(data []byte) (*registerRequest, error) {
	var req registerRequest
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "title":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "title")
			}
			req.Title = v
			return nil
		default:
			return errors.Errorf("unknown field %q", key)
		}
	}); err != nil {
		return nil, errors.Wrapf(errBadRequest, "decode register request: %s", err)
	}
	return &req, nil
}

type createOfferRequest struct {
	Title              string
	Description        string
	PriceCents         int64
	OriginalPriceCents int64
	QtyTotal           int
	ExpiresAt          time.Time
}

func decodeCreateOfferRequest(data []byte) (*createOfferRequest, error) {
	var req createOfferRequest
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "title":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "title")
			}
			req.Title = v
		case "description":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "description")
			}
			req.Description = v
		case "price_cents":
			v, err := d.Int64()
			if err != nil {
				return errors.Wrap(err, "price_cents")
			}
			req.PriceCents = v
		case "original_price_cents":
			if d.Next() == jx.Null {
				return d.Null()
			}
			v, err := d.Int64()
			if err != nil {
				return errors.Wrap(err, "original_price_cents")
			}
			req.OriginalPriceCents = v
		case "qty_total":
			v, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "qty_total")
			}
			req.QtyTotal = v
		case "expires_at":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "expires_at")
			}
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return errors.Wrap(err, "expires_at")
			}
			req.ExpiresAt = t
		default:
			return errors.Errorf("unknown field %q", key)
		}
		return nil
	}); err != nil {
		return nil, errors.Wrapf(errBadRequest, "decode offer request: %s", err)
	}
	if req.ExpiresAt.IsZero() {
		return nil, errors.Wrap(errBadRequest, "expires_at is required")
	}
	return &req, nil
}

type redeemRequest struct {
	Code string
}

func decodeRedeemRequest(data []byte) (*redeemRequest, error) {
	var req redeemRequest
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "code":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "code")
			}
			req.Code = v
			return nil
		default:
			return errors.Errorf("unknown field %q", key)
		}
	}); err != nil {
		return nil, errors.Wrapf(errBadRequest, "decode redeem request: %s", err)
	}
	if req.Code == "" {
		return nil, errors.Wrap(errBadRequest, "code is required")
	}
	return &req, nil
}
