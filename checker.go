package fencer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// ValidatedAddressKey is the KV key of the last address found inside a polygon.
const ValidatedAddressKey = "validatedAddress"

// Geocoder resolves a free-text address into a point. It returns
// ErrAddressNotFound when the address yields no result.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Point, error)
}

type Outcome int

const (
	EmptyAddress Outcome = iota + 1
	AddressNotFound
	Inside
	Outside
	Failed
)

func (o Outcome) String() string {
	switch o {
	case EmptyAddress:
		return "Please enter an address."
	case AddressNotFound:
		return "Address not found"
	case Inside:
		return "Address inside the polygon"
	case Outside:
		return "Address outside the polygon"
	case Failed:
		return "Something went wrong"
	default:
		return "unknown outcome"
	}
}

type Verdict struct {
	Outcome   Outcome
	Address   string
	Point     Point
	PolygonID PolygonID
	Err       error
}

func (v Verdict) Message() string {
	return v.Outcome.String()
}

// ValidatedAddress is the record remembered after a successful check.
type ValidatedAddress struct {
	Address string  `msgpack:"address"`
	Lng     float64 `msgpack:"lng"`
	Lat     float64 `msgpack:"lat"`
}

func (va ValidatedAddress) Point() Point {
	return NewPoint(va.Lng, va.Lat)
}

// Checker runs the address check flow: geocode, test against the registry
// and remember the address when it falls inside a polygon.
type Checker struct {
	geocoder Geocoder
	registry *Registry
	kv       KV
	logger   *zap.Logger
}

func NewChecker(geocoder Geocoder, registry *Registry, kv KV, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		geocoder: geocoder,
		registry: registry,
		kv:       kv,
		logger:   logger,
	}
}

func (c *Checker) Check(ctx context.Context, address string) Verdict {
	address = strings.TrimSpace(address)
	if len(address) == 0 {
		return Verdict{Outcome: EmptyAddress}
	}
	verdict := Verdict{Address: address}
	point, err := c.geocoder.Geocode(ctx, address)
	switch {
	case errors.Is(err, ErrAddressNotFound):
		verdict.Outcome = AddressNotFound
		return verdict
	case err != nil:
		c.logger.Warn("checker: geocode failed",
			zap.String("address", address),
			zap.Error(err))
		verdict.Outcome = Failed
		verdict.Err = err
		return verdict
	}
	verdict.Point = point
	id, inside := c.registry.ValidateAddress(point)
	if !inside {
		verdict.Outcome = Outside
		return verdict
	}
	verdict.Outcome = Inside
	verdict.PolygonID = id
	if err := c.remember(ctx, address, point); err != nil {
		c.logger.Warn("checker: remember validated address failed",
			zap.String("address", address),
			zap.Error(err))
	}
	return verdict
}

func (c *Checker) LastValidated(ctx context.Context) (ValidatedAddress, error) {
	var va ValidatedAddress
	data, err := c.kv.Get(ctx, ValidatedAddressKey)
	if err != nil {
		return va, err
	}
	if err := msgpack.Unmarshal(data, &va); err != nil {
		return va, fmt.Errorf("fencer/checker: decode validated address: %v", err)
	}
	return va, nil
}

func (c *Checker) remember(ctx context.Context, address string, p Point) error {
	data, err := msgpack.Marshal(ValidatedAddress{
		Address: address,
		Lng:     p.Lng(),
		Lat:     p.Lat(),
	})
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, ValidatedAddressKey, data)
}
