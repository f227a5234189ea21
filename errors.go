package fencer

import "errors"

var (
	ErrInvalidGeometry   = errors.New("fencer/polygon: invalid geometry")
	ErrNotFound          = errors.New("fencer/registry: polygon not found")
	ErrRemoteUnavailable = errors.New("fencer/store: remote store unavailable")
	ErrMalformedData     = errors.New("fencer/store: malformed remote data")
	ErrAddressNotFound   = errors.New("fencer/geocoder: address not found")
	ErrKeyNotFound       = errors.New("fencer/kv: key not found")
)
