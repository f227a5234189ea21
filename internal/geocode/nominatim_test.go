package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmadfox/fencer"
)

func newServer(t *testing.T, status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "1", q.Get("limit"))
		assert.NotEmpty(t, q.Get("q"))
		assert.Equal(t, "fencer-test", r.Header.Get("User-Agent"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestNominatim_Geocode(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     string
		lng, lat float64
		notFound bool
		isErr    bool
	}{
		{
			name:   "string coordinates",
			status: http.StatusOK,
			body:   `[{"place_id":1,"lat":"50.0503606","lon":"19.9600723","display_name":"Krakow"}]`,
			lng:    19.9600723,
			lat:    50.0503606,
		},
		{
			name:   "numeric coordinates",
			status: http.StatusOK,
			body:   `[{"lat":50.5,"lon":19.5}]`,
			lng:    19.5,
			lat:    50.5,
		},
		{name: "no results", status: http.StatusOK, body: `[]`, notFound: true},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, isErr: true},
		{name: "not json", status: http.StatusOK, body: `<html>`, isErr: true},
		{name: "object answer", status: http.StatusOK, body: `{"error":"x"}`, isErr: true},
		{name: "bad lat", status: http.StatusOK, body: `[{"lat":"north","lon":"19.5"}]`, isErr: true},
		{name: "missing lon", status: http.StatusOK, body: `[{"lat":"50.5"}]`, isErr: true},
	}
	for _, tc := range testCases {
		srv := newServer(t, tc.status, tc.body)
		n := NewNominatim(Options{URL: srv.URL, UserAgent: "fencer-test"})
		point, err := n.Geocode(context.Background(), "Rynek Glowny 1, Krakow")
		srv.Close()
		switch {
		case tc.notFound:
			assert.ErrorIs(t, err, fencer.ErrAddressNotFound, tc.name)
		case tc.isErr:
			require.Error(t, err, tc.name)
			assert.NotErrorIs(t, err, fencer.ErrAddressNotFound, tc.name)
		default:
			require.NoError(t, err, tc.name)
			assert.Equal(t, tc.lng, point.Lng(), tc.name)
			assert.Equal(t, tc.lat, point.Lat(), tc.name)
		}
	}
}

func TestNominatim_Defaults(t *testing.T) {
	n := NewNominatim(Options{})
	assert.Equal(t, DefaultURL, n.url)
	assert.Equal(t, defaultTimeout, n.client.Timeout)
	assert.NotNil(t, n.logger)
}

func TestNominatim_TransportError(t *testing.T) {
	srv := newServer(t, http.StatusOK, `[]`)
	url := srv.URL
	srv.Close()

	n := NewNominatim(Options{URL: url})
	_, err := n.Geocode(context.Background(), "anything")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, fencer.ErrAddressNotFound)
}
