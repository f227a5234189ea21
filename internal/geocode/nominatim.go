package geocode

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/mmadfox/fencer"
)

const (
	DefaultURL     = "https://nominatim.openstreetmap.org/search"
	defaultTimeout = 5 * time.Second
	maxBodySize    = 1 << 20
)

type Options struct {
	URL       string        `yaml:"url"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`

	HTTPClient *http.Client `yaml:"-"`
	Logger     *zap.Logger  `yaml:"-"`
}

// Nominatim resolves addresses with an OpenStreetMap Nominatim search endpoint.
type Nominatim struct {
	url       string
	userAgent string
	client    *http.Client
	logger    *zap.Logger
}

func NewNominatim(opts Options) *Nominatim {
	n := &Nominatim{
		url:       opts.URL,
		userAgent: opts.UserAgent,
		client:    opts.HTTPClient,
		logger:    opts.Logger,
	}
	if len(n.url) == 0 {
		n.url = DefaultURL
	}
	if n.client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		n.client = &http.Client{Timeout: timeout}
	}
	if n.logger == nil {
		n.logger = zap.NewNop()
	}
	return n
}

func (n *Nominatim) Geocode(ctx context.Context, address string) (fencer.Point, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.url+"?"+q.Encode(), nil)
	if err != nil {
		return fencer.Point{}, err
	}
	req.Header.Set("Accept", "application/json")
	if len(n.userAgent) > 0 {
		req.Header.Set("User-Agent", n.userAgent)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("geocode: request failed", zap.Error(err))
		return fencer.Point{}, fmt.Errorf("geocode: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		n.logger.Warn("geocode: unexpected status", zap.Int("status", resp.StatusCode))
		return fencer.Point{}, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}
	body, err := ioutil.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fencer.Point{}, fmt.Errorf("geocode: read body: %v", err)
	}
	point, err := parseSearch(body)
	if err != nil {
		return fencer.Point{}, err
	}
	n.logger.Debug("geocode: resolved",
		zap.String("address", address),
		zap.Float64("lng", point.Lng()),
		zap.Float64("lat", point.Lat()))
	return point, nil
}

// parseSearch reads the first hit of a search answer. Nominatim sends
// coordinates as strings.
func parseSearch(body []byte) (fencer.Point, error) {
	if !gjson.ValidBytes(body) {
		return fencer.Point{}, fmt.Errorf("geocode: invalid JSON answer")
	}
	res := gjson.ParseBytes(body)
	if !res.IsArray() {
		return fencer.Point{}, fmt.Errorf("geocode: want array answer, got %s", res.Type)
	}
	hits := res.Array()
	if len(hits) == 0 {
		return fencer.Point{}, fencer.ErrAddressNotFound
	}
	lat, err := coordinate(hits[0].Get("lat"))
	if err != nil {
		return fencer.Point{}, fmt.Errorf("geocode: lat: %v", err)
	}
	lon, err := coordinate(hits[0].Get("lon"))
	if err != nil {
		return fencer.Point{}, fmt.Errorf("geocode: lon: %v", err)
	}
	return fencer.NewPoint(lon, lat), nil
}

func coordinate(res gjson.Result) (float64, error) {
	switch res.Type {
	case gjson.String:
		return strconv.ParseFloat(res.String(), 64)
	case gjson.Number:
		return res.Float(), nil
	default:
		return 0, fmt.Errorf("missing or not a number")
	}
}

var _ fencer.Geocoder = (*Nominatim)(nil)
