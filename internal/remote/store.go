package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mmadfox/fencer"
)

const (
	defaultTimeout = 5 * time.Second
	maxBodySize    = 8 << 20
)

var ErrEmptyURL = errors.New("remote: store url cannot be empty")

type Options struct {
	URL     string        `yaml:"url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`

	HTTPClient *http.Client `yaml:"-"`
	Logger     *zap.Logger  `yaml:"-"`
}

// Store keeps the polygon document behind a single HTTP resource: GET reads
// it and PUT overwrites it.
type Store struct {
	url    string
	token  string
	client *http.Client
	logger *zap.Logger
}

func New(opts Options) (*Store, error) {
	if len(opts.URL) == 0 {
		return nil, ErrEmptyURL
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		url:    opts.URL,
		token:  opts.Token,
		client: client,
		logger: logger,
	}, nil
}

func (s *Store) Fetch(ctx context.Context) ([]byte, error) {
	req, err := s.newRequest(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	return s.do(req)
}

func (s *Store) Put(ctx context.Context, data []byte) error {
	req, err := s.newRequest(ctx, http.MethodPut, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = s.do(req)
	return err
}

func (s *Store) newRequest(ctx context.Context, method string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.url, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fencer.ErrRemoteUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if len(s.token) > 0 {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	return req, nil
}

func (s *Store) do(req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("remote: request failed",
			zap.String("method", req.Method),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", fencer.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", fencer.ErrRemoteUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Warn("remote: unexpected status",
			zap.String("method", req.Method),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: %s %s: status %d",
			fencer.ErrRemoteUnavailable, req.Method, s.url, resp.StatusCode)
	}
	s.logger.Debug("remote: round-trip",
		zap.String("method", req.Method),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("took", time.Since(start)))
	return body, nil
}

var _ fencer.Store = (*Store)(nil)
