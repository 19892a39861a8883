package counter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
)

const maxResponseSizeBytes = 64 << 10

// UpstashOption customizes UpstashStore.
type UpstashOption func(*UpstashStore)

func WithKey(key string) UpstashOption {
	return func(s *UpstashStore) {
		trimmed := strings.TrimSpace(key)
		if trimmed != "" {
			s.key = trimmed
		}
	}
}

func WithHTTPClient(client *http.Client) UpstashOption {
	return func(s *UpstashStore) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// UpstashStore keeps the counter in Upstash Redis through its REST API.
type UpstashStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
	key        string
}

var (
	_ contractx.CounterStore       = (*UpstashStore)(nil)
	_ contractx.CounterIncrementer = (*UpstashStore)(nil)
)

type redisRESTResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

type UpstashConfig struct {
	URL     string        `envconfig:"URL" split_words:"true" required:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

func NewUpstashStore(cfg UpstashConfig, opts ...UpstashOption) (*UpstashStore, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: upstash redis url is required", contractx.ErrValidation)
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("%w: invalid redis rest url: %v", contractx.ErrValidation, err)
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, fmt.Errorf("%w: upstash redis token is required", contractx.ErrValidation)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	store := &UpstashStore{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		key: defaultCounterKey,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}

	return store, nil
}

func (s *UpstashStore) Load(ctx context.Context) (int, bool, error) {
	resp, err := s.exec(ctx, []any{"GET", s.key})
	if err != nil {
		return 0, false, err
	}

	result := bytes.TrimSpace(resp.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return 0, false, nil
	}

	var encoded string
	if err := json.Unmarshal(result, &encoded); err != nil {
		return 0, false, fmt.Errorf("%w: decode counter payload: %v", contractx.ErrCounterCorrupt, err)
	}
	value, err := strconv.Atoi(strings.TrimSpace(encoded))
	if err != nil {
		return 0, false, fmt.Errorf("%w: key %s holds %q", contractx.ErrCounterCorrupt, s.key, encoded)
	}
	return value, true, nil
}

func (s *UpstashStore) Save(ctx context.Context, value int) error {
	_, err := s.exec(ctx, []any{"SET", s.key, strconv.Itoa(value)})
	return err
}

func (s *UpstashStore) Increment(ctx context.Context) (int, error) {
	resp, err := s.exec(ctx, []any{"INCR", s.key})
	if err != nil {
		return 0, err
	}

	var value int
	if err := json.Unmarshal(bytes.TrimSpace(resp.Result), &value); err != nil {
		return 0, fmt.Errorf("%w: decode INCR result: %v", contractx.ErrCounterCorrupt, err)
	}
	return value, nil
}

func (s *UpstashStore) exec(ctx context.Context, command []any) (*redisRESTResponse, error) {
	if s == nil {
		return nil, errors.New("nil store")
	}
	if len(command) == 0 {
		return nil, errors.New("empty redis command")
	}

	body, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: execute redis request: %v", contractx.ErrStorage, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read redis response: %v", contractx.ErrStorage, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: redis http status=%d body=%s", contractx.ErrStorage, resp.StatusCode, string(raw))
	}

	var parsed redisRESTResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("%w: %s", contractx.ErrStorage, parsed.Error)
	}
	return &parsed, nil
}
