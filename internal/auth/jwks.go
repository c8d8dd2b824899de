package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"tradebots/internal/metrics"
	"tradebots/pkg/ratelimit"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Значения по умолчанию для KeyResolver
const (
	DefaultJWKSCacheTTL           = 10 * time.Minute
	DefaultJWKSTimeout            = 5 * time.Second
	DefaultJWKSMinRefreshInterval = 30 * time.Second
)

// maxJWKSBodySize - ограничение размера ответа JWKS endpoint
const maxJWKSBodySize = 1 << 20

// JSONWebKey - публичный ключ из набора JWKS
type JSONWebKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg,omitempty"`
	Use string `json:"use,omitempty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JSONWebKeySet - документ, который отдает /.well-known/jwks.json
type JSONWebKeySet struct {
	Keys []JSONWebKey `json:"keys"`
}

// KeyResolverConfig - настройки KeyResolver
type KeyResolverConfig struct {
	// URL набора ключей, например https://<domain>/.well-known/jwks.json
	URL string

	// TTL кэша ключей (по умолчанию 10 минут)
	TTL time.Duration

	// Timeout HTTP запроса (по умолчанию 5 секунд)
	Timeout time.Duration

	// MinRefreshInterval - не чаще одного внепланового обновления
	// при неизвестном kid за этот интервал. 0 - без ограничения.
	MinRefreshInterval time.Duration

	Logger     *zap.Logger
	HTTPClient *http.Client
	Now        func() time.Time
}

// JWKSURL возвращает стандартный адрес JWKS для домена провайдера
func JWKSURL(domain string) string {
	return "https://" + strings.TrimSuffix(domain, "/") + "/.well-known/jwks.json"
}

// KeyResolver загружает и кэширует публичные ключи провайдера
//
// Ключи кэшируются на TTL. Если kid токена не найден в кэше,
// выполняется одно внеплановое обновление (с ограничением частоты).
// Повторных попыток при ошибке сети нет: ошибка сразу
// превращается в отказ авторизации.
type KeyResolver struct {
	url     string
	ttl     time.Duration
	client  *http.Client
	limiter *ratelimit.RateLimiter
	logger  *zap.Logger
	now     func() time.Time

	mu        sync.RWMutex
	keys      map[string]JSONWebKey
	expiresAt time.Time

	// refreshMu сериализует обращения к сети
	refreshMu sync.Mutex
}

// NewKeyResolver создает KeyResolver
func NewKeyResolver(cfg KeyResolverConfig) *KeyResolver {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultJWKSCacheTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultJWKSTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &KeyResolver{
		url:     cfg.URL,
		ttl:     cfg.TTL,
		client:  client,
		limiter: ratelimit.NewIntervalLimiter(cfg.MinRefreshInterval, cfg.Now),
		logger:  cfg.Logger.With(zap.String("component", "jwks")),
		now:     cfg.Now,
		keys:    map[string]JSONWebKey{},
	}
}

// FetchKeys загружает набор ключей по сети, минуя кэш
//
// Ключи без kid пропускаются. Ошибка сети, статус не 2xx
// и невалидный JSON возвращаются как ErrKeyFetchFailed.
func (r *KeyResolver) FetchKeys(ctx context.Context) (map[string]JSONWebKey, error) {
	keys, err := r.fetch(ctx)
	metrics.RecordJWKSFetch(err)
	if err != nil {
		r.logger.Warn("failed to fetch signing keys", zap.String("url", r.url), zap.Error(err))
		return nil, newError(KindKeyFetchFailed, "Unable to fetch signing keys.", err)
	}
	r.logger.Debug("signing keys fetched", zap.Int("count", len(keys)))
	return keys, nil
}

func (r *KeyResolver) fetch(ctx context.Context) (map[string]JSONWebKey, error) {
	if r.url == "" {
		return nil, errors.New("jwks url is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("jwks endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJWKSBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading jwks: %w", err)
	}

	var set JSONWebKeySet
	if err := json.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("decoding jwks: %w", err)
	}

	keys := make(map[string]JSONWebKey, len(set.Keys))
	for _, key := range set.Keys {
		if strings.TrimSpace(key.Kid) == "" {
			continue
		}
		keys[key.Kid] = key
	}
	return keys, nil
}

// Keys возвращает закэшированный набор ключей, обновляя его по истечении TTL
//
// Возвращаемую map нельзя изменять.
func (r *KeyResolver) Keys(ctx context.Context) (map[string]JSONWebKey, error) {
	r.mu.RLock()
	if r.now().Before(r.expiresAt) {
		keys := r.keys
		r.mu.RUnlock()
		return keys, nil
	}
	r.mu.RUnlock()

	return r.refresh(ctx, false)
}

// PublicKey возвращает RSA ключ по kid
//
// При промахе выполняется не более одного внепланового обновления.
// Если kid так и не найден - ErrKeyNotFound.
func (r *KeyResolver) PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	keys, err := r.Keys(ctx)
	if err != nil {
		return nil, err
	}

	key, ok := keys[kid]
	if !ok && r.limiter.Allow() {
		r.logger.Info("unknown key id, forcing refresh", zap.String("kid", kid))
		keys, err = r.refresh(ctx, true)
		if err != nil {
			return nil, err
		}
		key, ok = keys[kid]
	}
	if !ok {
		return nil, newError(KindKeyNotFound, "Unable to find the appropriate key.", nil)
	}

	pub, err := key.RSAPublicKey()
	if err != nil {
		return nil, newError(KindKeyNotFound, "Unable to find the appropriate key.", err)
	}
	return pub, nil
}

// refresh загружает ключи и обновляет кэш
//
// Без force повторная загрузка пропускается, если кэш уже обновила
// другая горутина, пока эта ждала refreshMu.
func (r *KeyResolver) refresh(ctx context.Context, force bool) (map[string]JSONWebKey, error) {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	if !force {
		r.mu.RLock()
		if r.now().Before(r.expiresAt) {
			keys := r.keys
			r.mu.RUnlock()
			return keys, nil
		}
		r.mu.RUnlock()
	}

	keys, err := r.FetchKeys(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.keys = keys
	r.expiresAt = r.now().Add(r.ttl)
	r.mu.Unlock()

	return keys, nil
}

// RSAPublicKey собирает *rsa.PublicKey из модуля n и экспоненты e (base64url)
func (k JSONWebKey) RSAPublicKey() (*rsa.PublicKey, error) {
	if k.Kty != "" && !strings.EqualFold(k.Kty, "RSA") {
		return nil, fmt.Errorf("unsupported key type %q", k.Kty)
	}

	nb, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(k.N, "="))
	if err != nil {
		return nil, fmt.Errorf("decoding rsa n: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(k.E, "="))
	if err != nil {
		return nil, fmt.Errorf("decoding rsa e: %w", err)
	}
	if len(nb) == 0 {
		return nil, errors.New("invalid rsa modulus")
	}
	if len(eb) == 0 || len(eb) > 4 {
		return nil, errors.New("invalid rsa exponent")
	}

	e := 0
	for _, b := range eb {
		e = e<<8 | int(b)
	}
	if e <= 1 {
		return nil, errors.New("invalid rsa exponent")
	}

	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}
