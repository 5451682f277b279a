package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	domainErrors "github.com/bivex/webpay-client/internal/domain/errors"
)

// Settings is the explicit configuration value threaded through the purchase
// engine and its collaborators. It is built once per process (or per attempt
// for overrides) and never mutated afterwards.
type Settings struct {
	// APIURLBase is the scheme+host of the remote payment API.
	APIURLBase string
	// APIVersionPrefix is prepended to every API path, e.g. "/api/v1".
	APIVersionPrefix string
	// FakeProducts substitutes a stub catalog and locally signed payment
	// tokens, for development without a payment backend.
	FakeProducts bool
	// AppOrigin identifies the calling application to the payment API.
	AppOrigin string
	// LocalStorageEnabled controls the fallback receipt store. Disabling it
	// with no device store present makes receipt storage unavailable.
	LocalStorageEnabled bool
	// ReceiptStorePath is the file backing the fallback receipt store.
	ReceiptStorePath string
	// RedisURL, when set, backs the fallback receipt store and the worker
	// queue instead of the local file.
	RedisURL string
	// MaxTries bounds transaction-status polling per attempt.
	MaxTries int
	// PollInterval is the delay between status queries.
	PollInterval time.Duration
	// HTTPTimeout bounds each individual API request.
	HTTPTimeout time.Duration

	// Sentry / environment, consumed by logging only.
	SentryDSN   string
	Environment string
}

// Defaults returns the baseline settings every constructor merges over
func Defaults() Settings {
	return Settings{
		APIURLBase:          "https://pay.webpay.example.com",
		APIVersionPrefix:    "/api/v1",
		LocalStorageEnabled: true,
		ReceiptStorePath:    "webpay_receipts.json",
		MaxTries:            10,
		PollInterval:        1 * time.Second,
		HTTPTimeout:         30 * time.Second,
		Environment:         "production",
	}
}

// New builds settings by merging caller overrides over Defaults. Setting an
// unrecognized key is a caller error. The "localStorage" key accepts nil or
// false to disable the fallback store, or a string to relocate it.
func New(overrides map[string]any) (*Settings, error) {
	cfg := Defaults()

	for key, value := range overrides {
		var err error
		switch key {
		case "apiUrlBase":
			cfg.APIURLBase, err = cast.ToStringE(value)
		case "apiVersionPrefix":
			cfg.APIVersionPrefix, err = cast.ToStringE(value)
		case "fakeProducts":
			cfg.FakeProducts, err = cast.ToBoolE(value)
		case "appOrigin":
			cfg.AppOrigin, err = cast.ToStringE(value)
		case "redisUrl":
			cfg.RedisURL, err = cast.ToStringE(value)
		case "maxTries":
			cfg.MaxTries, err = cast.ToIntE(value)
		case "pollIntervalMs":
			var ms int
			ms, err = cast.ToIntE(value)
			cfg.PollInterval = time.Duration(ms) * time.Millisecond
		case "httpTimeoutMs":
			var ms int
			ms, err = cast.ToIntE(value)
			cfg.HTTPTimeout = time.Duration(ms) * time.Millisecond
		case "localStorage":
			switch v := value.(type) {
			case nil:
				cfg.LocalStorageEnabled = false
			case bool:
				cfg.LocalStorageEnabled = v
			case string:
				cfg.LocalStorageEnabled = true
				cfg.ReceiptStorePath = v
			default:
				err = fmt.Errorf("unsupported localStorage value %T", value)
			}
		default:
			return nil, domainErrors.New(
				domainErrors.KindConfiguration,
				domainErrors.CodeInvalidSettings,
				fmt.Sprintf("unrecognized setting %q", key),
			)
		}
		if err != nil {
			return nil, domainErrors.Wrap(
				domainErrors.KindConfiguration,
				domainErrors.CodeInvalidSettings,
				fmt.Sprintf("invalid value for setting %q", key),
				err,
			)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load loads settings from environment variables and an optional .env file
func Load() (*Settings, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// .env file is optional (env vars are used)
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := Settings{
		APIURLBase:          viper.GetString("api_url_base"),
		APIVersionPrefix:    viper.GetString("api_version_prefix"),
		FakeProducts:        viper.GetBool("fake_products"),
		AppOrigin:           viper.GetString("app_origin"),
		LocalStorageEnabled: viper.GetBool("local_storage_enabled"),
		ReceiptStorePath:    viper.GetString("receipt_store_path"),
		RedisURL:            viper.GetString("redis_url"),
		MaxTries:            viper.GetInt("poll_max_tries"),
		PollInterval:        viper.GetDuration("poll_interval"),
		HTTPTimeout:         viper.GetDuration("http_timeout"),
		SentryDSN:           viper.GetString("sentry_dsn"),
		Environment:         viper.GetString("environment"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults() {
	d := Defaults()
	viper.SetDefault("api_url_base", d.APIURLBase)
	viper.SetDefault("api_version_prefix", d.APIVersionPrefix)
	viper.SetDefault("local_storage_enabled", d.LocalStorageEnabled)
	viper.SetDefault("receipt_store_path", d.ReceiptStorePath)
	viper.SetDefault("poll_max_tries", d.MaxTries)
	viper.SetDefault("poll_interval", d.PollInterval)
	viper.SetDefault("http_timeout", d.HTTPTimeout)
	viper.SetDefault("environment", d.Environment)
}

// Validate checks settings for missing or contradictory values
func (s *Settings) Validate() error {
	if s.APIURLBase == "" {
		return domainErrors.New(
			domainErrors.KindConfiguration,
			domainErrors.CodeInvalidSettings,
			"apiUrlBase is required",
		)
	}
	if u, err := url.Parse(s.APIURLBase); err != nil || u.Scheme == "" || u.Host == "" {
		return domainErrors.New(
			domainErrors.KindConfiguration,
			domainErrors.CodeInvalidSettings,
			fmt.Sprintf("apiUrlBase %q is not an absolute URL", s.APIURLBase),
		)
	}
	if s.MaxTries <= 0 {
		return domainErrors.New(
			domainErrors.KindConfiguration,
			domainErrors.CodeInvalidSettings,
			"maxTries must be greater than zero",
		)
	}
	if s.PollInterval < 0 {
		return domainErrors.New(
			domainErrors.KindConfiguration,
			domainErrors.CodeInvalidSettings,
			"pollIntervalMs must not be negative",
		)
	}
	if s.AppOrigin != "" {
		u, err := url.Parse(s.AppOrigin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return domainErrors.New(
				domainErrors.KindInvalidAppOrigin,
				domainErrors.CodeInvalidAppOrigin,
				fmt.Sprintf("app origin %q is not a valid origin", s.AppOrigin),
			)
		}
	}
	return nil
}
