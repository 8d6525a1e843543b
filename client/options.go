package client

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/trezcool/masomo-admin/core"
	logsvc "github.com/trezcool/masomo-admin/services/logger"
)

const defaultTimeout = 10 * time.Second

// Policy configures when cached queries are read again regardless of their freshness.
// The zero value never refetches fresh data.
type Policy struct {
	// RefetchOnFocus refetches every subscribed query on Focus.
	RefetchOnFocus bool
	// RefetchOnReconnect refetches every subscribed query on Reconnect.
	RefetchOnReconnect bool
	// RefetchOnMountOrArgChange makes every read and every new subscription issue a request,
	// even when fresh data is cached.
	RefetchOnMountOrArgChange bool
}

// CredentialsProvider supplies the bearer token attached to every request.
type CredentialsProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a CredentialsProvider always returning the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// Options configures the Transport and the clients built on top of it.
type Options struct {
	BaseURL     string // e.g. http://localhost:8000/v1
	HTTPClient  *http.Client
	Timeout     time.Duration // ignored when HTTPClient is set
	Credentials CredentialsProvider
	Policy      Policy
	Logger      core.Logger

	// optional instrumentation; no-op when nil
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// OptionsFromConfig builds Options from the client section of the configuration.
func OptionsFromConfig(conf *core.Config, logger core.Logger) Options {
	opts := Options{
		BaseURL: conf.Client.BaseURL,
		Timeout: conf.Client.Timeout,
		Policy: Policy{
			RefetchOnFocus:            conf.Client.RefetchOnFocus,
			RefetchOnReconnect:        conf.Client.RefetchOnReconnect,
			RefetchOnMountOrArgChange: conf.Client.RefetchOnMountOrArgChange,
		},
		Logger: logger,
	}
	if conf.Client.Token != "" {
		opts.Credentials = StaticToken(conf.Client.Token)
	}
	return opts
}

func (o *Options) setDefaults() {
	if o.HTTPClient == nil {
		timeout := o.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		o.HTTPClient = &http.Client{Timeout: timeout}
	}
	if o.Logger == nil {
		o.Logger = logsvc.NewStdLogger(log.New(io.Discard, "", 0), false)
	}
}

// ReadOption tunes a single read.
type ReadOption func(*readOptions)

type readOptions struct {
	force bool
}

// ForceRefetch issues a new request even if fresh data is cached or a request is already in flight.
func ForceRefetch() ReadOption {
	return func(ro *readOptions) { ro.force = true }
}

func newReadOptions(opts []ReadOption) readOptions {
	var ro readOptions
	for _, opt := range opts {
		opt(&ro)
	}
	return ro
}
