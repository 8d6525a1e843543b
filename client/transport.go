package client

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/trezcool/masomo-admin/core"
)

const instrumentationName = "github.com/trezcool/masomo-admin/client"

var errNoBaseURL = errors.New("missing base URL")

// Transport sends JSON requests to the API. It is shared by all the clients of an API.
type Transport struct {
	baseURL    string
	rest       *rest.Client
	creds      CredentialsProvider
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	logger     core.Logger
	opts       Options
}

func NewTransport(opts Options) (*Transport, error) {
	if opts.BaseURL == "" {
		return nil, errNoBaseURL
	}
	opts.setDefaults()

	tp := opts.TracerProvider
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	return &Transport{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		rest:       &rest.Client{HTTPClient: opts.HTTPClient},
		creds:      opts.Credentials,
		tracer:     tp.Tracer(instrumentationName),
		propagator: propagation.TraceContext{},
		logger:     opts.Logger,
		opts:       opts,
	}, nil
}

func withQuery(path string, query map[string]string) string {
	if len(query) == 0 {
		return path
	}
	return rest.AddQueryParameters(path, query)
}

// signature identifies a request: method, path and encoded query.
func signature(method rest.Method, path string, query map[string]string) string {
	return string(method) + " " + withQuery(path, query)
}

// do sends a request and decodes the JSON response into out.
func (tr *Transport) do(ctx context.Context, method rest.Method, path string, query map[string]string, in, out interface{}) (err error) {
	url := tr.baseURL + path
	ctx, span := tr.tracer.Start(
		ctx, string(method)+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", string(method)),
			attribute.String("url.full", withQuery(url, query)),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	headers := map[string]string{"Accept": "application/json"}
	if tr.creds != nil {
		token, err := tr.creds.Token(ctx)
		if err != nil {
			return errors.Wrap(err, "getting credentials")
		}
		if token != "" {
			headers["Authorization"] = "Bearer " + token
		}
	}
	tr.propagator.Inject(ctx, propagation.MapCarrier(headers))

	req := rest.Request{
		Method:      method,
		BaseURL:     url,
		Headers:     headers,
		QueryParams: query,
	}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		req.Body = body
		headers["Content-Type"] = "application/json"
	}

	resp, err := tr.rest.SendWithContext(ctx, req)
	if err != nil {
		tr.logger.Debug("client: request failed", string(method), url, err)
		return &NetworkError{Op: string(method), URL: url, Err: err}
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp.StatusCode, resp.Body)
	}
	if out != nil {
		if err := json.Unmarshal([]byte(resp.Body), out); err != nil {
			return errors.Wrap(err, "decoding response body")
		}
	}
	return nil
}
