package asaas

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	SandboxURL    = "https://sandbox.asaas.com/api/v3"
	ProductionURL = "https://api.asaas.com/v3"

	PaymentMethod = "asaas_pix"

	minTokenLength = 150
	defaultTimeout = 15 * time.Second
)

var ErrInvalidToken = errors.New("asaas: invalid access token")

// ===============================
// Token
// ===============================

// TokenProvider é consultado a cada chamada; nada é guardado em cache.
type TokenProvider interface {
	Token() string
}

type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

type StaticToken string

func (s StaticToken) Token() string { return string(s) }

// NormalizeToken prefixa "$" quando ausente e rejeita chaves curtas demais
// para serem válidas, antes de qualquer chamada de rede.
func NormalizeToken(raw string) (string, error) {
	t := strings.TrimSpace(raw)
	if t == "" {
		return "", fmt.Errorf("%w: ASAAS_API_KEY is not set", ErrInvalidToken)
	}
	if !strings.HasPrefix(t, "$") {
		t = "$" + t
	}
	if len(t) < minTokenLength {
		return "", fmt.Errorf("%w: token has %d characters, expected at least %d", ErrInvalidToken, len(t), minTokenLength)
	}
	return t, nil
}

// BaseURLFor escolhe o ambiente pela chave: chaves de homologação contêm "hmlg".
func BaseURLFor(token string) string {
	if strings.Contains(token, "hmlg") && !strings.Contains(token, "_prod_") {
		return SandboxURL
	}
	return ProductionURL
}

// ===============================
// Client
// ===============================

type Options struct {
	// BaseURL fixa o endpoint; vazio deriva o ambiente do token.
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	http    *resty.Client
	tokens  TokenProvider
	baseURL string
	log     *zap.Logger
	tracer  trace.Tracer
}

func New(tokens TokenProvider, opts Options, log *zap.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "companion-booking")

	return &Client{
		http:    rc,
		tokens:  tokens,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		log:     log.Named("asaas"),
		tracer:  otel.Tracer("asaas-client"),
	}
}

func (c *Client) Method() string {
	return PaymentMethod
}

// request monta uma requisição autenticada. O token é relido aqui, a cada
// chamada, para acompanhar rotação de credencial sem restart.
func (c *Client) request(ctx context.Context) (*resty.Request, string, error) {
	token, err := NormalizeToken(c.tokens.Token())
	if err != nil {
		return nil, "", err
	}

	base := c.baseURL
	if base == "" {
		base = BaseURLFor(token)
	}

	r := c.http.R().
		SetContext(ctx).
		SetHeader("access_token", token).
		SetError(&apiErrorBody{})

	return r, base, nil
}

func (c *Client) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := c.tracer.Start(ctx, "asaas."+op)
	span.SetAttributes(attrs...)
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// ===============================
// Errors
// ===============================

type apiErrorBody struct {
	Errors []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"errors"`
}

// APIError carrega a mensagem do provedor para o chamador.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("asaas: %d %s", e.StatusCode, e.Description)
	}
	return fmt.Sprintf("asaas: unexpected status %d", e.StatusCode)
}

func responseError(resp *resty.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode()}
	if body, ok := resp.Error().(*apiErrorBody); ok && body != nil && len(body.Errors) > 0 {
		apiErr.Code = body.Errors[0].Code
		apiErr.Description = body.Errors[0].Description
	}
	return apiErr
}
