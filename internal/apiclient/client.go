// Package apiclient talks to the Serena backend API on behalf of the
// dashboard. Every failure is returned as *Error with a Spanish message.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/serena/serena/pkg/period"
)

// TokenSource supplies bearer tokens. *auth.TokenIssuer satisfies it.
type TokenSource interface {
	Token() (string, error)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	metrics    *Metrics
	logger     zerolog.Logger
	now        func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }

func WithTokenSource(ts TokenSource) Option { return func(c *Client) { c.tokens = ts } }

func WithMetrics(m *Metrics) Option { return func(c *Client) { c.metrics = m } }

func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.logger = l } }

// New creates a client for the API at baseURL. timeout bounds every call.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     zerolog.Nop(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type errorBody struct {
	Error string `json:"error"`
}

func periodQuery(patientID int64, p period.Period, rng period.Range) url.Values {
	q := url.Values{}
	q.Set("patient_id", strconv.FormatInt(patientID, 10))
	if p != "" {
		q.Set("period", p.String())
	}
	if p == period.Custom {
		if rng.From != "" {
			q.Set("from", rng.From)
		}
		if rng.To != "" {
			q.Set("to", rng.To)
		}
	}
	return q
}

// do performs one request. endpoint names the call in logs and metrics;
// failMsg prefixes status errors the user sees.
func (c *Client) do(ctx context.Context, endpoint, method, path string, q url.Values, in, out interface{}, failMsg string) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.observe(endpoint, start, err)
		if err != nil {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Str("method", method).Str("path", path).Msg("backend call failed")
		}
	}()

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, mErr := json.Marshal(in)
		if mErr != nil {
			return &Error{Kind: KindValidation, Message: "No se pudieron preparar los datos", Err: mErr}
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "No se pudo preparar la solicitud", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		tok, tErr := c.tokens.Token()
		if tErr != nil {
			return &Error{Kind: KindNetwork, Message: "No se pudo autenticar con el servidor", Err: tErr}
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "No se pudo conectar con el servidor", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: "Se interrumpió la respuesta del servidor", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("%s: %d", failMsg, resp.StatusCode)
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			msg = fmt.Sprintf("%s: %s", failMsg, eb.Error)
		}
		return &Error{Kind: KindStatus, Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindDecode, Status: resp.StatusCode, Message: "Respuesta inválida del servidor", Err: err}
	}
	return nil
}

// FormatDate renders t as DD/MM/YY.
func FormatDate(t time.Time) string {
	return t.Format("02/01/06")
}
