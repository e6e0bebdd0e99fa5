package adminclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mkrupp/mailosaurus-admin/internal/domain"
	context_ "github.com/mkrupp/mailosaurus-admin/internal/infra/context"
	"github.com/mkrupp/mailosaurus-admin/internal/infra/logging"
)

const (
	TraceIDHeader   = "X-Request-ID"
	OTPHeader       = "X-Auth-Token"
	UserAgentHeader = "User-Agent"
	ContentType     = "Content-Type"

	LoginPath = "/login"

	loginStatusOK          = "ok"
	loginStatusMissingTOTP = "missing-totp-token"
)

// HTTPClientConfig holds configuration for the HTTP admin client.
type HTTPClientConfig struct {
	// BaseURL is the management API root; endpoint paths are appended to it
	BaseURL string `env:"BASE_URL" default:"http://localhost/admin"`

	// UserAgent is sent with every request when set
	UserAgent string `env:"USER_AGENT" default:"mailadm"`
}

// HTTPClient implements AdminClient over HTTP.
type HTTPClient struct {
	httpClient *http.Client
	session    Session
	privileges PrivilegeStore
	log        logging.Logger
	cfg        HTTPClientConfig
}

var _ AdminClient = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTPClient with the given configuration.
// If httpClient is nil, http.DefaultClient will be used. privileges may be nil.
func NewHTTPClient(
	cfg HTTPClientConfig,
	httpClient *http.Client,
	session Session,
	privileges PrivilegeStore,
) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		httpClient: httpClient,
		session:    session,
		privileges: privileges,
		log:        logging.GetLogger("svc.adminclient.http_client"),
		cfg:        cfg,
	}
}

// response is a fully read HTTP answer.
type response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (r *response) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *response) isJSON() bool {
	return strings.Contains(strings.ToLower(r.ContentType), ContentTypeJSON)
}

func (r *response) isAuthFailure() bool {
	return r.StatusCode == http.StatusUnauthorized || r.StatusCode == http.StatusForbidden
}

// Get implements AdminClient.Get.
func (ht *HTTPClient) Get(ctx context.Context, path string) domain.Envelope[Payload] {
	return ht.do(ctx, http.MethodGet, path, nil)
}

// Post implements AdminClient.Post.
func (ht *HTTPClient) Post(ctx context.Context, path string, body any) domain.Envelope[Payload] {
	return ht.do(ctx, http.MethodPost, path, body)
}

// Delete implements AdminClient.Delete.
func (ht *HTTPClient) Delete(ctx context.Context, path string, body any) domain.Envelope[Payload] {
	return ht.do(ctx, http.MethodDelete, path, body)
}

func (ht *HTTPClient) do(ctx context.Context, method, path string, body any) (env domain.Envelope[Payload]) {
	ctx, traceID := context_.EnsureTraceID(ctx)
	log := ht.log.With(logging.Group("request", "method", method, "path", path))
	start := time.Now()

	defer func() {
		if env.Success {
			log.DebugContext(ctx, "request done", "status", env.Data.StatusCode, "duration", time.Since(start))
		} else {
			log.WarnContext(ctx, "request failed", "error", env.Err, "duration", time.Since(start))
		}
	}()

	reader, contentType, err := NewRequestBody(body)
	if err != nil {
		return domain.Fail[Payload](fmt.Errorf("encode body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, method, ht.url(path), reader)
	if err != nil {
		return domain.Fail[Payload](fmt.Errorf("%w: new request: %w", domain.ErrTransport, err))
	}

	if contentType != "" {
		req.Header.Set(ContentType, contentType)
	}

	if credential, ok := ht.session.Current(); ok {
		req.SetBasicAuth(credential.Identity, credential.Token)
	}

	req.Header.Set(TraceIDHeader, traceID)

	resp, err := ht.send(req)
	if err != nil {
		return domain.Fail[Payload](err)
	}

	return ht.classify(ctx, resp)
}

func (ht *HTTPClient) classify(ctx context.Context, resp *response) domain.Envelope[Payload] {
	if resp.isAuthFailure() {
		ht.invalidate(ctx)

		return domain.Fail[Payload](&domain.APIError{
			StatusCode: resp.StatusCode,
			Err:        domain.ErrAuthenticationFailed,
		})
	}

	if !resp.ok() {
		return domain.Fail[Payload](&domain.APIError{
			StatusCode: resp.StatusCode,
			Reason:     reasonOf(resp),
		})
	}

	payload := Payload{StatusCode: resp.StatusCode, ContentType: resp.ContentType}

	if resp.isJSON() {
		if !json.Valid(resp.Body) {
			return domain.Fail[Payload](fmt.Errorf("%w: %w", domain.ErrTransport, domain.ErrMalformedResponse))
		}

		payload.JSON = json.RawMessage(resp.Body)
	} else {
		payload.Text = string(resp.Body)
	}

	return domain.Ok(payload)
}

// reasonOf returns the "reason" field of a JSON error body.
func reasonOf(resp *response) string {
	if !resp.isJSON() {
		return ""
	}

	var body struct {
		Reason domain.FlexString `json:"reason"`
	}

	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return ""
	}

	return body.Reason.String()
}

// Login implements AdminClient.Login.
func (ht *HTTPClient) Login(
	ctx context.Context,
	identity, secret, otp string,
) (env domain.Envelope[domain.LoginResult]) {
	ctx, traceID := context_.EnsureTraceID(ctx)
	log := ht.log.With(logging.Group("login", "identity", identity, "otp", otp != ""))

	defer func() {
		if env.Success {
			log.DebugContext(ctx, "login successful")
		} else {
			log.WarnContext(ctx, "login failed", "error", env.Err)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ht.url(LoginPath), nil)
	if err != nil {
		return domain.Fail[domain.LoginResult](fmt.Errorf("%w: new request: %w", domain.ErrTransport, err))
	}

	req.SetBasicAuth(identity, secret)
	req.Header.Set(TraceIDHeader, traceID)

	if otp != "" {
		req.Header.Set(OTPHeader, otp)
	}

	resp, err := ht.send(req)
	if err != nil {
		return domain.Fail[domain.LoginResult](err)
	}

	if resp.isAuthFailure() {
		ht.invalidate(ctx)
	}

	answer, err := parseLoginAnswer(resp)
	if err != nil {
		return domain.Fail[domain.LoginResult](err)
	}

	switch {
	case answer.Status == loginStatusMissingTOTP:
		return domain.Fail[domain.LoginResult](domain.ErrMissingTOTPToken)
	case !resp.ok():
		reason := answer.Reason.String()
		if reason == "" {
			reason = fmt.Sprintf("authentication failed: %d", resp.StatusCode)
		}

		return domain.Fail[domain.LoginResult](&domain.APIError{
			StatusCode: resp.StatusCode,
			Reason:     reason,
			Err:        domain.ErrLoginFailed,
		})
	case answer.Status == loginStatusOK && answer.Token != "":
		if err := ht.session.Save(ctx, identity, answer.Token); err != nil {
			return domain.Fail[domain.LoginResult](fmt.Errorf("save session: %w", err))
		}

		if ht.privileges != nil {
			if err := ht.privileges.Save(ctx, answer.Privileges); err != nil {
				log.WarnContext(ctx, "cache privileges failed", "error", err)
			}
		}

		result := answer.LoginResult
		if result.Identity == "" {
			result.Identity = identity
		}

		return domain.Ok(result)
	default:
		return domain.Fail[domain.LoginResult](&domain.APIError{
			StatusCode: resp.StatusCode,
			Reason:     answer.Reason.String(),
			Err:        domain.ErrLoginFailed,
		})
	}
}

type loginAnswer struct {
	domain.LoginResult
	Reason domain.FlexString `json:"reason"`
}

// parseLoginAnswer reads a login body. Plain text answers become an error status
// with the text as reason.
func parseLoginAnswer(resp *response) (loginAnswer, error) {
	if !resp.isJSON() {
		return loginAnswer{
			LoginResult: domain.LoginResult{Status: "error"},
			Reason:      domain.FlexString(strings.TrimSpace(string(resp.Body))),
		}, nil
	}

	var answer loginAnswer
	if err := json.Unmarshal(resp.Body, &answer); err != nil {
		return loginAnswer{}, fmt.Errorf("%w: %w", domain.ErrTransport, errors.Join(domain.ErrMalformedResponse, err))
	}

	return answer, nil
}

// Logout implements AdminClient.Logout.
func (ht *HTTPClient) Logout(ctx context.Context) error {
	var errs []error

	if err := ht.session.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear session: %w", err))
	}

	if ht.privileges != nil {
		if err := ht.privileges.Clear(ctx); err != nil {
			errs = append(errs, fmt.Errorf("clear privileges: %w", err))
		}
	}

	return errors.Join(errs...)
}

// IsAuthenticated implements AdminClient.IsAuthenticated.
func (ht *HTTPClient) IsAuthenticated() bool {
	_, ok := ht.session.Current()

	return ok
}

// invalidate forgets the session after the backend rejected it.
func (ht *HTTPClient) invalidate(ctx context.Context) {
	if err := ht.Logout(ctx); err != nil {
		ht.log.ErrorContext(ctx, "invalidate session failed", "error", err)
	} else {
		ht.log.InfoContext(ctx, "session invalidated")
	}
}

func (ht *HTTPClient) send(req *http.Request) (*response, error) {
	if ht.cfg.UserAgent != "" {
		req.Header.Set(UserAgentHeader, ht.cfg.UserAgent)
	}

	resp, err := ht.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrTransport, err)
	}

	return &response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get(ContentType),
		Body:        body,
	}, nil
}

func (ht *HTTPClient) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return strings.TrimRight(ht.cfg.BaseURL, "/") + path
}
