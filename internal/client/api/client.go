// Package api is a thin HTTP client for the Staffolio backend. It speaks
// JSON for auth and directory calls and multipart forms for portfolio
// writes, and translates the server's error codes back into the shared
// sentinel errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/staffolio/staffolio/internal/common"
)

// ErrUnavailable marks transport-level failures: the server could not be
// reached at all, as opposed to the server answering with an error.
var ErrUnavailable = errors.New("server unavailable")

// TokenFunc supplies the current session token, or "" when logged out.
type TokenFunc func() string

type Client struct {
	baseURL string
	http    *http.Client
	token   TokenFunc
}

func NewClient(baseURL string, timeout time.Duration, token TokenFunc) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		token:   token,
	}
}

// Error codes as the server emits them. Matching is on code, never on
// message text.
const (
	codeValidation      = "VALIDATION"
	codeConflict        = "CONFLICT"
	codeUnauthenticated = "UNAUTHENTICATED"
	codeInvalidToken    = "INVALID_TOKEN"
	codeTokenExpired    = "TOKEN_EXPIRED"
	codeForbidden       = "FORBIDDEN"
	codeNotFound        = "NOT_FOUND"
)

// decodeError turns a non-2xx response into the matching sentinel. An
// unknown code falls through to ErrorInternal.
func decodeError(resp *http.Response) error {
	var body struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)

	switch body.Code {
	case codeValidation:
		return fmt.Errorf("%w: %s", common.ErrorValidation, body.Error)
	case codeConflict:
		return common.ErrorAlreadyExists
	case codeUnauthenticated:
		return common.ErrorUnauthorized
	case codeInvalidToken:
		return common.ErrInvalidToken
	case codeTokenExpired:
		return common.ErrTokenExpired
	case codeForbidden:
		return common.ErrorForbidden
	case codeNotFound:
		return common.ErrorNotFound
	default:
		return common.ErrorInternal
	}
}

// do sends the request with the session token attached on both transports
// the server accepts, and decodes a 2xx response into out (when non-nil).
func (c *Client) do(req *http.Request, out any) error {
	if token := c.token(); token != "" {
		req.AddCookie(&http.Cookie{Name: common.TokenCookieName, Value: token})
		req.Header.Set(common.AuthorizationHeader, "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return common.ErrorInternal
		}
	}

	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

// multipartBody assembles the portfolio form. List fields arrive already
// JSON-encoded in fields; picture is optional.
func multipartBody(fields map[string]string, picture *PictureFile) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	if picture != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="picture"; filename=%q`, picture.Name))
		h.Set("Content-Type", picture.ContentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(picture.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf, w.FormDataContentType(), nil
}

func (c *Client) sendForm(ctx context.Context, method, path string, fields map[string]string, picture *PictureFile, out any) error {
	body, contentType, err := multipartBody(fields, picture)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	return c.do(req, out)
}

// Register creates an account. Role may be empty; the server defaults it.
func (c *Client) Register(ctx context.Context, username, email, password, role string) (*User, error) {
	in := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
		"role":     role,
	}

	var out struct {
		User *User `json:"user"`
	}
	if err := c.postJSON(ctx, "/auth/register", in, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (string, *User, error) {
	in := map[string]string{"email": email, "password": password}

	var out struct {
		Token string `json:"token"`
		User  *User  `json:"user"`
	}
	if err := c.postJSON(ctx, "/auth/login", in, &out); err != nil {
		return "", nil, err
	}
	return out.Token, out.User, nil
}

// Logout tells the server to clear its cookie. Idempotent.
func (c *Client) Logout(ctx context.Context) error {
	return c.getJSON(ctx, "/auth/logout", nil)
}

// Status re-resolves the user behind the current token.
func (c *Client) Status(ctx context.Context) (*User, error) {
	var out struct {
		User *User `json:"user"`
	}
	if err := c.getJSON(ctx, "/auth/status", &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) ListEmployees(ctx context.Context) ([]*Employee, error) {
	var out struct {
		Employees []*Employee `json:"employees"`
	}
	if err := c.getJSON(ctx, "/employees", &out); err != nil {
		return nil, err
	}
	return out.Employees, nil
}

func (c *Client) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	var out struct {
		Employee *Employee `json:"employee"`
	}
	if err := c.getJSON(ctx, "/employees/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return out.Employee, nil
}

// GetPortfolio fetches the portfolio owned by employeeID.
func (c *Client) GetPortfolio(ctx context.Context, employeeID string) (*Portfolio, error) {
	var out struct {
		Portfolio *Portfolio `json:"portfolio"`
	}
	if err := c.getJSON(ctx, "/portfolio/"+url.PathEscape(employeeID), &out); err != nil {
		return nil, err
	}
	return out.Portfolio, nil
}

func (c *Client) ListPortfolios(ctx context.Context) ([]*PortfolioWithOwner, error) {
	var out struct {
		Portfolios []*PortfolioWithOwner `json:"portfolios"`
	}
	if err := c.getJSON(ctx, "/portfolio", &out); err != nil {
		return nil, err
	}
	return out.Portfolios, nil
}

// CreatePortfolio posts the form fields (list values already JSON-encoded)
// and the optional picture.
func (c *Client) CreatePortfolio(ctx context.Context, fields map[string]string, picture *PictureFile) (*Portfolio, error) {
	var out struct {
		Portfolio *Portfolio `json:"portfolio"`
	}
	if err := c.sendForm(ctx, http.MethodPost, "/portfolio", fields, picture, &out); err != nil {
		return nil, err
	}
	return out.Portfolio, nil
}

// UpdatePortfolio sends only the fields present in the map; absent fields
// keep their server-side values.
func (c *Client) UpdatePortfolio(ctx context.Context, id string, fields map[string]string, picture *PictureFile) (*Portfolio, error) {
	var out struct {
		Portfolio *Portfolio `json:"portfolio"`
	}
	path := "/portfolio/" + url.PathEscape(id)
	if err := c.sendForm(ctx, http.MethodPut, path, fields, picture, &out); err != nil {
		return nil, err
	}
	return out.Portfolio, nil
}

func (c *Client) DeletePortfolio(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/portfolio/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}
