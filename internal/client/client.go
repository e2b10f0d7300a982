// Package client is the HTTP client the terminal editor uses to talk to a
// goalplan workspace server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"goalplan/internal/model"
	"goalplan/internal/plan"
	"goalplan/internal/web"
)

// ErrEmptyCode is returned before any network call when an operation needs a
// workspace code and none is set.
var ErrEmptyCode = errors.New("workspace code is empty")

// Client talks to one goalplan server. The zero HTTPClient gets a sane
// timeout; none of the flows are long-running.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return hc.Do(req)
}

type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// CreateWorkspace asks the server for a fresh workspace and returns its code.
func (c *Client) CreateWorkspace(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/workspaces", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !out.OK {
		return "", fmt.Errorf("create workspace: server returned %d: %s", resp.StatusCode, out.Error)
	}
	return out.Code, nil
}

// FetchPlan loads the seed data for a workspace: the saved form header and
// one seed per goal group.
func (c *Client) FetchPlan(ctx context.Context, code string) (model.Objectives, []plan.Seed, error) {
	if strings.TrimSpace(code) == "" {
		return model.Objectives{}, nil, ErrEmptyCode
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/plan/"+url.PathEscape(code), nil)
	if err != nil {
		return model.Objectives{}, nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return model.Objectives{}, nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.Objectives{}, nil, fmt.Errorf("fetch plan: server returned %d", resp.StatusCode)
	}
	var payload web.PlanPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.Objectives{}, nil, fmt.Errorf("fetch plan: %w", err)
	}
	seeds := make([]plan.Seed, 0, len(payload.Groups))
	for _, g := range payload.Groups {
		seeds = append(seeds, plan.Seed{Index: g.Index, LongTerm: g.LongTerm, ShortTerms: g.ShortTerms})
	}
	obj := payload.Objectives
	obj.Category = model.NormalizeCategory(string(obj.Category))
	return obj, seeds, nil
}

// SaveObjectives submits the editor's state through the same form endpoint
// the hosted page posts to, so both clients share one parser and one set of
// validation rules.
func (c *Client) SaveObjectives(ctx context.Context, code string, obj model.Objectives, groups []model.GoalGroup) error {
	if strings.TrimSpace(code) == "" {
		return ErrEmptyCode
	}
	form := url.Values{
		"target_date":   {obj.TargetDate},
		"teaching_goal": {obj.TeachingGoal},
		"category":      {string(obj.Category)},
	}
	for _, g := range groups {
		form.Set(fmt.Sprintf("long_term_goal_%d", g.Index), g.LongTerm)
		key := fmt.Sprintf("short_term_%d[]", g.Index)
		for _, st := range g.ShortTerms {
			form.Add(key, st)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/objectives/"+url.PathEscape(code), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// The form endpoint answers with a redirect; anything in the 4xx/5xx
	// range means the save did not happen.
	if resp.StatusCode >= 400 {
		return fmt.Errorf("save objectives: server returned %d", resp.StatusCode)
	}
	return nil
}

// AckCode confirms the user has written the workspace code down. Any 2xx
// counts as success.
func (c *Client) AckCode(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/ack-code", nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ack code: server returned %d", resp.StatusCode)
	}
	return nil
}

// Download fetches the workspace's export document and saves it under dir.
// The filename comes from the Content-Disposition header when the server
// offers one (mime.ParseMediaType decodes the RFC 5987 filename* form into
// "filename"), with a fallback derived from the workspace code. On any
// failure nothing is written.
func (c *Client) Download(ctx context.Context, code, dir string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", ErrEmptyCode
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/export/"+url.PathEscape(code), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: server returned %d", resp.StatusCode)
	}

	name := downloadFilename(resp.Header.Get("Content-Disposition"), code)
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func downloadFilename(contentDisposition, code string) string {
	fallback := fmt.Sprintf("教學記錄_代碼%s.txt", code)
	if strings.TrimSpace(contentDisposition) == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(contentDisposition)
	if err != nil {
		return fallback
	}
	name := strings.TrimSpace(params["filename"])
	if name == "" {
		return fallback
	}
	// Never let a header hint escape the target directory.
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return fallback
	}
	return name
}

// DeleteWorkspace removes the draft on the server. A blank code is rejected
// locally; no request is made.
func (c *Client) DeleteWorkspace(ctx context.Context, code string) error {
	if strings.TrimSpace(code) == "" {
		return ErrEmptyCode
	}
	b, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/delete-workspace", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !out.OK {
		msg := out.Error
		if msg == "" {
			msg = fmt.Sprintf("server returned %d", resp.StatusCode)
		}
		return fmt.Errorf("delete workspace: %s", msg)
	}
	return nil
}
