package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/AnyUserName/fotosync/internal/config"
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// GitHubStore writes files into a repository through the contents API.
// The revision token is the blob SHA the API reports for a path.
type GitHubStore struct {
	token   string
	repo    string
	branch  string
	base    string
	apiBase string
	rawBase string
	client  *http.Client
}

func NewGitHubStore(cfg config.GitHubConfig, baseFolder string, client *http.Client) *GitHubStore {
	if client == nil {
		client = &http.Client{}
	}
	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = "https://api.github.com"
	}
	rawBase := cfg.RawBase
	if rawBase == "" {
		rawBase = "https://raw.githubusercontent.com"
	}
	return &GitHubStore{
		token:   cfg.Token,
		repo:    cfg.Repo,
		branch:  cfg.Branch,
		base:    strings.Trim(baseFolder, "/"),
		apiBase: strings.TrimRight(apiBase, "/"),
		rawBase: strings.TrimRight(rawBase, "/"),
		client:  client,
	}
}

func (s *GitHubStore) Name() string { return "github:" + s.repo }

// objectPath joins the base folder and path, escaping each segment.
func (s *GitHubStore) objectPath(path string) string {
	var segs []string
	for _, p := range strings.Split(s.base+"/"+path, "/") {
		if p != "" {
			segs = append(segs, url.PathEscape(p))
		}
	}
	return strings.Join(segs, "/")
}

func (s *GitHubStore) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/contents/%s", s.apiBase, s.repo, s.objectPath(path))
}

func (s *GitHubStore) newRequest(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (s *GitHubStore) Stat(ctx context.Context, path string) (Object, error) {
	u := s.contentsURL(path) + "?ref=" + url.QueryEscape(s.branch)
	req, err := s.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Object{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Object{}, fmt.Errorf("failed to call github: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return Object{}, nil
	case http.StatusOK:
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Object{}, &PublishError{Path: path, Status: resp.StatusCode, Body: string(body)}
	}

	var meta struct {
		SHA string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return Object{}, fmt.Errorf("failed to decode contents response: %w", err)
	}
	return Object{Exists: true, Revision: meta.SHA}, nil
}

func (s *GitHubStore) Put(ctx context.Context, r PutRequest) error {
	body := struct {
		Message string `json:"message"`
		Content string `json:"content"`
		Branch  string `json:"branch"`
		SHA     string `json:"sha,omitempty"`
	}{
		Message: r.Message,
		Content: base64.StdEncoding.EncodeToString(r.Content),
		Branch:  s.branch,
		SHA:     r.Revision,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPut, s.contentsURL(r.Path), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call github: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &PublishError{Path: r.Path, Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// PublicURL is the raw-content URL of path on the configured branch.
func (s *GitHubStore) PublicURL(path string) string {
	return fmt.Sprintf("%s/%s/%s/%s", s.rawBase, s.repo, s.branch, s.objectPath(path))
}
