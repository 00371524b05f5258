// internal/github/client.go
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	custom_errors "github-test-metrics/internal/errors"
	"github-test-metrics/internal/model"
)

const (
	// DefaultMaxPages bounds the number of issue pages fetched per repository.
	DefaultMaxPages = 10
	// DefaultMaxTreeRequests bounds the sub-tree walk used for truncated trees.
	DefaultMaxTreeRequests = 200

	perPage = 100
)

// Client is a wrapper around the go-github client.
type Client struct {
	gh              *github.Client
	logger          *slog.Logger
	maxPages        int
	maxTreeRequests int
}

type options struct {
	baseURL         string
	httpClient      *http.Client
	maxPages        int
	maxTreeRequests int
}

// Option configures a Client.
type Option func(*options)

// WithBaseURL points the client at a different API root, e.g. GitHub Enterprise.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithHTTPClient sets the underlying transport. The bearer token is layered on top of it.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithMaxPages bounds issue pagination. Values below 1 are ignored.
func WithMaxPages(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPages = n
		}
	}
}

// WithMaxTreeRequests bounds the truncated-tree walk. Values below 1 are ignored.
func WithMaxTreeRequests(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxTreeRequests = n
		}
	}
}

// NewClient creates and configures a new Client instance.
// A non-empty token is sent as a bearer token on every request; an empty one
// leaves requests unauthenticated.
func NewClient(token string, logger *slog.Logger, opts ...Option) (*Client, error) {
	o := options{maxPages: DefaultMaxPages, maxTreeRequests: DefaultMaxTreeRequests}
	for _, opt := range opts {
		opt(&o)
	}

	hc := o.httpClient
	if token != "" {
		ctx := context.Background()
		if hc != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)
		}
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token, TokenType: "Bearer"},
		)
		hc = oauth2.NewClient(ctx, ts)
	} else {
		logger.Warn("GITHUB_TOKEN is not set, requests will be unauthenticated")
	}

	gh := github.NewClient(hc)
	if o.baseURL != "" {
		base := o.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url %q: %w", o.baseURL, err)
		}
		gh.BaseURL = u
	}

	return &Client{
		gh:              gh,
		logger:          logger,
		maxPages:        o.maxPages,
		maxTreeRequests: o.maxTreeRequests,
	}, nil
}

// FetchJSON issues an authenticated GET for path (relative to the API root) and
// decodes the JSON body into v. Transport failures and non-2xx statuses are
// returned as *errors.RequestError.
func (c *Client) FetchJSON(ctx context.Context, p string, query url.Values, v any) (*github.Response, error) {
	u := p
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := c.gh.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, &custom_errors.RequestError{Method: http.MethodGet, URL: u, Err: err}
	}

	c.logger.Debug("GitHub request", "url", req.URL.String())
	resp, err := c.gh.Do(ctx, req, v)
	if err != nil {
		rerr := &custom_errors.RequestError{Method: http.MethodGet, URL: req.URL.String(), Err: err}
		if resp != nil && resp.Response != nil {
			rerr.StatusCode = resp.StatusCode
		}
		return resp, rerr
	}
	return resp, nil
}

// ListBlobPaths returns the lowercased path of every blob at HEAD.
func (c *Client) ListBlobPaths(ctx context.Context, owner, name string) ([]string, error) {
	var tree github.Tree
	_, err := c.FetchJSON(ctx, treePath(owner, name, "HEAD"), url.Values{"recursive": {"1"}}, &tree)
	if err != nil {
		return nil, err
	}

	if !tree.GetTruncated() {
		return blobPaths("", tree.Entries), nil
	}

	c.logger.Warn("Recursive tree was truncated, walking sub-trees", "owner", owner, "repo", name, "entries", len(tree.Entries))
	return c.walkTree(ctx, owner, name, "HEAD")
}

type pendingTree struct {
	sha    string
	prefix string
}

// walkTree lists a tree one level at a time. It stops after maxTreeRequests
// requests and returns whatever was collected so far.
func (c *Client) walkTree(ctx context.Context, owner, name, root string) ([]string, error) {
	var paths []string
	queue := []pendingTree{{sha: root}}
	requests := 0

	for len(queue) > 0 {
		if requests >= c.maxTreeRequests {
			c.logger.Warn("Tree walk limit reached, file list is incomplete",
				"owner", owner, "repo", name, "limit", c.maxTreeRequests, "pending", len(queue))
			break
		}
		next := queue[0]
		queue = queue[1:]

		var tree github.Tree
		if _, err := c.FetchJSON(ctx, treePath(owner, name, next.sha), nil, &tree); err != nil {
			return nil, err
		}
		requests++

		paths = append(paths, blobPaths(next.prefix, tree.Entries)...)
		for _, e := range tree.Entries {
			if e.GetType() == "tree" {
				queue = append(queue, pendingTree{sha: e.GetSHA(), prefix: path.Join(next.prefix, e.GetPath())})
			}
		}
	}
	return paths, nil
}

// ListClosedBugIssues returns closed issues labelled "bug", following
// pagination until exhausted or maxPages pages have been read. The result can
// still contain pull requests; callers filter them.
func (c *Client) ListClosedBugIssues(ctx context.Context, owner, name string) ([]model.IssueRecord, error) {
	var all []model.IssueRecord

	query := url.Values{
		"state":    {"closed"},
		"labels":   {"bug"},
		"per_page": {strconv.Itoa(perPage)},
	}

	for pages := 1; ; pages++ {
		c.logger.Debug("Fetching issues page", "owner", owner, "repo", name, "page", query.Get("page"))

		var batch []model.IssueRecord
		resp, err := c.FetchJSON(ctx, fmt.Sprintf("repos/%s/%s/issues", url.PathEscape(owner), url.PathEscape(name)), query, &batch)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)

		if resp.NextPage == 0 {
			break
		}
		if pages >= c.maxPages {
			c.logger.Warn("Issue page limit reached, results are incomplete",
				"owner", owner, "repo", name, "max_pages", c.maxPages)
			break
		}
		query.Set("page", strconv.Itoa(resp.NextPage))
	}

	return all, nil
}

func treePath(owner, name, sha string) string {
	return fmt.Sprintf("repos/%s/%s/git/trees/%s", url.PathEscape(owner), url.PathEscape(name), url.PathEscape(sha))
}

func blobPaths(prefix string, entries []*github.TreeEntry) []string {
	var paths []string
	for _, e := range entries {
		if e.GetType() != "blob" {
			continue
		}
		p := e.GetPath()
		if prefix != "" {
			p = path.Join(prefix, p)
		}
		paths = append(paths, strings.ToLower(p))
	}
	return paths
}
