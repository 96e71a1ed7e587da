package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/parnurzeal/gorequest"
	githubql "github.com/shurcooL/githubv4"
	"golang.org/x/xerrors"
)

const (
	defaultBaseURL   = "https://api.github.com"
	defaultTimeout   = 10 * time.Second
	defaultCacheSize = 512
	perPage          = 100
)

var nextLinkRegexp = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// GraphQLClient is satisfied by *githubv4.Client.
type GraphQLClient interface {
	Query(ctx context.Context, q interface{}, variables map[string]interface{}) error
}

// Client talks to the GitHub REST API for code search and Actions, and
// to the GraphQL API for file contents when a GraphQL client is set.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	graphql GraphQLClient
	cache   *lru.Cache[string, string]
}

type option func(*Client)

func WithBaseURL(u string) option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

func WithTimeout(d time.Duration) option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithGraphQLClient(gc GraphQLClient) option {
	return func(c *Client) {
		c.graphql = gc
	}
}

func WithCacheSize(size int) option {
	return func(c *Client) {
		c.cache, _ = lru.New[string, string](size)
	}
}

func NewClient(token string, opts ...option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		token:   token,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache, _ = lru.New[string, string](defaultCacheSize)
	}
	return c
}

// SearchCode runs a code search and returns the requested page (1-based).
func (c *Client) SearchCode(ctx context.Context, query string, page int) (SearchPage, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))

	resp, body, err := c.get(ctx, "/search/code?"+params.Encode())
	if err != nil {
		return SearchPage{}, &SearchQueryError{Query: query, Page: page, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return SearchPage{}, &SearchQueryError{Query: query, Page: page, StatusCode: resp.StatusCode,
			Err: xerrors.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}

	var sr searchResponse
	if err = json.Unmarshal(body, &sr); err != nil {
		return SearchPage{}, &SearchQueryError{Query: query, Page: page, StatusCode: resp.StatusCode,
			Err: xerrors.Errorf("unable to parse JSON: %w", err)}
	}

	return SearchPage{
		Items:      sr.Items,
		Page:       page,
		NextPage:   nextPage(resp.Header.Get("Link")),
		TotalCount: sr.TotalCount,
	}, nil
}

// FetchFileContent returns the decoded text of a file on the default branch.
func (c *Client) FetchFileContent(ctx context.Context, owner, repo, path string) (string, error) {
	key := owner + "/" + repo + "/" + path
	if content, ok := c.cache.Get(key); ok {
		return content, nil
	}

	var content string
	var err error
	if c.graphql != nil {
		content, err = c.fetchBlob(ctx, owner, repo, path)
	} else {
		content, err = c.fetchContents(ctx, owner, repo, path)
	}
	if err != nil {
		return "", err
	}

	c.cache.Add(key, content)
	return content, nil
}

type blobQuery struct {
	Repository struct {
		Object *struct {
			Blob struct {
				Text     githubql.String
				IsBinary githubql.Boolean
			} `graphql:"... on Blob"`
		} `graphql:"object(expression: $expression)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

func (c *Client) fetchBlob(ctx context.Context, owner, repo, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var q blobQuery
	variables := map[string]interface{}{
		"owner":      githubql.String(owner),
		"name":       githubql.String(repo),
		"expression": githubql.String("HEAD:" + path),
	}
	if err := c.graphql.Query(ctx, &q, variables); err != nil {
		return "", &FileFetchError{Owner: owner, Repo: repo, Path: path, Err: xerrors.Errorf("graphql api error: %w", err)}
	}
	if q.Repository.Object == nil {
		return "", &FileFetchError{Owner: owner, Repo: repo, Path: path, Err: xerrors.New("file not found")}
	}
	if q.Repository.Object.Blob.IsBinary {
		return "", &FileFetchError{Owner: owner, Repo: repo, Path: path, Err: xerrors.New("binary file")}
	}
	return string(q.Repository.Object.Blob.Text), nil
}

func (c *Client) fetchContents(ctx context.Context, owner, repo, path string) (string, error) {
	resp, body, err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/contents/%s", url.PathEscape(owner), url.PathEscape(repo), escapePath(path)))
	if err != nil {
		return "", &FileFetchError{Owner: owner, Repo: repo, Path: path, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &FileFetchError{Owner: owner, Repo: repo, Path: path, StatusCode: resp.StatusCode,
			Err: xerrors.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	var cr contentResponse
	if err = json.Unmarshal(body, &cr); err != nil {
		return "", &FileFetchError{Owner: owner, Repo: repo, Path: path, Err: xerrors.Errorf("unable to parse JSON: %w", err)}
	}
	if cr.Encoding != "base64" {
		return "", &FileFetchError{Owner: owner, Repo: repo, Path: path, Err: xerrors.Errorf("unsupported encoding: %q", cr.Encoding)}
	}
	// GitHub wraps the base64 payload at 60 columns
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(cr.Content, "\n", ""))
	if err != nil {
		return "", &FileFetchError{Owner: owner, Repo: repo, Path: path, Err: xerrors.Errorf("unable to decode content: %w", err)}
	}
	return string(decoded), nil
}

// LatestWorkflowRun returns the most recent run of a workflow file on a
// branch, or nil when there is none.
func (c *Client) LatestWorkflowRun(ctx context.Context, owner, repo, workflowFile, branch string) (*RunSummary, error) {
	params := url.Values{}
	params.Set("branch", branch)
	params.Set("per_page", "1")

	resp, body, err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/actions/workflows/%s/runs?%s",
		url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(workflowFile), params.Encode()))
	if err != nil {
		return nil, xerrors.Errorf("unable to list workflow runs of %s/%s: %w", owner, repo, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, xerrors.Errorf("unable to list workflow runs of %s/%s: unexpected status code: %d", owner, repo, resp.StatusCode)
	}

	var wr workflowRunsResponse
	if err = json.Unmarshal(body, &wr); err != nil {
		return nil, xerrors.Errorf("unable to parse JSON: %w", err)
	}
	if len(wr.WorkflowRuns) == 0 {
		return nil, nil
	}
	return &wr.WorkflowRuns[0], nil
}

// WorkflowJobs lists the jobs of a workflow run.
func (c *Client) WorkflowJobs(ctx context.Context, owner, repo string, runID int64) ([]JobSummary, error) {
	resp, body, err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/actions/runs/%d/jobs?per_page=%d",
		url.PathEscape(owner), url.PathEscape(repo), runID, perPage))
	if err != nil {
		return nil, xerrors.Errorf("unable to list jobs of run %d: %w", runID, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, xerrors.Errorf("unable to list jobs of run %d: unexpected status code: %d", runID, resp.StatusCode)
	}

	var jr jobsResponse
	if err = json.Unmarshal(body, &jr); err != nil {
		return nil, xerrors.Errorf("unable to parse JSON: %w", err)
	}
	return jr.Jobs, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, []byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	req := gorequest.New().Get(c.baseURL+path).
		Timeout(c.timeout).
		Set("Accept", "application/vnd.github+json").
		Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		req.Set("Authorization", "Bearer "+c.token)
	}
	resp, body, errs := req.EndBytes()
	if len(errs) > 0 {
		return nil, nil, xerrors.Errorf("HTTP error. url: %s, err: %w", c.baseURL+path, errs[0])
	}
	return (*http.Response)(resp), body, nil
}

func nextPage(link string) int {
	m := nextLinkRegexp.FindStringSubmatch(link)
	if m == nil {
		return 0
	}
	u, err := url.Parse(m[1])
	if err != nil {
		return 0
	}
	page, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil {
		return 0
	}
	return page
}

func escapePath(p string) string {
	segments := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
