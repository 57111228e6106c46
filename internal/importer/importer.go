// Package importer prefills a job application from a posting URL.
package importer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrNoTitle means the page yielded no position title
var ErrNoTitle = errors.New("could not extract job title from URL")

const maxBodySize = 2 << 20

// Posting is what could be extracted from a job page
type Posting struct {
	URL         string
	Position    string
	Company     string
	Location    string
	Description string
}

// Renderer returns the HTML of a page after scripts have run
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Importer fetches and parses job postings
type Importer struct {
	client   *http.Client
	renderer Renderer
	logger   *zap.Logger
}

// Option configures an Importer
type Option func(*Importer)

// WithRenderer enables the rendered fallback for pages whose static
// HTML carries no title
func WithRenderer(r Renderer) Option {
	return func(i *Importer) { i.renderer = r }
}

// New creates an Importer
func New(client *http.Client, logger *zap.Logger, opts ...Option) *Importer {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	i := &Importer{client: client, logger: logger}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Import fetches rawURL and extracts a Posting. When the static page has
// no title and a renderer is configured, the page is rendered and parsed
// again.
func (i *Importer) Import(ctx context.Context, rawURL string) (*Posting, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid job URL %q", rawURL)
	}

	page, fetchErr := i.fetch(ctx, u.String())
	posting := Parse(u, page)
	if posting.Position != "" {
		return posting, nil
	}

	if i.renderer == nil {
		if fetchErr != nil {
			return nil, fetchErr
		}
		return nil, ErrNoTitle
	}

	i.logger.Debug("static fetch yielded no title, rendering page", zap.String("url", u.String()), zap.NamedError("fetch_error", fetchErr))
	rendered, err := i.renderer.Render(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	posting = Parse(u, rendered)
	if posting.Position == "" {
		return nil, ErrNoTitle
	}
	return posting, nil
}

func (i *Importer) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	// Some sites block the default Go user agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Jobseeker/1.0)")

	resp, err := i.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch URL: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

var (
	titleRe = regexp.MustCompile(`(?is)<title[^>]*>([^<]+)</title>`)
	metaRe  = regexp.MustCompile(`(?is)<meta\s[^>]*>`)
	attrRe  = regexp.MustCompile(`(?is)(name|property|content)\s*=\s*["']([^"']*)["']`)
)

// Parse extracts a Posting from page, which was served from u
func Parse(u *url.URL, page string) *Posting {
	meta := metaTags(page)
	p := &Posting{URL: u.String()}

	if m := titleRe.FindStringSubmatch(page); len(m) > 1 {
		p.Position = cleanTitle(m[1])
	}
	if p.Position == "" {
		p.Position = cleanTitle(meta["og:title"])
	}

	p.Company = companyFromURL(u)
	if p.Company == "" {
		p.Company = strings.TrimSpace(meta["og:site_name"])
	}
	if p.Company == "" {
		p.Company = companyFromDomain(u.Hostname())
	}

	for _, key := range []string{"job:location", "og:location", "location"} {
		if v := strings.TrimSpace(meta[key]); v != "" {
			p.Location = v
			break
		}
	}

	p.Description = strings.TrimSpace(meta["description"])
	if p.Description == "" {
		p.Description = strings.TrimSpace(meta["og:description"])
	}

	return p
}

// metaTags maps lowercased name/property values to their content
func metaTags(page string) map[string]string {
	tags := map[string]string{}
	for _, tag := range metaRe.FindAllString(page, -1) {
		var key, content string
		for _, a := range attrRe.FindAllStringSubmatch(tag, -1) {
			switch strings.ToLower(a[1]) {
			case "name", "property":
				key = strings.ToLower(a[2])
			case "content":
				content = html.UnescapeString(a[2])
			}
		}
		if key != "" {
			if _, seen := tags[key]; !seen {
				tags[key] = content
			}
		}
	}
	return tags
}

// cleanTitle drops the site suffix from titles like "Engineer - Acme"
func cleanTitle(s string) string {
	s = strings.TrimSpace(html.UnescapeString(s))
	s = strings.Split(s, " - ")[0]
	s = strings.Split(s, " | ")[0]
	return strings.TrimSpace(s)
}

// companyFromURL reads the board slug of hosted job boards:
// boards.greenhouse.io/<company>/... and jobs.lever.co/<company>/...
func companyFromURL(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	if !strings.HasSuffix(host, "greenhouse.io") && !strings.HasSuffix(host, "lever.co") {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return ""
	}
	return titleCase(strings.ReplaceAll(segments[0], "-", " "))
}

func companyFromDomain(host string) string {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	parts := strings.Split(host, ".")
	if len(parts) == 0 || parts[0] == "" {
		return ""
	}
	return titleCase(parts[0])
}

// titleCase converts a string to title case using proper locale-aware capitalization
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
