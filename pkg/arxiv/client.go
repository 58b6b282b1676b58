package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://export.arxiv.org/api/query"

// Client talks to the arXiv Atom API. The zero value is not usable; use
// NewClient.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Paper is one result entry from the arXiv feed.
type Paper struct {
	ID        string
	Title     string
	Authors   []string
	Abstract  string
	Published string
	URL       string
}

// --- Atom feed structs (internal to this package) ---

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
	Links     []atomLink   `xml:"link"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

// BuildQuery renders keywords into the arXiv search syntax, quoting each
// term so multi-word keywords stay one unit:
//
//	all:"stem cells" AND all:"neurodegeneration"
func BuildQuery(keywords []string) string {
	terms := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		terms = append(terms, fmt.Sprintf("all:%q", kw))
	}
	return strings.Join(terms, " AND ")
}

// Search queries arXiv for papers matching the keywords, most relevant
// first. An empty keyword list returns no papers without hitting the API.
func (c *Client) Search(ctx context.Context, keywords []string, maxResults int) ([]Paper, error) {
	query := BuildQuery(keywords)
	if query == "" {
		return nil, nil
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	params := url.Values{}
	params.Set("search_query", query)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprintf("%d", maxResults))
	params.Set("sortBy", "relevance")
	params.Set("sortOrder", "descending")

	reqURL := c.BaseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arxiv request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var feed atomFeed
	if err := xml.Unmarshal(bodyBytes, &feed); err != nil {
		return nil, fmt.Errorf("unmarshal feed: %w", err)
	}

	papers := make([]Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		papers = append(papers, entryToPaper(entry))
	}
	return papers, nil
}

func entryToPaper(entry atomEntry) Paper {
	p := Paper{
		ID:        shortID(entry.ID),
		Title:     normalizeSpace(entry.Title),
		Abstract:  normalizeSpace(entry.Summary),
		Published: entry.Published,
		URL:       entry.ID,
	}
	for _, a := range entry.Authors {
		p.Authors = append(p.Authors, normalizeSpace(a.Name))
	}
	// Prefer the alternate link when present; the entry id doubles as the
	// abstract URL otherwise.
	for _, l := range entry.Links {
		if l.Rel == "alternate" {
			p.URL = l.Href
			break
		}
	}
	return p
}

// shortID strips the host prefix from an entry id like
// "http://arxiv.org/abs/2301.00001v1".
func shortID(id string) string {
	if i := strings.LastIndex(id, "/abs/"); i >= 0 {
		return id[i+len("/abs/"):]
	}
	return id
}

// normalizeSpace collapses the newline-wrapped text arXiv returns into
// single-spaced prose.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
