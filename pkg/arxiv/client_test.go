package arxiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>ArXiv Query Results</title>
  <entry>
    <id>http://arxiv.org/abs/2301.00001v1</id>
    <title>Induced Pluripotent Stem Cells in
  Neurodegeneration Research</title>
    <summary>  We survey recent applications of iPSC
  models to neurodegenerative disease.  </summary>
    <published>2023-01-02T10:00:00Z</published>
    <author><name>Jane Roe</name></author>
    <author><name>Alex Chen</name></author>
    <link href="http://arxiv.org/abs/2301.00001v1" rel="alternate" type="text/html"/>
    <link href="http://arxiv.org/pdf/2301.00001v1" rel="related" type="application/pdf"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2302.04242v2</id>
    <title>Modeling Disease Progression</title>
    <summary>A second entry.</summary>
    <published>2023-02-08T08:30:00Z</published>
    <author><name>Sam Okafor</name></author>
  </entry>
</feed>`

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		want     string
	}{
		{
			name:     "single keyword",
			keywords: []string{"iPSC"},
			want:     `all:"iPSC"`,
		},
		{
			name:     "multiple keywords joined with AND",
			keywords: []string{"iPSC", "neurodegeneration"},
			want:     `all:"iPSC" AND all:"neurodegeneration"`,
		},
		{
			name:     "multi word keyword stays quoted as one unit",
			keywords: []string{"stem cells", "disease"},
			want:     `all:"stem cells" AND all:"disease"`,
		},
		{
			name:     "blank keywords are skipped",
			keywords: []string{"", "  ", "iPSC"},
			want:     `all:"iPSC"`,
		},
		{
			name:     "no keywords",
			keywords: nil,
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildQuery(tt.keywords)
			if got != tt.want {
				t.Errorf("BuildQuery(%v) = %q, want %q", tt.keywords, got, tt.want)
			}
		})
	}
}

func TestSearchParsesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("search_query"); got != `all:"iPSC" AND all:"neurodegeneration"` {
			t.Errorf("search_query = %q", got)
		}
		if got := q.Get("sortBy"); got != "relevance" {
			t.Errorf("sortBy = %q", got)
		}
		if got := q.Get("max_results"); got != "5" {
			t.Errorf("max_results = %q", got)
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	papers, err := c.Search(context.Background(), []string{"iPSC", "neurodegeneration"}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(papers) != 2 {
		t.Fatalf("expected 2 papers, got %d", len(papers))
	}

	first := papers[0]
	if first.ID != "2301.00001v1" {
		t.Errorf("ID = %q", first.ID)
	}
	if first.Title != "Induced Pluripotent Stem Cells in Neurodegeneration Research" {
		t.Errorf("title not normalized: %q", first.Title)
	}
	if first.Abstract != "We survey recent applications of iPSC models to neurodegenerative disease." {
		t.Errorf("abstract not normalized: %q", first.Abstract)
	}
	if len(first.Authors) != 2 || first.Authors[0] != "Jane Roe" {
		t.Errorf("authors = %v", first.Authors)
	}
	if first.URL != "http://arxiv.org/abs/2301.00001v1" {
		t.Errorf("URL = %q", first.URL)
	}

	// Second entry has no alternate link, so the entry id serves as URL.
	if papers[1].URL != "http://arxiv.org/abs/2302.04242v2" {
		t.Errorf("fallback URL = %q", papers[1].URL)
	}
}

func TestSearchEmptyKeywordsSkipsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be made for empty keywords")
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	papers, err := c.Search(context.Background(), nil, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 0 {
		t.Fatalf("expected no papers, got %d", len(papers))
	}
}

func TestSearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Search(context.Background(), []string{"iPSC"}, 5)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}
