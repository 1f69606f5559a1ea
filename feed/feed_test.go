package feed

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/ancientlore/inkwell/comic"
)

func page(id string, day int, tags ...string) comic.Page {
	return comic.Page{
		Post: comic.Post{
			ID:    id,
			Date:  time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
			Title: "Title " + id,
			Tags:  tags,
		},
		Alt:       "a &amp; b",
		Body:      "<p>body</p>",
		ComicPath: "your_content/comics/" + id + "/page.png",
	}
}

func TestWrite(t *testing.T) {
	pages := []comic.Page{page("one", 1, "A"), page("two", 2), page("three", 3, "A", "B")}
	var buf bytes.Buffer
	ch := Channel{Title: "Test", Link: "https://example.com/test/", Description: "A test", Language: "en"}
	if err := Write(&buf, ch, pages, 0); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), xml.Header) {
		t.Error("Expected XML header")
	}

	var got rssXML
	if err := xml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Version != "2.0" || got.Channel.Title != "Test" || got.Channel.Language != "en" {
		t.Errorf("Unexpected channel %+v", got.Channel)
	}
	if len(got.Channel.Items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(got.Channel.Items))
	}
	first := got.Channel.Items[0]
	if first.Title != "Title three" {
		t.Errorf("Expected newest first, got %q", first.Title)
	}
	if first.Link != "https://example.com/test/comic/three.html" {
		t.Errorf("Unexpected link %q", first.Link)
	}
	if first.GUID.Value != first.Link || !first.GUID.IsPermaLink {
		t.Errorf("Unexpected guid %+v", first.GUID)
	}
	if first.PubDate != "Wed, 03 Jan 2024 00:00:00 +0000" {
		t.Errorf("Unexpected pubDate %q", first.PubDate)
	}
	if len(first.Categories) != 2 || first.Categories[1] != "B" {
		t.Errorf("Unexpected categories %v", first.Categories)
	}
	want := `<p><img src="https://example.com/test/your_content/comics/three/page.png" alt="a &amp; b"></p><p>body</p>`
	if first.Description != want {
		t.Errorf("Unexpected description %q", first.Description)
	}
	if got.Channel.LastBuildDate != first.PubDate {
		t.Errorf("Unexpected lastBuildDate %q", got.Channel.LastBuildDate)
	}
}

func TestWriteMaxItems(t *testing.T) {
	pages := []comic.Page{page("one", 1), page("two", 2), page("three", 3)}
	var buf bytes.Buffer
	if err := Write(&buf, Channel{Link: "https://example.com"}, pages, 2); err != nil {
		t.Fatal(err)
	}
	var got rssXML
	if err := xml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Channel.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(got.Channel.Items))
	}
	if got.Channel.Items[1].Title != "Title two" {
		t.Errorf("Unexpected second item %q", got.Channel.Items[1].Title)
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Channel{Title: "Empty"}, nil, 0); err != nil {
		t.Fatal(err)
	}
	var got rssXML
	if err := xml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Channel.Items) != 0 {
		t.Errorf("Expected no items, got %d", len(got.Channel.Items))
	}
}

func TestURL(t *testing.T) {
	tests := []struct{ base, p, want string }{
		{"https://x.com", "comic/a.html", "https://x.com/comic/a.html"},
		{"https://x.com/", "/comic/a.html", "https://x.com/comic/a.html"},
		{"", "comic/a.html", "/comic/a.html"},
	}
	for _, tt := range tests {
		if got := URL(tt.base, tt.p); got != tt.want {
			t.Errorf("URL(%q, %q): expected %q, got %q", tt.base, tt.p, tt.want, got)
		}
	}
}
