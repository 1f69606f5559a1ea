// Package feed writes the RSS 2.0 feed of a comic.
package feed

import (
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/ancientlore/inkwell/comic"
)

// Channel describes the feed.
type Channel struct {
	Title       string
	Link        string // absolute URL of the site
	Description string
	Language    string
}

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	GUID        rssGUID  `xml:"guid"`
	Categories  []string `xml:"category"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// URL joins the site link and a slash path.
func URL(base, p string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(p, "/")
}

// Write writes the feed for pages, newest first. When maxItems is positive
// only that many items are written.
func Write(w io.Writer, ch Channel, pages []comic.Page, maxItems int) error {
	n := len(pages)
	if maxItems > 0 && maxItems < n {
		n = maxItems
	}
	items := make([]rssItem, 0, n)
	for i := len(pages) - 1; i >= 0 && len(items) < n; i-- {
		items = append(items, newItem(ch.Link, &pages[i]))
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       ch.Title,
			Link:        ch.Link,
			Description: ch.Description,
			Language:    ch.Language,
			Items:       items,
		},
	}
	if len(pages) > 0 {
		feed.Channel.LastBuildDate = pages[len(pages)-1].Date.Format(time.RFC1123Z)
	}
	_, err := io.WriteString(w, xml.Header)
	if err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	err = enc.Encode(feed)
	if err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	return nil
}

func newItem(base string, p *comic.Page) rssItem {
	link := URL(base, "comic/"+p.ID+".html")
	desc := fmt.Sprintf(`<p><img src="%s" alt="%s"></p>`, html.EscapeString(URL(base, p.ComicPath)), p.Alt)
	return rssItem{
		Title:       p.Title,
		Link:        link,
		Description: desc + string(p.Body),
		PubDate:     p.Date.Format(time.RFC1123Z),
		GUID:        rssGUID{IsPermaLink: true, Value: link},
		Categories:  p.Tags,
	}
}
