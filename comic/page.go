package comic

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"html/template"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ancientlore/inkwell/schedule"
	"github.com/russross/blackfriday/v2"
)

// Body files, in order of preference.
const (
	BodyFile     = "post.html"
	MarkdownFile = "post.md"
)

// Page is the render-ready record of one post.
type Page struct {
	Post
	Links

	Alt            template.HTML // HTML-escaped alt text
	Body           template.HTML // post body markup
	ComicPath      string        // comic image, relative to the site root
	ThumbnailPath  string        // derived thumbnail, relative to the site root
	LowQualityPath string        // derived low-quality image, relative to the site root
}

// MarshalJSON writes the post fields as Post does, followed by the
// navigation, the body and the asset paths.
func (p Page) MarshalJSON() ([]byte, error) {
	m := p.Post.fields()
	m["first"] = p.First
	m["previous"] = p.Previous
	m["next"] = p.Next
	m["last"] = p.Last
	m["body"] = string(p.Body)
	m["comic_path"] = p.ComicPath
	m["thumbnail_path"] = p.ThumbnailPath
	m["low_quality_path"] = p.LowQualityPath
	return json.Marshal(m)
}

// PageOptions controls how asset paths are derived.
type PageOptions struct {
	AssetDir       string // content directory as a slash path relative to the site root
	LowQualityType string // file type of low-quality images, such as "jpg"
}

// ThumbnailName returns the thumbnail file name derived from an image name.
func ThumbnailName(filename string) string {
	return strings.TrimSuffix(filename, path.Ext(filename)) + "_thumbnail.jpg"
}

// LowQualityName returns the low-quality file name derived from an image name.
func LowQualityName(filename, fileType string) string {
	return strings.TrimSuffix(filename, path.Ext(filename)) + "_low_quality." + strings.ToLower(fileType)
}

// NewPage builds the page for the post stored in dir.
func NewPage(dir string, p Post, links Links, opts PageOptions) (*Page, error) {
	body, err := readBody(dir)
	if err != nil {
		return nil, err
	}
	lq := opts.LowQualityType
	if lq == "" {
		lq = "jpg"
	}
	base := path.Join(opts.AssetDir, p.ID)
	return &Page{
		Post:           p,
		Links:          links,
		Alt:            template.HTML(html.EscapeString(p.AltText)),
		Body:           body,
		ComicPath:      path.Join(base, p.Filename),
		ThumbnailPath:  path.Join(base, ThumbnailName(p.Filename)),
		LowQualityPath: path.Join(base, LowQualityName(p.Filename, lq)),
	}, nil
}

// readBody returns post.html as is, or post.md rendered to HTML.
func readBody(dir string) (template.HTML, error) {
	name, err := schedule.Locate(dir, BodyFile)
	if err == nil {
		b, err := os.ReadFile(name)
		if err != nil {
			return "", fmt.Errorf("readBody: %w", err)
		}
		return template.HTML(b), nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("readBody: %w", err)
	}
	name, err = schedule.Locate(dir, MarkdownFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &MissingFileError{Path: filepath.Join(dir, BodyFile)}
		}
		return "", fmt.Errorf("readBody: %w", err)
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("readBody: %w", err)
	}
	return RenderMarkdown(b), nil
}

// RenderMarkdown converts Markdown to HTML.
func RenderMarkdown(b []byte) template.HTML {
	return template.HTML(blackfriday.Run(b, blackfriday.WithExtensions(blackfriday.CommonExtensions|blackfriday.Footnotes)))
}

// BuildPages builds a page for every post in seq. Post directories are
// found under contentDir.
func BuildPages(contentDir string, seq Sequence, opts PageOptions) ([]Page, error) {
	pages := make([]Page, 0, len(seq))
	for i := range seq {
		log.Printf("Building page %s...", seq[i].ID)
		pg, err := NewPage(filepath.Join(contentDir, seq[i].ID), seq[i], seq.Links(i), opts)
		if err != nil {
			return nil, err
		}
		pages = append(pages, *pg)
	}
	return pages, nil
}
