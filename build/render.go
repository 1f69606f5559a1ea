package build

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ancientlore/inkwell/comic"
	"github.com/ancientlore/inkwell/config"
	"github.com/ncruces/go-strftime"
)

//go:embed templates/*.html
var defaultTemplates embed.FS

// AutogenerateWarning is passed to every template so generated files carry it.
const AutogenerateWarning = template.HTML(`<!--
!! DO NOT EDIT THIS FILE !!
It is generated and any work you do here will be replaced the next time the site is built.
Edit the templates instead.
-->
`)

// pageData is what is passed to page templates.
type pageData struct {
	AutogenerateWarning template.HTML
	ComicTitle          string          // name of the comic
	Description         string          // description of the comic
	URL                 string          // absolute URL of the site
	BaseDir             string          // directory the site is served under
	Links               []config.Link   // links bar, with paths resolved
	PageTitle           string          // title of this page
	Comic               *comic.Page     // current comic; the latest one on site pages
	Pages               []comic.Page    // every visible comic in order
	ArchiveSections     []comic.Section // comics grouped by tag
	UseThumbnails       bool            // show thumbnails in archives
	ScheduledPostCount  int             // posts waiting to be published
}

// loadTemplates parses the HTML templates in dir, or the default templates
// if dir does not exist. Each file is a template named by its file name.
func loadTemplates(dir string, funcMap template.FuncMap) (*template.Template, error) {
	var (
		tpl *template.Template
		err error
	)
	fi, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !fi.IsDir()) {
		log.Printf("No template folder %q found; using default templates.", dir)
		tpl, err = template.New("inkwell").Funcs(funcMap).ParseFS(defaultTemplates, "templates/*.html")
	} else if err == nil {
		tpl, err = template.New("inkwell").Funcs(funcMap).ParseFS(os.DirFS(dir), "*.html")
	}
	if err != nil {
		return nil, fmt.Errorf("loadTemplates: %w", err)
	}
	return tpl, nil
}

// funcMap returns the template functions for the site.
func funcMap(cfg *config.Site) template.FuncMap {
	format := cfg.DateFormat()
	return template.FuncMap{
		"path":      cfg.Path,
		"join":      path.Join,
		"date":      format.Format,
		"datefmt":   datefmt,
		"markdown":  markdown,
		"reverse":   reverse,
		"trimspace": strings.TrimSpace,
		"entry":     entry,
	}
}

// archiveEntry is a page listed in an archive.
type archiveEntry struct {
	comic.Page
	UseThumbnails bool
}

// entry pairs a page with the thumbnail setting for archive listings.
func entry(p comic.Page, thumbs bool) archiveEntry {
	return archiveEntry{Page: p, UseThumbnails: thumbs}
}

// datefmt formats t with a strftime specification.
func datefmt(spec string, t time.Time) string {
	return strftime.Format(spec, t)
}

// markdown renders s as Markdown.
func markdown(s string) template.HTML {
	return comic.RenderMarkdown([]byte(s))
}

// reverse returns the pages in reverse order, leaving p as is.
func reverse(p []comic.Page) []comic.Page {
	r := make([]comic.Page, len(p))
	for i := range p {
		r[len(p)-1-i] = p[i]
	}
	return r
}

// renderer writes pages from the site templates.
type renderer struct {
	tpl  *template.Template
	root string
	base pageData
}

func newRenderer(tpl *template.Template, root string, cfg *config.Site) *renderer {
	links := make([]config.Link, len(cfg.Links))
	for i, l := range cfg.Links {
		links[i] = config.Link{Name: l.Name, URL: cfg.Path(l.URL)}
	}
	return &renderer{
		tpl:  tpl,
		root: root,
		base: pageData{
			AutogenerateWarning: AutogenerateWarning,
			ComicTitle:          cfg.Comic.Name,
			Description:         cfg.Comic.Description,
			URL:                 cfg.Comic.URL,
			BaseDir:             cfg.BaseDir(),
			Links:               links,
			UseThumbnails:       cfg.Archive.UseThumbnails,
		},
	}
}

// render executes the template named name into out, relative to the site
// root. A missing template is logged and skipped; render then returns false.
func (r *renderer) render(name, out string, data pageData) (bool, error) {
	t := r.tpl.Lookup(name)
	if t == nil {
		log.Printf("Template file %s not found", name)
		return false, nil
	}
	var buf bytes.Buffer
	err := t.Execute(&buf, data)
	if err != nil {
		return false, fmt.Errorf("render %s: %w", out, err)
	}
	err = os.WriteFile(filepath.Join(r.root, filepath.FromSlash(out)), buf.Bytes(), 0644)
	if err != nil {
		return false, fmt.Errorf("render: %w", err)
	}
	return true, nil
}

// comicPages writes comic/<id>.html for every page.
func (r *renderer) comicPages(pages []comic.Page) ([]string, error) {
	var written []string
	log.Printf("Writing %d comic pages...", len(pages))
	for i := range pages {
		data := r.base
		data.PageTitle = pages[i].Title
		data.Comic = &pages[i]
		out := path.Join("comic", pages[i].ID+".html")
		ok, err := r.render("comic.html", out, data)
		if err != nil {
			return written, err
		}
		if !ok {
			// the same template is missing for every page
			break
		}
		written = append(written, out)
	}
	return written, nil
}

// sitePages writes the configured pages with the latest comic as current.
func (r *renderer) sitePages(pageCfg []config.Page, pages []comic.Page, sections []comic.Section, scheduled int) ([]string, error) {
	var written []string
	for _, p := range pageCfg {
		data := r.base
		data.Pages = pages
		data.ArchiveSections = sections
		data.ScheduledPostCount = scheduled
		data.PageTitle = data.ComicTitle
		if len(pages) > 0 {
			data.Comic = &pages[len(pages)-1]
			data.PageTitle = data.Comic.Title
		}
		if p.Title != "" {
			data.PageTitle = p.Title
		}
		out := p.Template + ".html"
		log.Printf("Writing %s...", out)
		ok, err := r.render(p.Template+".html", out, data)
		if err != nil {
			return written, err
		}
		if ok {
			written = append(written, out)
		}
	}
	return written, nil
}
