/*
Package build generates the static site of a comic in one pass.

Run reads every post under the content directory, hides the ones scheduled
for later, and writes:

	comic/page_info_list.json   manifest of visible posts
	comic/<id>.html             one page per visible post
	<page>.html                 each configured site page
	feed.xml                    RSS feed
	sitemap.txt                 URL of every page, when the site has a URL

Everything Run writes is removed by Clean before it starts, so a build never
mixes output from two runs. The first error stops the build.
*/
package build

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ancientlore/inkwell/comic"
	"github.com/ancientlore/inkwell/config"
	"github.com/ancientlore/inkwell/feed"
)

// FeedFile is where the feed is written, relative to the site root.
const FeedFile = "feed.xml"

// Options controls a build.
type Options struct {
	Root   string       // site root
	Config *config.Site // validated site configuration
	Now    time.Time    // posts dated after Now are scheduled
}

// Result summarizes a finished build.
type Result struct {
	Posts     int      // visible posts
	Scheduled int      // posts dated after Now
	Images    int      // derived image files written
	Files     []string // generated files, relative to the site root
	Timings   []Timing // duration of each step
}

// Timing is how long one build step took.
type Timing struct {
	Step     string
	Duration time.Duration
}

// timer records step durations.
type timer struct {
	start time.Time
	last  time.Time
	steps []Timing
}

func newTimer() *timer {
	now := time.Now()
	return &timer{start: now, last: now}
}

func (t *timer) mark(step string) {
	now := time.Now()
	t.steps = append(t.steps, Timing{Step: step, Duration: now.Sub(t.last)})
	t.last = now
}

func (t *timer) log() {
	for _, s := range t.steps {
		log.Printf("%s: %.2f ms", s.Step, float64(s.Duration.Microseconds())/1000)
	}
	log.Printf("Total time: %.2f ms", float64(t.last.Sub(t.start).Microseconds())/1000)
}

// Run builds the site.
func Run(opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("Run: missing config")
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	tm := newTimer()
	res := &Result{}
	contentDir := filepath.Join(opts.Root, filepath.FromSlash(cfg.Settings.ContentDir))

	tpl, err := loadTemplates(filepath.Join(opts.Root, filepath.FromSlash(cfg.Settings.TemplateDir)), funcMap(cfg))
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded templates: %s", tpl.DefinedTemplates())
	tm.mark("Load templates")

	err = Clean(opts.Root, cfg)
	if err != nil {
		return nil, err
	}
	tm.mark("Clean output")

	seq, scheduled, err := comic.Scan(contentDir, now, comic.ScanOptions{
		Format:     cfg.DateFormat(),
		ShowHidden: !cfg.Settings.HideScheduledPosts,
	})
	if err != nil {
		return nil, err
	}
	res.Posts, res.Scheduled = len(seq), scheduled
	tm.mark("Scan posts")

	err = WriteManifest(filepath.Join(opts.Root, filepath.FromSlash(ManifestFile)), seq, scheduled)
	if err != nil {
		return nil, err
	}
	res.Files = append(res.Files, ManifestFile)
	tm.mark("Write manifest")

	pages, err := comic.BuildPages(contentDir, seq, comic.PageOptions{
		AssetDir:       cfg.AssetDir(),
		LowQualityType: cfg.Images.LowQualityFileType,
	})
	if err != nil {
		return nil, err
	}
	tm.mark("Build pages")

	res.Images, err = deriveImages(contentDir, cfg, pages)
	if err != nil {
		return nil, err
	}
	tm.mark("Process images")

	r := newRenderer(tpl, opts.Root, cfg)
	htmlFiles, err := r.comicPages(pages)
	if err != nil {
		return nil, err
	}
	tm.mark("Write comic pages")

	sections := comic.Archive(cfg.Sections(), pages)
	written, err := r.sitePages(cfg.Pages, pages, sections, scheduled)
	if err != nil {
		return nil, err
	}
	htmlFiles = append(htmlFiles, written...)
	res.Files = append(res.Files, htmlFiles...)
	tm.mark("Write site pages")

	err = writeFeed(filepath.Join(opts.Root, FeedFile), cfg, pages)
	if err != nil {
		return nil, err
	}
	res.Files = append(res.Files, FeedFile)
	tm.mark("Write feed")

	ok, err := writeSitemap(filepath.Join(opts.Root, SitemapFile), cfg, htmlFiles)
	if err != nil {
		return nil, err
	}
	if ok {
		res.Files = append(res.Files, SitemapFile)
	}
	tm.mark("Write sitemap")

	tm.log()
	res.Timings = tm.steps
	return res, nil
}

func writeFeed(name string, cfg *config.Site, pages []comic.Page) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("writeFeed: %w", err)
	}
	err = feed.Write(f, feed.Channel{
		Title:       cfg.Comic.Name,
		Link:        cfg.Comic.URL,
		Description: cfg.Comic.Description,
		Language:    cfg.Comic.Language,
	}, pages, cfg.Feed.MaxItems)
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Clean removes the output of a previous build: the comic directory, the
// feed, the sitemap and every configured page.
func Clean(root string, cfg *config.Site) error {
	err := os.RemoveAll(filepath.Join(root, "comic"))
	if err != nil {
		return fmt.Errorf("Clean: %w", err)
	}
	names := []string{FeedFile, SitemapFile}
	for _, p := range cfg.Pages {
		names = append(names, p.Template+".html")
	}
	for _, name := range names {
		err = os.Remove(filepath.Join(root, name))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("Clean: %w", err)
		}
	}
	return nil
}
