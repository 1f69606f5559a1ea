package build

import (
	"bufio"
	"fmt"
	"os"

	"github.com/ancientlore/inkwell/config"
	"github.com/ancientlore/inkwell/feed"
)

// SitemapFile is where the sitemap is written, relative to the site root.
const SitemapFile = "sitemap.txt"

// writeSitemap lists the absolute URL of every generated page, one per
// line. Scheduled posts have no page and are never listed. Nothing is
// written when the site has no URL.
func writeSitemap(name string, cfg *config.Site, files []string) (bool, error) {
	if cfg.Comic.URL == "" {
		return false, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return false, fmt.Errorf("writeSitemap: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, p := range files {
		if p == "index.html" {
			p = ""
		}
		fmt.Fprintln(w, feed.URL(cfg.Comic.URL, p))
	}
	err = w.Flush()
	if err != nil {
		f.Close()
		return false, fmt.Errorf("writeSitemap: %w", err)
	}
	return true, f.Close()
}
