package build

import (
	"log"
	"path/filepath"

	"github.com/ancientlore/inkwell/comic"
	"github.com/ancientlore/inkwell/config"
	"github.com/ancientlore/inkwell/images"
)

// deriveImages writes thumbnails and low-quality copies next to each comic
// image, as enabled in the config.
func deriveImages(contentDir string, cfg *config.Site, pages []comic.Page) (int, error) {
	if !cfg.Images.CreateThumbnails && !cfg.Images.CreateLowQuality {
		return 0, nil
	}
	var n int
	for i := range pages {
		p := &pages[i]
		dir := filepath.Join(contentDir, p.ID)
		src := filepath.Join(dir, p.Filename)
		if cfg.Images.CreateThumbnails {
			err := images.Thumbnail(src, filepath.Join(dir, comic.ThumbnailName(p.Filename)), cfg.ThumbnailSize())
			if err != nil {
				return n, err
			}
			n++
		}
		if cfg.Images.CreateLowQuality {
			err := images.Convert(src, filepath.Join(dir, comic.LowQualityName(p.Filename, cfg.Images.LowQualityFileType)))
			if err != nil {
				return n, err
			}
			n++
		}
	}
	log.Printf("Derived %d images", n)
	return n, nil
}
