/*
Package config reads the site configuration from comic.toml.

A minimal file names the comic; everything else has a default:

	[comic]
	name = "My Comic"
	url = "https://example.com/my-comic"

	[settings]
	date_format = "%B %d, %Y"
	timezone = "America/New_York"

	[archive]
	sections = "Chapter 1, Chapter 2"
	use_thumbnails = true

	[[links]]
	name = "Archive"
	url = "/archive.html"

Unknown keys are an error. Load validates the file eagerly, so a bad date
format or thumbnail size is reported before any content is touched.
*/
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ancientlore/inkwell/comic"
	"github.com/ancientlore/inkwell/images"
	"github.com/pelletier/go-toml/v2"
)

// FileName is the default name of the config file in the site root.
const FileName = "comic.toml"

// Site contains configuration data from the comic.toml file.
type Site struct {
	Comic    Comic    `toml:"comic"`
	Settings Settings `toml:"settings"`
	Archive  Archive  `toml:"archive"`
	Images   Images   `toml:"images"`
	Feed     Feed     `toml:"feed"`
	Links    []Link   `toml:"links"`
	Pages    []Page   `toml:"pages"`
	Preview  Preview  `toml:"preview"`

	loc       *time.Location
	format    comic.DateFormat
	sections  []string
	thumbSize images.Size
	baseDir   string
}

// Comic describes the comic itself.
type Comic struct {
	Name        string `toml:"name"`
	URL         string `toml:"url"`
	Description string `toml:"description"`
	Language    string `toml:"language"`
}

// Settings controls how posts are read.
type Settings struct {
	DateFormat         string  `toml:"date_format"`
	Timezone           string  `toml:"timezone"`
	HideScheduledPosts bool    `toml:"hide_scheduled_posts"`
	ContentDir         string  `toml:"content_dir"`
	TemplateDir        string  `toml:"template_dir"`
	BaseDir            *string `toml:"base_dir"`
}

// Archive controls the archive pages.
type Archive struct {
	Sections      string `toml:"sections"`
	UseThumbnails bool   `toml:"use_thumbnails"`
}

// Images controls image derivation.
type Images struct {
	CreateThumbnails   bool   `toml:"create_thumbnails"`
	ThumbnailSize      string `toml:"thumbnail_size"`
	CreateLowQuality   bool   `toml:"create_low_quality"`
	LowQualityFileType string `toml:"low_quality_file_type"`
}

// Feed controls feed.xml.
type Feed struct {
	MaxItems int `toml:"max_items"`
}

// Link is an entry of the links bar.
type Link struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

// Page is a site page rendered from <template>.html into <template>.html
// at the site root. A non-empty Title replaces the page title.
type Page struct {
	Template string `toml:"template"`
	Title    string `toml:"title"`
}

// Preview configures the preview server.
type Preview struct {
	Expires       Duration          `toml:"expires"`
	StaticExpires Duration          `toml:"static_expires"`
	Headers       map[string]string `toml:"headers"`
	CacheSize     int64             `toml:"cache_size"`
	CacheDuration Duration          `toml:"cache_duration"`
}

// DefaultPages are rendered when the config file lists no pages.
var DefaultPages = []Page{
	{Template: "index"},
	{Template: "archive", Title: "Archive"},
	{Template: "tagged", Title: "Tagged posts"},
	{Template: "infinite_scroll", Title: "Infinite scroll"},
}

// Default returns the configuration used for keys missing from the file.
func Default() *Site {
	return &Site{
		Comic: Comic{
			Language: "en",
		},
		Settings: Settings{
			DateFormat:         "%B %d, %Y",
			Timezone:           "Local",
			HideScheduledPosts: true,
			ContentDir:         "your_content/comics",
			TemplateDir:        "templates",
		},
		Archive: Archive{
			UseThumbnails: true,
		},
		Images: Images{
			CreateThumbnails:   true,
			ThumbnailSize:      "25%",
			LowQualityFileType: "jpg",
		},
		Preview: Preview{
			Expires:       Duration(5 * time.Minute),
			StaticExpires: Duration(time.Hour),
			CacheSize:     10 * 1024 * 1024,
			CacheDuration: Duration(10 * time.Second),
		},
	}
}

// Load reads and validates the config file at name. Relative settings
// are resolved against root.
func Load(root, name string) (*Site, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("Cannot read config file: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, err
	}
	err = cfg.Validate(root)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes config data over the defaults without validating it.
func Parse(b []byte) (*Site, error) {
	cfg := Default()
	d := toml.NewDecoder(bytes.NewReader(b))
	d.DisallowUnknownFields()
	err := d.Decode(cfg)
	if err != nil {
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return nil, fmt.Errorf("Cannot parse config file at %d:%d: %w", row, col, err)
		}
		return nil, fmt.Errorf("Cannot parse config file: %w", err)
	}
	if cfg.Pages == nil {
		cfg.Pages = append([]Page(nil), DefaultPages...)
	}
	return cfg, nil
}

// Validate checks the settings and resolves the derived values. The base
// directory defaults to the name of root.
func (s *Site) Validate(root string) error {
	var err error
	switch s.Settings.Timezone {
	case "", "Local":
		s.loc = time.Local
	default:
		s.loc, err = time.LoadLocation(s.Settings.Timezone)
		if err != nil {
			return fmt.Errorf("config: timezone: %w", err)
		}
	}
	s.format, err = comic.NewDateFormat(s.Settings.DateFormat, s.loc)
	if err != nil {
		return fmt.Errorf("config: date_format: %w", err)
	}
	if strings.TrimSpace(s.Settings.ContentDir) == "" {
		return errors.New("config: content_dir must not be empty")
	}
	if filepath.IsAbs(s.Settings.ContentDir) {
		return fmt.Errorf("config: content_dir %q must be relative to the site root", s.Settings.ContentDir)
	}
	if s.Settings.TemplateDir == "" {
		return errors.New("config: template_dir must not be empty")
	}
	s.sections = comic.ParseSections(s.Archive.Sections)

	if s.Images.CreateThumbnails || s.Archive.UseThumbnails {
		s.thumbSize, err = images.ParseSize(s.Images.ThumbnailSize)
		if err != nil {
			return fmt.Errorf("config: thumbnail_size: %w", err)
		}
	}
	if s.Images.CreateLowQuality && !images.ValidType(s.Images.LowQualityFileType) {
		return fmt.Errorf("config: unsupported low_quality_file_type %q", s.Images.LowQualityFileType)
	}
	if s.Feed.MaxItems < 0 {
		return fmt.Errorf("config: max_items must not be negative")
	}
	for i, p := range s.Pages {
		if p.Template == "" || strings.ContainsAny(p.Template, `/\`) || strings.HasPrefix(p.Template, ".") {
			return fmt.Errorf("config: pages[%d]: invalid template name %q", i, p.Template)
		}
	}
	for i, l := range s.Links {
		if l.Name == "" {
			return fmt.Errorf("config: links[%d]: missing name", i)
		}
	}
	if s.Preview.CacheSize < 0 {
		return fmt.Errorf("config: cache_size must not be negative")
	}

	if s.Settings.BaseDir != nil {
		s.baseDir = strings.Trim(*s.Settings.BaseDir, "/")
	} else {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		s.baseDir = filepath.Base(abs)
	}
	return nil
}

// Location returns the time zone of post dates.
func (s *Site) Location() *time.Location {
	if s.loc == nil {
		return time.Local
	}
	return s.loc
}

// DateFormat returns the format of post dates.
func (s *Site) DateFormat() comic.DateFormat {
	return s.format
}

// Sections returns the archive section names in order.
func (s *Site) Sections() []string {
	return s.sections
}

// ThumbnailSize returns the parsed thumbnail size.
func (s *Site) ThumbnailSize() images.Size {
	return s.thumbSize
}

// BaseDir returns the directory the site is served under, without slashes.
// It is empty when the site is served from the root of its domain.
func (s *Site) BaseDir() string {
	return s.baseDir
}

// AssetDir returns the content directory as a slash path.
func (s *Site) AssetDir() string {
	return path.Clean(filepath.ToSlash(s.Settings.ContentDir))
}

// Path prefixes a root-relative path with the base directory. Other
// paths are returned unchanged.
func (s *Site) Path(rel string) string {
	if !strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, "//") {
		return rel
	}
	if s.baseDir == "" {
		return rel
	}
	return "/" + s.baseDir + rel
}
