package build

import (
	"encoding/xml"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ancientlore/inkwell/comic"
	"github.com/ancientlore/inkwell/config"
)

const testConfig = `
[comic]
name = "Test Comic"
url = "https://example.com/test"

[settings]
date_format = "%Y-%m-%d"
timezone = "UTC"
base_dir = "test"

[archive]
sections = "A, B"
use_thumbnails = true

[images]
create_thumbnails = true
thumbnail_size = "50%"

[[links]]
name = "Archive"
url = "/archive.html"
`

// site creates a site root with the given posts. Each post is id, date and tags.
func site(t *testing.T, cfgText string, posts ...[3]string) (string, *config.Site) {
	t.Helper()
	root := t.TempDir()
	name := filepath.Join(root, config.FileName)
	if err := os.WriteFile(name, []byte(cfgText), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(root, name)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range posts {
		dir := filepath.Join(root, "your_content", "comics", p[0])
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		info := "Title = Post " + p[0] + "\nPost date = " + p[1] + "\nFilename = page.png\nAlt text = \"quoted\" & <b>\nTags = " + p[2] + "\n"
		if err := os.WriteFile(filepath.Join(dir, comic.InfoFile), []byte(info), 0644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, comic.BodyFile), []byte("<p>Body of "+p[0]+"</p>"), 0644); err != nil {
			t.Fatal(err)
		}
		writeImage(t, filepath.Join(dir, "page.png"))
	}
	return root, cfg
}

func writeImage(t *testing.T, name string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 6))
	img.Set(1, 1, color.White)
	f, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestRun(t *testing.T) {
	root, cfg := site(t, testConfig,
		[3]string{"p1", "2024-01-01", "A"},
		[3]string{"p2", "2024-01-02", "A, B"},
		[3]string{"p3", "2024-01-03", ""},
		[3]string{"p4", "2030-01-01", "A"},
	)
	res, err := Run(Options{Root: root, Config: cfg, Now: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatal(err)
	}
	if res.Posts != 3 || res.Scheduled != 1 {
		t.Errorf("Unexpected counts %d and %d", res.Posts, res.Scheduled)
	}
	if res.Images != 3 {
		t.Errorf("Expected 3 thumbnails, got %d", res.Images)
	}

	m, err := ReadManifest(filepath.Join(root, ManifestFile))
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, p := range m.PageInfoList {
		ids = append(ids, p.ID)
	}
	if !reflect.DeepEqual(ids, []string{"p1", "p2", "p3"}) {
		t.Errorf("Unexpected manifest posts %v", ids)
	}
	if m.ScheduledPostCount != 1 {
		t.Errorf("Unexpected scheduled count %d", m.ScheduledPostCount)
	}

	for _, id := range []string{"p1", "p2", "p3"} {
		if _, err := os.Stat(filepath.Join(root, "comic", id+".html")); err != nil {
			t.Errorf("Missing comic page: %v", err)
		}
		if _, err := os.Stat(filepath.Join(root, "your_content", "comics", id, "page_thumbnail.jpg")); err != nil {
			t.Errorf("Missing thumbnail: %v", err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "comic", "p4.html")); !os.IsNotExist(err) {
		t.Error("Scheduled post must not have a page")
	}
	if _, err := os.Stat(filepath.Join(root, "your_content", "comics", "p4", "page.png")); !os.IsNotExist(err) {
		t.Error("Scheduled post image must be hidden")
	}

	p2 := readFile(t, filepath.Join(root, "comic", "p2.html"))
	for _, want := range []string{
		"DO NOT EDIT THIS FILE",
		`href="/test/comic/p1.html"`,
		`href="/test/comic/p3.html"`,
		`src="/test/your_content/comics/p2/page.png"`,
		`alt="&#34;quoted&#34; &amp; &lt;b&gt;"`,
		"<p>Body of p2</p>",
		`href="/test/archive.html"`,
	} {
		if !strings.Contains(p2, want) {
			t.Errorf("Expected %q in comic page", want)
		}
	}

	index := readFile(t, filepath.Join(root, "index.html"))
	if !strings.Contains(index, "<h2>Post p3</h2>") {
		t.Error("Expected index to show the latest comic")
	}

	archive := readFile(t, filepath.Join(root, "archive.html"))
	a := strings.Index(archive, "<h3>A</h3>")
	b := strings.Index(archive, "<h3>B</h3>")
	if a < 0 || b < a {
		t.Fatal("Expected sections A and B in order")
	}
	if strings.Count(archive[a:b], "/test/comic/") != 2 {
		t.Error("Expected two posts in section A")
	}
	if strings.Count(archive[b:], "/test/comic/") != 1 {
		t.Error("Expected one post in section B")
	}
	if !strings.Contains(archive, "page_thumbnail.jpg") {
		t.Error("Expected thumbnails in archive")
	}

	for _, name := range []string{"tagged.html", "infinite_scroll.html"} {
		if _, err := os.Stat(filepath.Join(root, name)); err != nil {
			t.Errorf("Missing page: %v", err)
		}
	}

	var rss struct {
		Items []struct {
			Link string `xml:"link"`
		} `xml:"channel>item"`
	}
	if err := xml.Unmarshal([]byte(readFile(t, filepath.Join(root, FeedFile))), &rss); err != nil {
		t.Fatal(err)
	}
	if len(rss.Items) != 3 || rss.Items[0].Link != "https://example.com/test/comic/p3.html" {
		t.Errorf("Unexpected feed items %v", rss.Items)
	}

	sitemap := strings.Split(strings.TrimSpace(readFile(t, filepath.Join(root, SitemapFile))), "\n")
	wantSitemap := []string{
		"https://example.com/test/comic/p1.html",
		"https://example.com/test/comic/p2.html",
		"https://example.com/test/comic/p3.html",
		"https://example.com/test/",
		"https://example.com/test/archive.html",
		"https://example.com/test/tagged.html",
		"https://example.com/test/infinite_scroll.html",
	}
	if !reflect.DeepEqual(sitemap, wantSitemap) {
		t.Errorf("Unexpected sitemap %v", sitemap)
	}

	// a later build publishes the scheduled post
	res, err = Run(Options{Root: root, Config: cfg, Now: time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatal(err)
	}
	if res.Posts != 4 || res.Scheduled != 0 {
		t.Errorf("Unexpected counts %d and %d", res.Posts, res.Scheduled)
	}
	if _, err := os.Stat(filepath.Join(root, "comic", "p4.html")); err != nil {
		t.Errorf("Expected page for published post: %v", err)
	}
}

func TestRunBadDate(t *testing.T) {
	root, cfg := site(t, testConfig,
		[3]string{"p1", "2024-01-01", ""},
		[3]string{"p2", "tomorrow", ""},
	)
	if err := os.MkdirAll(filepath.Join(root, "comic"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ManifestFile), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Run(Options{Root: root, Config: cfg, Now: time.Now()})
	var ide *comic.InvalidDateError
	if !errors.As(err, &ide) {
		t.Fatalf("Expected InvalidDateError, got %v", err)
	}
	if ide.Post != "p2" {
		t.Errorf("Unexpected post %q", ide.Post)
	}
	if _, err := os.Stat(filepath.Join(root, ManifestFile)); !os.IsNotExist(err) {
		t.Error("Expected no manifest after a failed build")
	}
}

func TestRunEmpty(t *testing.T) {
	root, cfg := site(t, testConfig)
	if err := os.MkdirAll(filepath.Join(root, "your_content", "comics"), 0755); err != nil {
		t.Fatal(err)
	}
	res, err := Run(Options{Root: root, Config: cfg, Now: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if res.Posts != 0 {
		t.Errorf("Expected no posts, got %d", res.Posts)
	}
	m := readFile(t, filepath.Join(root, ManifestFile))
	if !strings.Contains(m, `"page_info_list": []`) {
		t.Errorf("Expected empty list in manifest, got %s", m)
	}
	if !strings.Contains(readFile(t, filepath.Join(root, "index.html")), "No comics have been posted yet.") {
		t.Error("Expected placeholder on index")
	}
	if _, err := os.Stat(filepath.Join(root, FeedFile)); err != nil {
		t.Errorf("Expected feed: %v", err)
	}
}

func TestRunMissingContent(t *testing.T) {
	root, cfg := site(t, testConfig)
	_, err := Run(Options{Root: root, Config: cfg, Now: time.Now()})
	var mfe *comic.MissingFileError
	if !errors.As(err, &mfe) {
		t.Errorf("Expected MissingFileError, got %v", err)
	}
}

func TestRunCustomTemplates(t *testing.T) {
	root, cfg := site(t, testConfig+"\n[[pages]]\ntemplate = \"index\"\n\n[[pages]]\ntemplate = \"about\"\ntitle = \"About\"\n",
		[3]string{"p1", "2024-01-01", "A"},
	)
	tdir := filepath.Join(root, "templates")
	if err := os.MkdirAll(tdir, 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"base.html":  `{{define "title"}}[{{.PageTitle}}]{{end}}`,
		"index.html": `{{template "title" .}} {{with .Comic}}{{.ID}} {{datefmt "%d/%m" .Date}} {{if .HasTag "A"}}tagged{{end}}{{end}}`,
		"comic.html": `{{.Comic.ID}}`,
	}
	for name, text := range files {
		if err := os.WriteFile(filepath.Join(tdir, name), []byte(text), 0644); err != nil {
			t.Fatal(err)
		}
	}
	res, err := Run(Options{Root: root, Config: cfg, Now: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, filepath.Join(root, "index.html")); got != "[Post p1] p1 01/01 tagged" {
		t.Errorf("Unexpected index %q", got)
	}
	if _, err := os.Stat(filepath.Join(root, "about.html")); !os.IsNotExist(err) {
		t.Error("Missing template must be skipped")
	}
	for _, f := range res.Files {
		if f == "about.html" {
			t.Error("Skipped page listed as written")
		}
	}
}

func TestClean(t *testing.T) {
	root, cfg := site(t, testConfig)
	for _, name := range []string{"comic/a.html", "feed.xml", "index.html", "archive.html", "keep.html"} {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := Clean(root, cfg); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"comic", "feed.xml", "index.html", "archive.html"} {
		if _, err := os.Stat(filepath.Join(root, name)); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be removed", name)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "keep.html")); err != nil {
		t.Errorf("Expected unrelated file to stay: %v", err)
	}
	if err := Clean(root, cfg); err != nil {
		t.Errorf("Clean of a clean site failed: %v", err)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	name := filepath.Join(t.TempDir(), "comic", "page_info_list.json")
	seq := comic.Sequence{{ID: "a", RawDate: "2024-01-01", Title: "A & B", Filename: "a.png", Tags: []string{"x"}}}
	if err := WriteManifest(name, seq, 2); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(readFile(t, name), `"A & B"`) {
		t.Error("Expected unescaped HTML characters in manifest")
	}
	m, err := ReadManifest(name)
	if err != nil {
		t.Fatal(err)
	}
	if m.ScheduledPostCount != 2 || len(m.PageInfoList) != 1 || m.PageInfoList[0].Title != "A & B" {
		t.Errorf("Unexpected manifest %+v", m)
	}
}

func TestReverse(t *testing.T) {
	p := []comic.Page{{Post: comic.Post{ID: "a"}}, {Post: comic.Post{ID: "b"}}, {Post: comic.Post{ID: "c"}}}
	r := reverse(p)
	if r[0].ID != "c" || r[2].ID != "a" {
		t.Errorf("Unexpected order %v", r)
	}
	if p[0].ID != "a" {
		t.Error("reverse changed its input")
	}
}
