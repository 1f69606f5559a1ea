/*
Package comic reads the posts of a webcomic from a content directory and turns
them into render-ready pages.

Each post lives in its own directory, named by the post's identifier:

	your_content/comics/
		2024-01-05-first/
			info.ini
			page.png
			post.html

The info file holds key/value pairs:

	Title = The first one
	Post date = January 5, 2024
	Filename = page.png
	Alt text = A cat looks at a dog.
	Tags = Chapter 1, cats

Posts dated in the future are hidden with package schedule and left out of
the Sequence returned by Scan.
*/
package comic

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ancientlore/inkwell/schedule"
	"gopkg.in/ini.v1"
)

// InfoFile is the name of the metadata file in each post directory.
const InfoFile = "info.ini"

// Keys read from the info file. Other keys are kept in Post.Extra.
const (
	KeyPostDate = "Post date"
	KeyTitle    = "Title"
	KeyAltText  = "Alt text"
	KeyFilename = "Filename"
	KeyTags     = "Tags"
)

// Post holds the normalized metadata of one post.
type Post struct {
	ID       string            // directory name
	Date     time.Time         // publication time
	RawDate  string            // date text as authored
	Title    string            // page title
	AltText  string            // alt text for the comic image, unescaped
	Filename string            // comic image file name
	Tags     []string          // tags in authored order
	Extra    map[string]string // any other keys from the info file
}

// HasTag reports whether the post carries the exact tag name.
func (p Post) HasTag(name string) bool {
	for _, t := range p.Tags {
		if t == name {
			return true
		}
	}
	return false
}

// SplitTags splits a comma separated tag list, trimming each tag and
// dropping empty ones.
func SplitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// ReadPost reads the info file of the post in dir. The file may be hidden
// by the scheduler.
func ReadPost(dir string, format DateFormat) (*Post, error) {
	id := filepath.Base(dir)
	name, err := schedule.Locate(dir, InfoFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingFileError{Path: filepath.Join(dir, InfoFile)}
		}
		return nil, fmt.Errorf("ReadPost: %w", err)
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("ReadPost: %w", err)
	}
	values, err := parseInfo(name, b)
	if err != nil {
		return nil, err
	}

	p := Post{
		ID:       id,
		RawDate:  values[KeyPostDate],
		Title:    values[KeyTitle],
		AltText:  values[KeyAltText],
		Filename: values[KeyFilename],
		Tags:     SplitTags(values[KeyTags]),
	}
	if p.Filename == "" {
		return nil, &MissingKeyError{Path: name, Key: KeyFilename}
	}
	if strings.TrimSpace(p.RawDate) == "" {
		return nil, &InvalidDateError{Post: id, Format: format.String()}
	}
	p.Date, err = format.Parse(p.RawDate)
	if err != nil {
		return nil, &InvalidDateError{Post: id, Value: p.RawDate, Format: format.String(), Err: err}
	}
	for k, v := range values {
		switch k {
		case KeyPostDate, KeyTitle, KeyAltText, KeyFilename, KeyTags:
		default:
			if p.Extra == nil {
				p.Extra = make(map[string]string)
			}
			p.Extra[k] = v
		}
	}
	return &p, nil
}

// parseInfo reads key/value pairs from an info file. Keys that appear
// before any section header belong to the default section; files with
// named sections are rejected.
func parseInfo(name string, b []byte) (map[string]string, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:        true,
		AllowPythonMultilineValues: true,
		PreserveSurroundedQuote:    true,
	}, b)
	if err != nil {
		return nil, fmt.Errorf("parseInfo: %s: %w", name, err)
	}
	var named []string
	for _, s := range f.SectionStrings() {
		if s != ini.DefaultSection {
			named = append(named, s)
		}
	}
	if len(named) > 0 {
		return nil, &UnsupportedConfigError{Path: name, Sections: named}
	}
	values := make(map[string]string)
	for _, k := range f.Section(ini.DefaultSection).Keys() {
		values[k.Name()] = k.String()
	}
	return values, nil
}

// MarshalJSON writes the post the way client-side scripts expect it in
// the manifest.
func (p Post) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.fields())
}

func (p Post) fields() map[string]any {
	m := make(map[string]any, len(p.Extra)+6)
	for k, v := range p.Extra {
		m[k] = v
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	m["page_name"] = p.ID
	m[KeyPostDate] = p.RawDate
	m[KeyTitle] = p.Title
	m[KeyAltText] = p.AltText
	m[KeyFilename] = p.Filename
	m[KeyTags] = tags
	return m
}

// UnmarshalJSON reads a post written by MarshalJSON. Date is left zero
// because the format is not known here; RawDate holds the text.
func (p *Post) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	err := json.Unmarshal(b, &m)
	if err != nil {
		return err
	}
	*p = Post{}
	for k, raw := range m {
		if k == KeyTags {
			err = json.Unmarshal(raw, &p.Tags)
			if err != nil {
				return fmt.Errorf("post %s: %w", KeyTags, err)
			}
			continue
		}
		var s string
		err = json.Unmarshal(raw, &s)
		if err != nil {
			return fmt.Errorf("post %s: %w", k, err)
		}
		switch k {
		case "page_name":
			p.ID = s
		case KeyPostDate:
			p.RawDate = s
		case KeyTitle:
			p.Title = s
		case KeyAltText:
			p.AltText = s
		case KeyFilename:
			p.Filename = s
		default:
			if p.Extra == nil {
				p.Extra = make(map[string]string)
			}
			p.Extra[k] = s
		}
	}
	return nil
}
