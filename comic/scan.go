package comic

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ancientlore/inkwell/schedule"
)

// Sequence is the list of visible posts sorted by date and then by id.
type Sequence []Post

// IDs returns the post identifiers in order.
func (s Sequence) IDs() []string {
	ids := make([]string, len(s))
	for i := range s {
		ids[i] = s[i].ID
	}
	return ids
}

// ScanOptions controls Scan.
type ScanOptions struct {
	Format     DateFormat // post date format
	ShowHidden bool       // leave files of scheduled posts in place
}

// Scan reads every post directory under dir. Posts dated after now are
// counted and hidden; the others are revealed and returned in order.
// The first error aborts the scan.
func Scan(dir string, now time.Time, opts ScanOptions) (Sequence, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, &MissingFileError{Path: dir}
		}
		return nil, 0, fmt.Errorf("Scan: %w", err)
	}
	var (
		seq       = Sequence{}
		scheduled int
	)
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		postDir := filepath.Join(dir, entry.Name())
		p, err := ReadPost(postDir, opts.Format)
		if err != nil {
			return nil, 0, err
		}
		if p.Date.After(now) {
			scheduled++
			if !opts.ShowHidden {
				err = schedule.Hide(postDir, now)
				if err != nil {
					return nil, 0, err
				}
			}
			continue
		}
		err = schedule.Reveal(postDir)
		if err != nil {
			return nil, 0, err
		}
		seq = append(seq, *p)
	}
	sort.Slice(seq, func(i, j int) bool {
		if !seq[i].Date.Equal(seq[j].Date) {
			return seq[i].Date.Before(seq[j].Date)
		}
		return seq[i].ID < seq[j].ID
	})
	log.Printf("Scan: %d visible, %d scheduled (now is %s)", len(seq), scheduled, now.Format(time.RFC3339))
	return seq, scheduled, nil
}

// Links holds the navigation identifiers of one post.
type Links struct {
	First    string
	Previous string
	Current  string
	Next     string
	Last     string
}

// Links returns the navigation identifiers for the post at index i.
// The first post is its own previous and the last post its own next.
func (s Sequence) Links(i int) Links {
	l := Links{
		First:    s[0].ID,
		Previous: s[0].ID,
		Current:  s[i].ID,
		Next:     s[len(s)-1].ID,
		Last:     s[len(s)-1].ID,
	}
	if i > 0 {
		l.Previous = s[i-1].ID
	}
	if i < len(s)-1 {
		l.Next = s[i+1].ID
	}
	return l
}
