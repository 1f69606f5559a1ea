/*
Package schedule hides the resource files of posts that are not yet public and
restores them once their publication time arrives.

Hiding renames every entry of a post directory so that it ends in a period
and ten random lowercase letters, the same letters for the whole directory.
A sidecar file named ".schedule.toml" flags the directory as hidden. The
sidecar is served with the rest of the site, so it holds nothing but the flag
and the time of hiding; the suffix is recovered from the marked names.

	visible        hidden
	info.ini       info.ini.qwhzkcbnra
	page.png       page.png.qwhzkcbnra
	post.html      post.html.qwhzkcbnra
	               .schedule.toml

A directory without the sidecar is visible, unless every entry in it carries
one common suffix, which is how directories hidden by older tools look. An
original filename that happens to end in a period and ten letters is
therefore left alone next to plain names.

Files starting with "." are never renamed.
*/
package schedule

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// StateFile is the name of the sidecar file kept in hidden post directories.
const StateFile = ".schedule.toml"

// SuffixLen is the number of random letters in a marker suffix.
const SuffixLen = 10

// State is the content of the sidecar file.
type State struct {
	Hidden   bool      `toml:"hidden"`
	HiddenAt time.Time `toml:"hidden_at"` // build time when the directory was first hidden
}

// NewSuffix returns SuffixLen random lowercase letters.
func NewSuffix() string {
	var b strings.Builder
	b.Grow(SuffixLen)
	for i := 0; i < SuffixLen; i++ {
		b.WriteByte(byte('a' + rand.Intn(26)))
	}
	return b.String()
}

// isSuffix reports whether s has the shape of a marker suffix.
func isSuffix(s string) bool {
	if len(s) != SuffixLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

// splitMarked splits a marked name into the original name and its suffix.
func splitMarked(name string) (string, string, bool) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || !isSuffix(name[i+1:]) {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}

// names returns the entries of dir that take part in hiding.
func names(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var r []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), ".") {
			r = append(r, e.Name())
		}
	}
	return r, nil
}

// commonSuffix returns the marker suffix carried by most names, or "".
func commonSuffix(names []string) string {
	count := make(map[string]int)
	for _, name := range names {
		if _, s, ok := splitMarked(name); ok {
			count[s]++
		}
	}
	var best string
	for s, n := range count {
		if n > count[best] || (n == count[best] && s < best) {
			best = s
		}
	}
	return best
}

// legacySuffix returns the suffix shared by every name, or "" if any name is
// plain or the names disagree.
func legacySuffix(names []string) string {
	var suffix string
	for _, name := range names {
		_, s, ok := splitMarked(name)
		if !ok || (suffix != "" && s != suffix) {
			return ""
		}
		suffix = s
	}
	return suffix
}

// LoadState reads the sidecar of dir. It returns nil and no error when there
// is no sidecar.
func LoadState(dir string) (*State, error) {
	b, err := os.ReadFile(filepath.Join(dir, StateFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("LoadState: %w", err)
	}
	var st State
	err = toml.Unmarshal(b, &st)
	if err != nil {
		return nil, fmt.Errorf("LoadState: %s: %w", dir, err)
	}
	st.Hidden = true
	return &st, nil
}

func saveState(dir string, st *State) error {
	b, err := toml.Marshal(st)
	if err != nil {
		return fmt.Errorf("saveState: %w", err)
	}
	err = os.WriteFile(filepath.Join(dir, StateFile), b, 0644)
	if err != nil {
		return fmt.Errorf("saveState: %w", err)
	}
	return nil
}

// suffix returns the marker suffix in use in dir and whether dir carries
// the sidecar.
func suffix(dir string, entries []string) (string, bool, error) {
	st, err := LoadState(dir)
	if err != nil {
		return "", false, err
	}
	if st != nil {
		return commonSuffix(entries), true, nil
	}
	return legacySuffix(entries), false, nil
}

// IsHidden reports whether dir is currently hidden.
func IsHidden(dir string) (bool, error) {
	entries, err := names(dir)
	if err != nil {
		return false, fmt.Errorf("IsHidden: %w", err)
	}
	s, flagged, err := suffix(dir, entries)
	if err != nil {
		return false, err
	}
	return flagged || s != "", nil
}

// Hide renames every entry of dir that is not hidden yet so that it carries
// the directory's marker suffix. Calling Hide on a hidden directory only
// affects entries added since the last call. now is recorded in the sidecar
// when the directory is first hidden.
func Hide(dir string, now time.Time) error {
	entries, err := names(dir)
	if err != nil {
		return fmt.Errorf("Hide: %w", err)
	}
	s, flagged, err := suffix(dir, entries)
	if err != nil {
		return err
	}
	if s == "" {
		s = NewSuffix()
	}
	var pending []string
	for _, name := range entries {
		if !strings.HasSuffix(name, "."+s) {
			pending = append(pending, name)
		}
	}
	// The sidecar goes first so an interrupted Hide can still be revealed.
	if !flagged {
		err = saveState(dir, &State{Hidden: true, HiddenAt: now.UTC()})
		if err != nil {
			return err
		}
	}
	for _, name := range pending {
		marked := filepath.Join(dir, name+"."+s)
		if _, err := os.Lstat(marked); err == nil {
			return fmt.Errorf("Hide: %s: both %s and %s.%s exist", dir, name, name, s)
		}
		err = os.Rename(filepath.Join(dir, name), marked)
		if err != nil {
			return err
		}
	}
	return nil
}

// Reveal strips the marker suffix from every entry of dir and removes the
// sidecar. It does nothing if dir is visible.
func Reveal(dir string) error {
	entries, err := names(dir)
	if err != nil {
		return fmt.Errorf("Reveal: %w", err)
	}
	s, flagged, err := suffix(dir, entries)
	if err != nil {
		return err
	}
	if s != "" {
		for _, name := range entries {
			orig, ok := strings.CutSuffix(name, "."+s)
			if !ok || orig == "" {
				continue
			}
			if _, err := os.Lstat(filepath.Join(dir, orig)); err == nil {
				return fmt.Errorf("Reveal: %s: both %s and %s exist", dir, orig, name)
			}
			err = os.Rename(filepath.Join(dir, name), filepath.Join(dir, orig))
			if err != nil {
				return err
			}
		}
	}
	if flagged {
		err = os.Remove(filepath.Join(dir, StateFile))
		if err != nil {
			return fmt.Errorf("Reveal: %w", err)
		}
	}
	return nil
}

// Locate returns the path of name inside dir. If the plain name does not
// exist, a marked variant of it is used instead, preferring the suffix most
// entries of dir carry. The returned error wraps fs.ErrNotExist when neither
// exists.
func Locate(dir, name string) (string, error) {
	p := filepath.Join(dir, name)
	_, err := os.Stat(p)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	entries, rerr := names(dir)
	if rerr != nil {
		return "", err
	}
	var found []string
	for _, e := range entries {
		if orig, _, ok := splitMarked(e); ok && orig == name {
			found = append(found, e)
		}
	}
	if len(found) == 0 {
		return "", err
	}
	sort.Strings(found)
	pick := found[0]
	if s := commonSuffix(entries); s != "" {
		for _, f := range found {
			if strings.HasSuffix(f, "."+s) {
				pick = f
				break
			}
		}
	}
	return filepath.Join(dir, pick), nil
}
