package build

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ancientlore/inkwell/comic"
)

// ManifestFile is where the manifest is written, relative to the site root.
const ManifestFile = "comic/page_info_list.json"

// Manifest lists the visible posts for client-side scripts.
type Manifest struct {
	PageInfoList       []comic.Post `json:"page_info_list"`
	ScheduledPostCount int          `json:"scheduled_post_count"`
}

// WriteManifest writes the manifest for seq to name, creating its directory.
func WriteManifest(name string, seq comic.Sequence, scheduled int) error {
	m := Manifest{
		PageInfoList:       []comic.Post(seq),
		ScheduledPostCount: scheduled,
	}
	if m.PageInfoList == nil {
		m.PageInfoList = []comic.Post{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	err := enc.Encode(m)
	if err != nil {
		return fmt.Errorf("WriteManifest: %w", err)
	}
	err = os.MkdirAll(filepath.Dir(name), 0755)
	if err != nil {
		return fmt.Errorf("WriteManifest: %w", err)
	}
	err = os.WriteFile(name, buf.Bytes(), 0644)
	if err != nil {
		return fmt.Errorf("WriteManifest: %w", err)
	}
	return nil
}

// ReadManifest reads a manifest written by WriteManifest. Post dates are
// left as raw text.
func ReadManifest(name string) (*Manifest, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("ReadManifest: %w", err)
	}
	var m Manifest
	err = json.Unmarshal(b, &m)
	if err != nil {
		return nil, fmt.Errorf("ReadManifest: %s: %w", name, err)
	}
	return &m, nil
}
