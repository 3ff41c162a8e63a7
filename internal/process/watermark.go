package process

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var watermarkExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
}

// ResolveWatermark picks the watermark image for a run. An asset named
// logo_<campaignID> takes precedence when a campaign id is given; otherwise
// the lexically first image in dir is used. A missing or empty directory
// simply disables the overlay.
func ResolveWatermark(dir string, campaignID int64) (string, bool) {
	if strings.TrimSpace(dir) == "" {
		return "", false
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := watermarkExtensions[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return "", false
	}
	sort.Strings(names)

	if campaignID > 0 {
		prefix := fmt.Sprintf("logo_%d.", campaignID)
		for _, name := range names {
			if strings.HasPrefix(name, prefix) {
				return filepath.Join(dir, name), true
			}
		}
	}
	return filepath.Join(dir, names[0]), true
}
