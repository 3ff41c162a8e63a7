// Package platform defines the closed set of social platforms the pipeline
// collects from and publishes to. Stage logic switches over the enum instead
// of dispatching through string-keyed maps.
package platform

import (
	"fmt"
	"strings"
)

// Platform identifies one of the supported social networks.
type Platform string

const (
	Instagram Platform = "instagram"
	TikTok    Platform = "tiktok"
	YouTube   Platform = "youtube"
	Facebook  Platform = "facebook"
)

var all = []Platform{Instagram, TikTok, YouTube, Facebook}

// All returns the ordered list of supported platforms.
func All() []Platform {
	cp := make([]Platform, len(all))
	copy(cp, all)
	return cp
}

// Parse converts a string into a known Platform.
func Parse(value string) (Platform, error) {
	normalized := Platform(strings.ToLower(strings.TrimSpace(value)))
	for _, p := range all {
		if p == normalized {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", value)
}

// ParseList converts a slice of names into platforms, rejecting unknown names.
func ParseList(values []string) ([]Platform, error) {
	platforms := make([]Platform, 0, len(values))
	for _, v := range values {
		p, err := Parse(v)
		if err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}
	return platforms, nil
}

func (p Platform) String() string { return string(p) }
