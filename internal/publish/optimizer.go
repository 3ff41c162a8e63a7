package publish

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"petreel/internal/platform"
	"petreel/internal/textutil"
)

// limits captures per-platform content constraints.
type limits struct {
	caption  int
	hashtags int
	title    int
}

var platformLimits = map[platform.Platform]limits{
	platform.Instagram: {caption: 2200, hashtags: 30},
	platform.TikTok:    {caption: 300, hashtags: 20},
	platform.YouTube:   {caption: 5000, hashtags: 15, title: 100},
	platform.Facebook:  {caption: 63206, hashtags: 30},
}

// defaultHashtags are appended per platform when the content's own tags leave
// room under the cap.
var defaultHashtags = map[platform.Platform][]string{
	platform.Instagram: {"#reels", "#petsofinstagram"},
	platform.TikTok:    {"#fyp", "#pettok"},
	platform.YouTube:   {"#shorts", "#pets"},
	platform.Facebook:  {"#pets"},
}

var hashtagCleanPattern = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Optimize clamps content to the destination platform's limits. Hashtags are
// normalized and capped, the title is word-truncated for platforms that use
// one, and the caption is word-truncated so that caption plus hashtag block
// fits the platform's caption limit.
func Optimize(content Content, plat platform.Platform) Bundle {
	lim := platformLimits[plat]
	hashtags := NormalizeHashtags(content.Hashtags, plat)

	title := content.Title
	if lim.title > 0 {
		title = textutil.TruncateWords(title, lim.title)
	}

	caption := strings.TrimSpace(content.Caption)
	if lim.caption > 0 {
		block := strings.Join(hashtags, " ")
		budget := lim.caption
		if block != "" {
			budget -= len([]rune(block)) + 2
		}
		if budget < 0 {
			budget = 0
		}
		caption = textutil.TruncateWords(caption, budget)
		if block != "" {
			if caption != "" {
				caption += "\n\n"
			}
			caption += block
		}
	}

	return Bundle{
		VideoPath: content.VideoPath,
		Title:     title,
		Caption:   caption,
		Hashtags:  hashtags,
	}
}

// NormalizeHashtags canonicalizes hashtags for a platform: NFKC folding,
// lowercasing, a single leading '#', and removal of punctuation. Duplicates
// keep their first occurrence. Platform default tags fill remaining slots up
// to the platform cap. The operation is idempotent.
func NormalizeHashtags(tags []string, plat platform.Platform) []string {
	maxTags := platformLimits[plat].hashtags
	if maxTags <= 0 {
		maxTags = 30
	}

	normalized := make([]string, 0, maxTags)
	seen := make(map[string]struct{}, maxTags)
	appendTag := func(raw string) {
		if len(normalized) >= maxTags {
			return
		}
		tag := norm.NFKC.String(raw)
		tag = strings.ToLower(strings.TrimSpace(tag))
		tag = strings.TrimLeft(tag, "#")
		tag = hashtagCleanPattern.ReplaceAllString(tag, "")
		if tag == "" {
			return
		}
		tag = "#" + tag
		if _, dup := seen[tag]; dup {
			return
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
	}

	for _, raw := range tags {
		appendTag(raw)
	}
	for _, raw := range defaultHashtags[plat] {
		appendTag(raw)
	}
	return normalized
}
