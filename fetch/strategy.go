package fetch

import (
	"os"
	"path/filepath"

	"github.com/videoscribe/analyzer/model"
)

// strategy is one authentication mode to try against yt-dlp. Each is a
// distinct external auth posture, not a transient failure, so the
// cascade tries them in sequence rather than retrying one with backoff.
// Each strategy gets a single yt-dlp run, bounded by config.FetchTimeout;
// a strategy that fails is not retried.
type strategy struct {
	name string
	args []string
	// url overrides the canonical URL for this attempt, used for the
	// platform "player URL" form.
	url string
}

const cookieFile = "cookies.txt"

func cookieFileExists() bool {
	_, err := os.Stat(filepath.Clean(cookieFile))
	return err == nil
}

// genericCascade is the platform-agnostic fallback order every fetch
// attempt runs through after any platform-specific cascade is exhausted.
func genericCascade() []strategy {
	cascade := []strategy{
		{name: "browser-cookie", args: []string{"--cookies-from-browser", "chrome"}},
	}
	if cookieFileExists() {
		cascade = append(cascade, strategy{name: "cookie-file", args: []string{"--cookies", cookieFile}})
	}
	cascade = append(cascade,
		strategy{name: "alt-browser-cookie", args: []string{"--cookies-from-browser", "firefox"}},
		strategy{name: "anonymous"},
		strategy{name: "aggressive", args: []string{"--impersonate", "chrome"}},
	)
	return cascade
}

// vimeoCascade is tried before genericCascade for Vimeo URLs: the cookie
// file (when cookies.txt exists), then Chrome browser cookies, then the
// direct player URL form. No token-based strategy is tried.
func vimeoCascade(parsed Parsed) []strategy {
	var cascade []strategy
	if cookieFileExists() {
		cascade = append(cascade, strategy{name: "vimeo-cookie-file", args: []string{"--cookies", cookieFile}})
	}
	cascade = append(cascade,
		strategy{name: "vimeo-browser-cookie", args: []string{"--cookies-from-browser", "chrome"}},
	)
	if parsed.PlayerURL != "" {
		cascade = append(cascade, strategy{name: "vimeo-player-url", url: parsed.PlayerURL})
	}
	return cascade
}

// cascadeFor returns the full ordered list of strategies for one fetch
// attempt, platform-specific strategies first.
func cascadeFor(parsed Parsed) []strategy {
	var cascade []strategy
	if parsed.Platform == model.PlatformVimeo {
		cascade = append(cascade, vimeoCascade(parsed)...)
	}
	return append(cascade, genericCascade()...)
}
