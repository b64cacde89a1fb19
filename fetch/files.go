package fetch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// readInfoJSON loads yt-dlp's --write-info-json sidecar. yt-dlp names it
// after the output template's basename rather than the literal path we
// asked for, so fall back to scanning destDir for the first *.json file.
func readInfoJSON(infoPath, destDir string) (ytdlpInfo, error) {
	data, err := os.ReadFile(infoPath)
	if err != nil {
		entries, readErr := os.ReadDir(destDir)
		if readErr != nil {
			return ytdlpInfo{}, err
		}
		for _, e := range entries {
			if filepath.Ext(e.Name()) == ".json" {
				data, err = os.ReadFile(filepath.Join(destDir, e.Name()))
				break
			}
		}
		if data == nil {
			return ytdlpInfo{}, fmt.Errorf("no info.json produced in %s", destDir)
		}
	}

	var info ytdlpInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return ytdlpInfo{}, err
	}
	return info, nil
}

// mediaExtensions is tried in priority order when locating the file
// yt-dlp produced for the video.%(ext)s output template.
var mediaExtensions = []string{".mp4", ".mkv", ".webm", ".mov"}

func findDownloadedMedia(destDir string) (string, error) {
	for _, ext := range mediaExtensions {
		candidate := filepath.Join(destDir, "video"+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		name := e.Name()
		if len(name) >= 5 && name[:5] == "video" && filepath.Ext(name) != ".json" {
			return filepath.Join(destDir, name), nil
		}
	}
	return "", fmt.Errorf("no downloaded media found in %s", destDir)
}
