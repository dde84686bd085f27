package ota

import "strings"

const (
	deviceTokenIndex = 3
	zipSuffix        = ".zip"
)

var releaseMarkers = []string{"signed", "nightly", "official"}

// ExtractDeviceToken returns the fourth hyphen separated token of a build
// filename, or UnknownDevice when there are fewer than four tokens.
//
// The rule is positional and assumes names shaped like
// <product>-<version>-<date>-<token>-... . For
// lineage-22.1-20250308-nightly-renoir-signed.zip it yields "nightly", not
// the device codename at index 4; keep the index until it is checked against
// production filenames.
func ExtractDeviceToken(filename string) string {
	parts := strings.Split(filename, "-")
	if len(parts) <= deviceTokenIndex {
		return UnknownDevice
	}
	return parts[deviceTokenIndex]
}

// SelectPrimaryFile picks the main artifact of a build: the first .zip whose
// name carries a release marker when preferRelease is set, the first .zip
// otherwise, falling back to the first file. ok is false when files is empty.
func SelectPrimaryFile(files []File, preferRelease bool) (primary File, ok bool) {
	if len(files) == 0 {
		return File{}, false
	}

	for _, f := range files {
		if f.Filename == "" || !strings.HasSuffix(f.Filename, zipSuffix) {
			continue
		}
		if !preferRelease || hasReleaseMarker(f.Filename) {
			return f, true
		}
	}

	return files[0], true
}

func hasReleaseMarker(filename string) bool {
	for _, m := range releaseMarkers {
		if strings.Contains(filename, m) {
			return true
		}
	}
	return false
}
