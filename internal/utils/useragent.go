package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DeviceInfo is a best-effort classification of a User-Agent header.
// Unknown values fall back to generic categories.
type DeviceInfo struct {
	DeviceType      string `json:"device_type"`
	Browser         string `json:"browser"`
	OperatingSystem string `json:"operating_system"`
}

// ParseUserAgent classifies a user-agent string by device, browser and
// operating system. It never fails; unrecognized agents come back as
// "desktop" / "unknown".
func ParseUserAgent(ua string) DeviceInfo {
	info := DeviceInfo{
		DeviceType:      "desktop",
		Browser:         "unknown",
		OperatingSystem: "unknown",
	}
	if ua == "" {
		info.DeviceType = "unknown"
		return info
	}

	lower := strings.ToLower(ua)

	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		info.DeviceType = "tablet"
	case strings.Contains(lower, "mobi") || strings.Contains(lower, "android") || strings.Contains(lower, "iphone"):
		info.DeviceType = "mobile"
	case strings.Contains(lower, "bot") || strings.Contains(lower, "crawler") || strings.Contains(lower, "spider"):
		info.DeviceType = "bot"
	}

	// Order matters: Edge and Opera UAs also contain "chrome", and
	// Chrome UAs contain "safari".
	switch {
	case strings.Contains(lower, "edg/") || strings.Contains(lower, "edge"):
		info.Browser = "edge"
	case strings.Contains(lower, "opr/") || strings.Contains(lower, "opera"):
		info.Browser = "opera"
	case strings.Contains(lower, "firefox"):
		info.Browser = "firefox"
	case strings.Contains(lower, "chrome"):
		info.Browser = "chrome"
	case strings.Contains(lower, "safari"):
		info.Browser = "safari"
	}

	switch {
	case strings.Contains(lower, "android"):
		info.OperatingSystem = "android"
	case strings.Contains(lower, "iphone") || strings.Contains(lower, "ipad") || strings.Contains(lower, "ios"):
		info.OperatingSystem = "ios"
	case strings.Contains(lower, "windows"):
		info.OperatingSystem = "windows"
	case strings.Contains(lower, "mac os") || strings.Contains(lower, "macintosh"):
		info.OperatingSystem = "macos"
	case strings.Contains(lower, "linux"):
		info.OperatingSystem = "linux"
	}

	return info
}

// GenerateDeviceFingerprint derives a deterministic hash from the client
// IP and user-agent. Used for coarse device identification and anomaly
// flags only, not as a trust boundary.
func GenerateDeviceFingerprint(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + "|" + userAgent))
	return hex.EncodeToString(sum[:])
}
