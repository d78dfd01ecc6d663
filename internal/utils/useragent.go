package utils

import (
	"strings"

	"github.com/mssola/user_agent"
)

// DeviceInfo is the parsed summary of a client User-Agent header
type DeviceInfo struct {
	Browser    string
	OS         string
	DeviceType string
	Raw        string
}

// ParseUserAgent extracts browser, OS and device class from a raw
// User-Agent header value.
func ParseUserAgent(raw string) DeviceInfo {
	info := DeviceInfo{Raw: raw, DeviceType: "unknown"}
	if strings.TrimSpace(raw) == "" {
		return info
	}

	ua := user_agent.New(raw)
	name, version := ua.Browser()
	info.Browser = strings.TrimSpace(name + " " + version)
	info.OS = ua.OS()

	switch {
	case ua.Bot():
		info.DeviceType = "bot"
	case ua.Mobile():
		info.DeviceType = "mobile"
	default:
		info.DeviceType = "desktop"
	}

	return info
}
