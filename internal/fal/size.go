package fal

import (
	"strconv"
	"strings"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 1024
)

// SupportedSizes are the output sizes offered in the UI.
var SupportedSizes = []string{
	"1024x1024",
	"1280x720",
	"2048x2048",
	"2560x1440",
	"3072x3072",
	"4096x4096",
}

// ParseSize splits "{W}x{H}" into positive integers, falling back to 1024x1024.
func ParseSize(size string) (int, int) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(size)), "x")
	if len(parts) != 2 {
		return DefaultWidth, DefaultHeight
	}
	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || width <= 0 {
		return DefaultWidth, DefaultHeight
	}
	height, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || height <= 0 {
		return DefaultWidth, DefaultHeight
	}
	return width, height
}
