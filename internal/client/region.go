// ABOUTME: Control plane regions and their base URLs
// ABOUTME: Parses region names from prompts, flags and config

package client

import (
	"fmt"
	"strings"
)

// Region identifies an Anypoint control plane
type Region string

const (
	RegionEU Region = "EU"
	RegionUS Region = "US"
)

const (
	euBaseURL = "https://eu1.anypoint.mulesoft.com"
	usBaseURL = "https://anypoint.mulesoft.com"
)

// Regions lists the supported control planes in prompt order
var Regions = []Region{RegionEU, RegionUS}

// BaseURL returns the control plane endpoint for the region
func (r Region) BaseURL() string {
	if r == RegionUS {
		return usBaseURL
	}
	return euBaseURL
}

// ParseRegion converts user input into a Region
func ParseRegion(s string) (Region, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EU":
		return RegionEU, nil
	case "US":
		return RegionUS, nil
	}
	return "", fmt.Errorf("unknown control plane region %q (expected EU or US)", s)
}
