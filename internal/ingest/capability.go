package ingest

import (
	"fmt"
	"strings"
)

// Capability names an optional decoder that can be missing at runtime.
type Capability string

const (
	CapHTML        Capability = "html"
	CapImage       Capability = "image"
	CapPDF         Capability = "pdf"
	CapSpreadsheet Capability = "spreadsheet"
	CapCode        Capability = "code"
)

// AllCapabilities lists every optional capability in a stable order.
var AllCapabilities = []Capability{CapHTML, CapImage, CapPDF, CapSpreadsheet, CapCode}

// Capabilities records which optional decoders are usable.
type Capabilities map[Capability]bool

// Available reports whether c can be used.
func (c Capabilities) Available(name Capability) bool { return c[name] }

// ParseCapability validates a capability name (case-insensitive).
func ParseCapability(name string) (Capability, error) {
	c := Capability(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range AllCapabilities {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown capability %q (known: %s)", name, capabilityList())
}

// DetectCapabilities probes the build for optional decoders once and then
// switches off the ones named in disabled.
func DetectCapabilities(disabled []string) (Capabilities, error) {
	caps := Capabilities{
		CapHTML:        true,
		CapImage:       true,
		CapPDF:         true,
		CapSpreadsheet: true,
		CapCode:        treeSitterAvailable,
	}
	for _, name := range disabled {
		if strings.TrimSpace(name) == "" {
			continue
		}
		c, err := ParseCapability(name)
		if err != nil {
			return nil, err
		}
		caps[c] = false
	}
	return caps, nil
}

func unavailable(c Capability) error {
	return fmt.Errorf("%w: %s support is disabled or not built in", ErrCapabilityUnavailable, c)
}

func capabilityList() string {
	names := make([]string, len(AllCapabilities))
	for i, c := range AllCapabilities {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
