package control

import (
	"fmt"
	"strings"

	"github.com/woozymasta/geofield/internal/config"
)

// Shell is the container the map surface is rendered into.
type Shell struct {
	Height string `json:"height"`
}

// NewShell falls back to the default height for an empty value.
func NewShell(height string) Shell {
	if strings.TrimSpace(height) == "" {
		height = config.DefaultHeight
	}
	return Shell{Height: height}
}

// CSS is the inline style of the container element.
func (s Shell) CSS() string {
	return fmt.Sprintf("padding: 0; overflow: hidden; height: %s;", s.Height)
}
