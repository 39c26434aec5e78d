//go:build noviewer

package app

import (
	"context"
	"errors"
)

// RunViewer is unavailable in builds tagged noviewer (headless hosts without
// the window system libraries ebiten links against).
func RunViewer(ctx context.Context) error {
	return errors.New("viewer not built in (noviewer build tag)")
}
