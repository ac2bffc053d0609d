// Package export writes root systems to interchange formats: RSML for
// architecture databases, VTP polydata for ParaView, CSV tables for
// analysis scripts, and a ParaView python script for the confining
// geometry.
package export

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pthm-cable/taproot"
)

// Write writes the current simulation results to path, picking the format
// from the extension: .vtp, .rsml, .csv (segment table), or .py for a
// ParaView script of the confining geometry.
func Write(s *taproot.RootSystem, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	slog.Debug("writing output", "path", path)

	switch ext := filepath.Ext(path); ext {
	case ".vtp":
		err = WriteVTP(s, f)
	case ".rsml":
		err = WriteRSML(s, f)
	case ".csv":
		err = WriteSegments(s, f)
	case ".py":
		if g := s.Geometry(); g != nil {
			err = WriteGeometry(g, f)
		} else {
			err = errors.New("no confining geometry to write")
		}
	default:
		err = fmt.Errorf("unknown output format %q", ext)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
