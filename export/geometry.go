package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/pthm-cable/taproot/sdf"
)

// WriteGeometry writes a ParaView python script that rebuilds the confining
// geometry, for overlaying the domain shape on vtp output.
func WriteGeometry(g sdf.Geometry, w io.Writer) error {
	body, last, err := sdf.Script(g)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("from paraview.simple import *\n")
	b.WriteString("paraview.simple._DisableFirstRenderCameraReset()\n")
	b.WriteString("renderView1 = GetActiveViewOrCreate('RenderView')\n\n")
	b.WriteString(body)
	fmt.Fprintf(&b, "\nobj%dDisplay = Show(obj%d, renderView1)\n", last, last)
	fmt.Fprintf(&b, "obj%dDisplay.Opacity = 0.2\n", last)
	fmt.Fprintf(&b, "obj%dDisplay.DiffuseColor = [0.0, 0.0, 1.0]\n", last)
	b.WriteString("renderView1.ResetCamera()\n")

	_, err = io.WriteString(w, b.String())
	return err
}
