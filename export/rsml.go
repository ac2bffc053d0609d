package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/pthm-cable/taproot"
)

// Only every rsmlReduction-th interior node goes to file; first and tip
// nodes are always kept. Coarser axial resolution keeps files manageable.
const rsmlReduction = 5

type rsmlDoc struct {
	XMLName  xml.Name `xml:"rsml"`
	Metadata rsmlMeta `xml:"metadata"`
	Scene    struct {
		Plant struct {
			Roots []rsmlRoot `xml:"root"`
		} `xml:"plant"`
	} `xml:"scene"`
}

type rsmlMeta struct {
	Version      int    `xml:"version"`
	Unit         string `xml:"unit"`
	Resolution   int    `xml:"resolution"`
	LastModified string `xml:"last-modified"`
	Software     string `xml:"software"`
}

type rsmlRoot struct {
	ID       int `xml:"id,attr"`
	Geometry struct {
		Polyline struct {
			Points []rsmlPoint `xml:"point"`
		} `xml:"polyline"`
	} `xml:"geometry"`
	Properties struct{} `xml:"properties"`
	Functions  struct {
		Functions []rsmlFunction `xml:"function"`
	} `xml:"functions"`
	Children []rsmlRoot `xml:"root"`
}

type rsmlPoint struct {
	X float64 `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
	Z float64 `xml:"z,attr"`
}

type rsmlFunction struct {
	Name    string    `xml:"name,attr"`
	Domain  string    `xml:"domain,attr"`
	Samples []float64 `xml:"sample"`
}

// WriteRSML writes the root system as an RSML document. The root hierarchy
// nests laterals inside their parent, each grown axis carrying its reduced
// polyline and per-point emergence times.
func WriteRSML(s *taproot.RootSystem, w io.Writer) error {
	var doc rsmlDoc
	doc.Metadata = rsmlMeta{
		Version:      1,
		Unit:         "cm",
		Resolution:   1,
		LastModified: time.Now().Format("02-01-2006"),
		Software:     "taproot",
	}
	for _, r := range s.BaseRoots() {
		if r.NumberOfNodes() > 1 {
			doc.Scene.Plant.Roots = append(doc.Scene.Plant.Roots, rsmlRootFrom(r))
		}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding rsml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func rsmlRootFrom(r *taproot.Root) rsmlRoot {
	idx := reducedIndices(r.NumberOfNodes())
	points := make([]rsmlPoint, len(idx))
	samples := make([]float64, len(idx))
	for k, i := range idx {
		p := r.Node(i)
		points[k] = rsmlPoint{X: p.X, Y: p.Y, Z: p.Z}
		samples[k] = r.NodeTime(i)
	}

	var root rsmlRoot
	root.ID = r.ID()
	root.Geometry.Polyline.Points = points
	root.Functions.Functions = []rsmlFunction{
		{Name: "emergence_time", Domain: "polyline", Samples: samples},
	}
	for _, c := range r.Children() {
		if c.NumberOfNodes() > 1 {
			root.Children = append(root.Children, rsmlRootFrom(c))
		}
	}
	return root
}

// reducedIndices picks the polyline indices kept for output: the first
// node, every rsmlReduction-th interior node, and the tip.
func reducedIndices(n int) []int {
	idx := []int{0}
	for i := 1; i < n-1; i += rsmlReduction {
		idx = append(idx, i)
	}
	return append(idx, n-1)
}
