package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pthm-cable/taproot"
)

type vtkFile struct {
	XMLName   xml.Name    `xml:"VTKFile"`
	Type      string      `xml:"type,attr"`
	Version   string      `xml:"version,attr"`
	ByteOrder string      `xml:"byte_order,attr"`
	PolyData  vtkPolyData `xml:"PolyData"`
}

type vtkPolyData struct {
	Piece vtkPiece `xml:"Piece"`
}

type vtkPiece struct {
	NumberOfLines  int          `xml:"NumberOfLines,attr"`
	NumberOfPoints int          `xml:"NumberOfPoints,attr"`
	PointData      vtkArrayList `xml:"PointData"`
	CellData       vtkArrayList `xml:"CellData"`
	Points         vtkArrayList `xml:"Points"`
	Lines          vtkArrayList `xml:"Lines"`
}

type vtkArrayList struct {
	Arrays []vtkDataArray `xml:"DataArray"`
}

type vtkDataArray struct {
	Type       string `xml:"type,attr"`
	Name       string `xml:"Name,attr"`
	Components int    `xml:"NumberOfComponents,attr"`
	Format     string `xml:"format,attr"`
	Data       string `xml:",chardata"`
}

// WriteVTP writes the root system as a VTK polydata file. Every grown axis
// becomes one polyline cell; emergence times ride along as point data and
// type, order and radius as cell data. Nodes shared between a parent and
// its laterals appear once per polyline.
func WriteVTP(s *taproot.RootSystem, w io.Writer) error {
	lines := s.Polylines()
	times := s.PolylineTimes()

	points := 0
	for _, l := range lines {
		points += len(l)
	}

	var timeData strings.Builder
	for _, l := range times {
		appendFloats(&timeData, l)
	}

	var coordData strings.Builder
	for _, l := range lines {
		for _, p := range l {
			appendFloats(&coordData, []float64{p.X, p.Y, p.Z})
		}
	}

	// One running index per node, each polyline claiming the next run.
	var connData, offsetData strings.Builder
	c := 0
	for _, l := range lines {
		for range l {
			appendInt(&connData, c)
			c++
		}
		appendInt(&offsetData, c)
	}

	doc := vtkFile{
		Type:      "PolyData",
		Version:   "0.1",
		ByteOrder: "LittleEndian",
	}
	piece := &doc.PolyData.Piece
	piece.NumberOfLines = len(lines)
	piece.NumberOfPoints = points
	piece.PointData.Arrays = []vtkDataArray{
		floatArray("time", 1, timeData.String()),
	}
	for _, st := range []taproot.ScalarType{taproot.ScalarRootType, taproot.ScalarOrder, taproot.ScalarRadius} {
		var b strings.Builder
		appendFloats(&b, s.Scalar(st))
		piece.CellData.Arrays = append(piece.CellData.Arrays, floatArray(st.String(), 1, b.String()))
	}
	piece.Points.Arrays = []vtkDataArray{
		floatArray("Coordinates", 3, coordData.String()),
	}
	piece.Lines.Arrays = []vtkDataArray{
		intArray("connectivity", connData.String()),
		intArray("offsets", offsetData.String()),
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding vtp: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func floatArray(name string, components int, data string) vtkDataArray {
	return vtkDataArray{Type: "Float32", Name: name, Components: components, Format: "ascii", Data: data}
}

func intArray(name string, data string) vtkDataArray {
	return vtkDataArray{Type: "Int32", Name: name, Components: 1, Format: "ascii", Data: data}
}

func appendFloats(b *strings.Builder, vals []float64) {
	for _, v := range vals {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
}

func appendInt(b *strings.Builder, v int) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(strconv.Itoa(v))
}
