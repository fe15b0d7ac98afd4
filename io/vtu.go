package io

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	goio "io"
	"math"
	"os"
	"strconv"
	"strings"
)

/*
VTU files are the XML UnstructuredGrid files written by the simulation's
VTKWriter. Only the parts of the format needed to get point positions and
per-point arrays out of a single piece are supported:

    <VTKFile type="UnstructuredGrid" byte_order="LittleEndian">
      <UnstructuredGrid>
        <Piece NumberOfPoints="N">
          <PointData> <DataArray Name="velocity" .../> ... </PointData>
          <Points> <DataArray NumberOfComponents="3" .../> </Points>
        </Piece>
      </UnstructuredGrid>
    </VTKFile>

DataArrays may use format="ascii" or format="binary" (inline base64 with a
single length header). Appended data and compression are not supported.
*/

type vtkFile struct {
	Type       string `xml:"type,attr"`
	ByteOrder  string `xml:"byte_order,attr"`
	HeaderType string `xml:"header_type,attr"`
	Compressor string `xml:"compressor,attr"`
	Grid       *struct {
		Pieces []vtuPiece `xml:"Piece"`
	} `xml:"UnstructuredGrid"`
}

type vtuPiece struct {
	NumberOfPoints int            `xml:"NumberOfPoints,attr"`
	PointData      []vtuDataArray `xml:"PointData>DataArray"`
	Points         []vtuDataArray `xml:"Points>DataArray"`
}

type vtuDataArray struct {
	Type               string `xml:"type,attr"`
	Name               string `xml:"Name,attr"`
	NumberOfComponents int    `xml:"NumberOfComponents,attr"`
	Format             string `xml:"format,attr"`
	Text               string `xml:",chardata"`
}

// DataArray is a named per-point array with Components values per point.
type DataArray struct {
	Name       string
	Components int
	Vals       []float64
}

// At returns component c of point i.
func (arr *DataArray) At(i, c int) float64 {
	return arr.Vals[i*arr.Components+c]
}

// Len returns the number of points in the array.
func (arr *DataArray) Len() int {
	return len(arr.Vals) / arr.Components
}

// PointCloud is the contents of a VTU file: point positions and every
// per-point data array.
type PointCloud struct {
	Points    [][3]float64
	PointData map[string]*DataArray
}

// Array returns the named point data array or an error listing the arrays
// which do exist.
func (pc *PointCloud) Array(name string) (*DataArray, error) {
	arr, ok := pc.PointData[name]
	if !ok {
		names := []string{}
		for n := range pc.PointData {
			names = append(names, n)
		}
		return nil, fmt.Errorf(
			"No point data array named '%s'. Available arrays are: [%s].",
			name, strings.Join(names, ", "),
		)
	}
	return arr, nil
}

// ReadVTU reads a VTU file into a PointCloud.
func ReadVTU(fname string) (*PointCloud, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pc, err := DecodeVTU(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return pc, nil
}

// DecodeVTU reads a VTU file from rd into a PointCloud.
func DecodeVTU(rd goio.Reader) (*PointCloud, error) {
	vf := &vtkFile{}
	if err := xml.NewDecoder(rd).Decode(vf); err != nil {
		return nil, err
	}

	if vf.Type != "UnstructuredGrid" || vf.Grid == nil {
		return nil, fmt.Errorf(
			"VTK file has type '%s', not 'UnstructuredGrid'.", vf.Type,
		)
	} else if len(vf.Grid.Pieces) != 1 {
		return nil, fmt.Errorf(
			"VTU file has %d pieces, but exactly 1 is supported.",
			len(vf.Grid.Pieces),
		)
	} else if vf.Compressor != "" {
		return nil, fmt.Errorf("Compressed VTU files are not supported.")
	}

	var order binary.ByteOrder = binary.LittleEndian
	if vf.ByteOrder == "BigEndian" {
		order = binary.BigEndian
	}
	header := vf.HeaderType
	if header == "" {
		header = "UInt32"
	}

	piece := &vf.Grid.Pieces[0]
	n := piece.NumberOfPoints
	if n < 0 {
		return nil, fmt.Errorf("Invalid NumberOfPoints value, %d.", n)
	}

	pc := &PointCloud{
		Points:    make([][3]float64, n),
		PointData: map[string]*DataArray{},
	}

	if n > 0 {
		if len(piece.Points) != 1 {
			return nil, fmt.Errorf("VTU piece has no point coordinates.")
		}
		pts, err := decodeDataArray(&piece.Points[0], n, order, header)
		if err != nil {
			return nil, err
		}
		if pts.Components != 3 {
			return nil, fmt.Errorf(
				"Points have %d components, not 3.", pts.Components,
			)
		}
		for i := range pc.Points {
			pc.Points[i] = [3]float64{pts.At(i, 0), pts.At(i, 1), pts.At(i, 2)}
		}
	}

	for i := range piece.PointData {
		arr, err := decodeDataArray(&piece.PointData[i], n, order, header)
		if err != nil {
			return nil, err
		}
		pc.PointData[arr.Name] = arr
	}

	return pc, nil
}

func decodeDataArray(
	da *vtuDataArray, n int, order binary.ByteOrder, header string,
) (*DataArray, error) {
	arr := &DataArray{Name: da.Name, Components: da.NumberOfComponents}
	if arr.Components == 0 {
		arr.Components = 1
	}
	want := n * arr.Components

	var err error
	switch da.Format {
	case "ascii", "":
		arr.Vals, err = parseASCII(da.Text)
	case "binary":
		arr.Vals, err = parseBinary(da.Text, da.Type, order, header)
	default:
		return nil, fmt.Errorf(
			"DataArray '%s' has unsupported format '%s'.", da.Name, da.Format,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("DataArray '%s': %w", da.Name, err)
	}

	if len(arr.Vals) != want {
		return nil, fmt.Errorf(
			"DataArray '%s' has %d values, but %d points with %d "+
				"components require %d.",
			da.Name, len(arr.Vals), n, arr.Components, want,
		)
	}
	return arr, nil
}

func parseASCII(text string) ([]float64, error) {
	toks := strings.Fields(text)
	xs := make([]float64, len(toks))
	for i, tok := range toks {
		x, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("'%s' does not parse as a number.", tok)
		}
		xs[i] = x
	}
	return xs, nil
}

func parseBinary(
	text, typ string, order binary.ByteOrder, header string,
) ([]float64, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(text), ""))
	if err != nil {
		return nil, err
	}

	var size uint64
	rd := bytes.NewReader(raw)
	switch header {
	case "UInt32":
		var s uint32
		err = binary.Read(rd, order, &s)
		size = uint64(s)
	case "UInt64":
		err = binary.Read(rd, order, &size)
	default:
		return nil, fmt.Errorf("Unsupported header_type '%s'.", header)
	}
	if err != nil {
		return nil, err
	}
	if size > uint64(rd.Len()) {
		return nil, fmt.Errorf(
			"Header gives %d bytes, but only %d are present.", size, rd.Len(),
		)
	}
	body := raw[len(raw)-rd.Len():][:size]

	width := typeSize(typ)
	if width == 0 {
		return nil, fmt.Errorf("Unsupported type '%s'.", typ)
	} else if len(body)%width != 0 {
		return nil, fmt.Errorf(
			"%d bytes is not a multiple of the %s size.", len(body), typ,
		)
	}

	xs := make([]float64, len(body)/width)
	for i := range xs {
		b := body[i*width : (i+1)*width]
		switch typ {
		case "Float32":
			xs[i] = float64(math.Float32frombits(order.Uint32(b)))
		case "Float64":
			xs[i] = math.Float64frombits(order.Uint64(b))
		case "Int32":
			xs[i] = float64(int32(order.Uint32(b)))
		case "Int64":
			xs[i] = float64(int64(order.Uint64(b)))
		case "UInt32":
			xs[i] = float64(order.Uint32(b))
		case "UInt64":
			xs[i] = float64(order.Uint64(b))
		}
	}
	return xs, nil
}

func typeSize(typ string) int {
	switch typ {
	case "Float32", "Int32", "UInt32":
		return 4
	case "Float64", "Int64", "UInt64":
		return 8
	}
	return 0
}
