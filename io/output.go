package io

import (
	"bufio"
	"encoding/binary"
	"fmt"
	goio "io"
	"os"
)

var end = binary.LittleEndian

/*
The binary format used for profile grids is as follows:
    |-- 1 --||-- ... 2 ... --||-- ... 3 ... --|

    1 - (ProfileHeader) Header containing meta-information about the grid.
        Its first field is a flag giving the endianness of the file: 0 for
        big endian, -1 for little endian.
    2 - ([Steps][Volume]float64) Mean value in every bin at every timestep.
        Bins are ordered with x varying fastest.
    3 - ([Steps][Volume]int64) Number of points which fell into every bin at
        every timestep. Empty bins are stored as 0 here even though their
        mean was computed by dividing by 1.
*/

type ProfileHeader struct {
	Type  TypeInfo
	Loc   LocationInfo
	Field FieldInfo
}

type TypeInfo struct {
	Endianness int64
	HeaderSize int64
}

type LocationInfo struct {
	Extent, BinWidth Vector
	Bins             IntVector
}

type FieldInfo struct {
	Component int64
	Steps     int64
}

type Vector [3]float64
type IntVector [3]int64

// Volume returns the number of bins in a single timestep.
func (hd *ProfileHeader) Volume() int {
	return int(hd.Loc.Bins[0] * hd.Loc.Bins[1] * hd.Loc.Bins[2])
}

// NewProfileHeader creates a header for a grid of the given size.
func NewProfileHeader(
	extent [3]float64, bins [3]int, component, steps int,
) *ProfileHeader {
	hd := &ProfileHeader{}
	if end == binary.LittleEndian {
		hd.Type.Endianness = -1
	}
	hd.Type.HeaderSize = int64(binary.Size(hd))

	for i := 0; i < 3; i++ {
		hd.Loc.Extent[i] = extent[i]
		hd.Loc.Bins[i] = int64(bins[i])
		hd.Loc.BinWidth[i] = extent[i] / float64(bins[i])
	}

	hd.Field.Component = int64(component)
	hd.Field.Steps = int64(steps)
	return hd
}

// WriteProfileGrid writes the means and counts of every timestep to fname.
func WriteProfileGrid(
	fname string, hd *ProfileHeader, means [][]float64, counts [][]int64,
) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}

	if err = EncodeProfileGrid(f, hd, means, counts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeProfileGrid writes a profile grid to wr.
func EncodeProfileGrid(
	wr goio.Writer, hd *ProfileHeader, means [][]float64, counts [][]int64,
) error {
	vol := hd.Volume()
	if len(means) != int(hd.Field.Steps) || len(counts) != int(hd.Field.Steps) {
		return fmt.Errorf(
			"Header has %d steps, but given %d means and %d counts.",
			hd.Field.Steps, len(means), len(counts),
		)
	}

	buf := bufio.NewWriter(wr)
	if err := binary.Write(buf, end, hd); err != nil {
		return err
	}
	for i := range means {
		if len(means[i]) != vol {
			return fmt.Errorf(
				"Step %d has %d means, but the grid has %d bins.",
				i, len(means[i]), vol,
			)
		}
		if err := binary.Write(buf, end, means[i]); err != nil {
			return err
		}
	}
	for i := range counts {
		if len(counts[i]) != vol {
			return fmt.Errorf(
				"Step %d has %d counts, but the grid has %d bins.",
				i, len(counts[i]), vol,
			)
		}
		if err := binary.Write(buf, end, counts[i]); err != nil {
			return err
		}
	}
	return buf.Flush()
}

// ReadProfileGrid reads a file written by WriteProfileGrid.
func ReadProfileGrid(
	fname string,
) (hd *ProfileHeader, means [][]float64, counts [][]int64, err error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()
	return DecodeProfileGrid(bufio.NewReader(f))
}

// DecodeProfileGrid reads a profile grid from rd.
func DecodeProfileGrid(
	rd goio.Reader,
) (hd *ProfileHeader, means [][]float64, counts [][]int64, err error) {
	// The endianness flag is the first int64, and -1 and 0 read the same
	// in either byte order.
	var flag int64
	if err = binary.Read(rd, binary.LittleEndian, &flag); err != nil {
		return nil, nil, nil, err
	}
	var order binary.ByteOrder = binary.LittleEndian
	if flag == 0 {
		order = binary.BigEndian
	} else if flag != -1 {
		return nil, nil, nil, fmt.Errorf("Invalid endianness flag, %d.", flag)
	}

	hd = &ProfileHeader{}
	hd.Type.Endianness = flag
	rest := struct {
		HeaderSize int64
		Loc        LocationInfo
		Field      FieldInfo
	}{}
	if err = binary.Read(rd, order, &rest); err != nil {
		return nil, nil, nil, err
	}
	hd.Type.HeaderSize, hd.Loc, hd.Field = rest.HeaderSize, rest.Loc, rest.Field

	if hd.Type.HeaderSize != int64(binary.Size(hd)) {
		return nil, nil, nil, fmt.Errorf(
			"Header size is %d, but expected %d.",
			hd.Type.HeaderSize, binary.Size(hd),
		)
	}

	vol, steps := hd.Volume(), int(hd.Field.Steps)
	if vol <= 0 || steps < 0 {
		return nil, nil, nil, fmt.Errorf(
			"Invalid grid shape: %d bins and %d steps.", vol, steps,
		)
	}

	means = make([][]float64, steps)
	for i := range means {
		means[i] = make([]float64, vol)
		if err = binary.Read(rd, order, means[i]); err != nil {
			return nil, nil, nil, err
		}
	}
	counts = make([][]int64, steps)
	for i := range counts {
		counts[i] = make([]int64, vol)
		if err = binary.Read(rd, order, counts[i]); err != nil {
			return nil, nil, nil, err
		}
	}

	return hd, means, counts, nil
}
