package io

import (
	"bufio"
	"fmt"
	goio "io"
	"os"

	"github.com/phil-mansfield/nanoflow/geom"
)

// WriteWireframeVTK writes a wireframe to fname as a legacy ASCII VTK
// POLYDATA file.
func WriteWireframeVTK(fname, title string, w *geom.Wireframe) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}

	if err = EncodeWireframeVTK(f, title, w); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeWireframeVTK writes the legacy VTK representation of a wireframe
// to wr.
func EncodeWireframeVTK(wr goio.Writer, title string, w *geom.Wireframe) error {
	buf := bufio.NewWriter(wr)

	fmt.Fprintf(buf, "# vtk DataFile Version 2.0\n")
	fmt.Fprintf(buf, "%s\n", title)
	fmt.Fprintf(buf, "ASCII\n")
	fmt.Fprintf(buf, "DATASET POLYDATA\n")

	fmt.Fprintf(buf, "POINTS %d double\n", len(w.Points))
	for _, p := range w.Points {
		fmt.Fprintf(buf, "%.9g %.9g %.9g\n", p[0], p[1], p[2])
	}

	fmt.Fprintf(buf, "LINES %d %d\n", len(w.Edges), 3*len(w.Edges))
	for _, e := range w.Edges {
		fmt.Fprintf(buf, "2 %d %d\n", e[0], e[1])
	}

	return buf.Flush()
}
