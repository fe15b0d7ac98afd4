package render

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/icza/mjpeg"
)

// FrameSink receives rendered frames in order.
type FrameSink interface {
	WriteFrame(img image.Image) error
	Close() error
}

const jpegQuality = 90

// MJPEGSink writes frames to a Motion-JPEG AVI file.
type MJPEGSink struct {
	aw  mjpeg.AviWriter
	buf bytes.Buffer
	n   int
}

// NewMJPEGSink creates an AVI file for frames of the given size.
func NewMJPEGSink(fname string, width, height, fps int) (*MJPEGSink, error) {
	aw, err := mjpeg.New(fname, int32(width), int32(height), int32(fps))
	if err != nil {
		return nil, err
	}
	return &MJPEGSink{aw: aw}, nil
}

func (s *MJPEGSink) WriteFrame(img image.Image) error {
	s.buf.Reset()
	err := jpeg.Encode(&s.buf, img, &jpeg.Options{Quality: jpegQuality})
	if err != nil {
		return err
	}
	s.n++
	return s.aw.AddFrame(s.buf.Bytes())
}

func (s *MJPEGSink) Close() error {
	log.Printf("Wrote %d frames", s.n)
	return s.aw.Close()
}

// PNGSink writes every frame to its own numbered PNG file in Dir.
type PNGSink struct {
	Dir, Prefix string
	n           int
}

// NewPNGSink creates dir if needed.
func NewPNGSink(dir, prefix string) (*PNGSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &PNGSink{Dir: dir, Prefix: prefix}, nil
}

// FileName returns the name of frame i.
func (s *PNGSink) FileName(i int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%s_%04d.png", s.Prefix, i))
}

func (s *PNGSink) WriteFrame(img image.Image) error {
	f, err := os.Create(s.FileName(s.n))
	if err != nil {
		return err
	}
	if err = png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	s.n++
	return f.Close()
}

func (s *PNGSink) Close() error { return nil }
