package render

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sagenex/teamtree/pkg/errors"
)

// rsvgBinary is the converter looked up on PATH.
var rsvgBinary = "rsvg-convert"

// Available reports whether SVG conversion is possible on this machine.
func Available() bool {
	_, err := exec.LookPath(rsvgBinary)
	return err == nil
}

// ToPDF converts SVG bytes to a single-page PDF.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "-f", "pdf")
}

// ToPNG converts SVG bytes to PNG. A scale of 2.0 produces a 2x resolution
// image suitable for high-DPI displays; values <= 0 mean 1.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(svg, "-f", "png", "-z", fmt.Sprintf("%g", scale))
}

func convert(svg []byte, args ...string) ([]byte, error) {
	bin, err := exec.LookPath(rsvgBinary)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "%s not found; install librsvg for PDF and PNG output", rsvgBinary)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(bin, args...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "conversion failed"
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", rsvgBinary, msg)
	}
	return stdout.Bytes(), nil
}
