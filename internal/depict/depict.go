// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package depict turns SMILES strings into titled 2D structure images.
// The builtin backend parses and lays out the molecule itself; the
// container backend delegates to an RDKit renderer image.
package depict

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"

	"github.com/pdiddy/cddprep/internal/container"
	"github.com/pdiddy/cddprep/internal/smiles"
	"github.com/pdiddy/cddprep/pkg/types"
)

// Depicter renders one SMILES string to an image carrying title.
type Depicter interface {
	Depict(ctx context.Context, smiles, title string) (image.Image, error)
}

// Builtin renders structures in-process.
type Builtin struct {
	Width, Height int
}

// Depict parses s, lays it out, and draws it with title in the top band.
func (b *Builtin) Depict(ctx context.Context, s, title string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := smiles.Parse(s)
	if err != nil {
		return nil, err
	}
	w, h := b.Width, b.Height
	if w <= 0 {
		w = 300
	}
	if h <= 0 {
		h = 300
	}
	img := Render(m, Layout(m), w, h)
	Annotate(img, title)
	return img, nil
}

// Container renders structures by piping SMILES through a renderer image
// that writes PNG to stdout.
type Container struct {
	runtime container.Runtime
	image   string
}

// NewContainer verifies that image exists in rt before returning.
func NewContainer(rt container.Runtime, image string) (*Container, error) {
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("depiction image not available in %s: %w", rt.Name(), err)
	}
	return &Container{runtime: rt, image: image}, nil
}

// Depict runs the renderer on s and adds title above the returned picture.
func (c *Container) Depict(ctx context.Context, s, title string) (image.Image, error) {
	var out bytes.Buffer
	if err := c.runtime.Run(ctx, c.image, strings.NewReader(strings.TrimSpace(s)+"\n"), &out); err != nil {
		return nil, fmt.Errorf("rendering %q with %s: %w", s, c.image, err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("%s produced empty output for %q", c.image, s)
	}
	src, err := png.Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("decoding %s output for %q: %w", c.image, s, err)
	}

	sb := src.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, sb.Dx(), sb.Dy()+titleBand))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, titleBand, sb.Dx(), titleBand+sb.Dy()), src, sb.Min, draw.Src)
	Annotate(img, title)
	return img, nil
}

// New builds the depicter selected by cfg.Backend. The container backend
// detects docker or podman on PATH.
func New(cfg types.VisualizeConfig) (Depicter, error) {
	switch cfg.Backend {
	case types.BackendBuiltin, "":
		return &Builtin{Width: cfg.Width, Height: cfg.Height}, nil
	case types.BackendContainer:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return NewContainer(rt, cfg.ContainerImage)
	}
	return nil, fmt.Errorf("unknown depiction backend %q (want %s or %s)", cfg.Backend, types.BackendBuiltin, types.BackendContainer)
}
