// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/layercap/pixel"
)

// copyPitchAlignment is the WebGPU row alignment for texture-to-buffer copies.
const copyPitchAlignment = 256

// alignedRowBytes returns the padded row size for a copy of width pixels.
func alignedRowBytes(width uint32) uint32 {
	bytesPerRow := width * pixel.BytesPerPixel
	return (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// readback copies t's color texture to a staging buffer, waits for the GPU
// and returns the tightly packed top-down pixels. A target that has never
// been drawn reads back as transparent black without touching the GPU.
func (d *Device) readback(t *target) (pixel.Buffer, error) {
	w, h := t.width, t.height
	if !t.rendered {
		return pixel.NewBuffer(int(w), int(h), pixel.TopDown), nil
	}
	bytesPerRow := w * pixel.BytesPerPixel
	alignedBytesPerRow := alignedRowBytes(w)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "layercap_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return pixel.Buffer{}, fmt.Errorf("gpu: create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "layercap_readback_encoder",
	})
	if err != nil {
		return pixel.Buffer{}, fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("layercap_readback"); err != nil {
		return pixel.Buffer{}, fmt.Errorf("gpu: begin encoding: %w", err)
	}

	// The render pass leaves the texture as a render attachment; the copy
	// needs it as a copy source.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.colorTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.colorTex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.colorTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.colorTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return pixel.Buffer{}, fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	if err := d.submitAndWait(cmdBuf); err != nil {
		return pixel.Buffer{}, err
	}

	raw := make([]byte, stagingSize)
	if err := d.queue.ReadBuffer(staging, 0, raw); err != nil {
		return pixel.Buffer{}, fmt.Errorf("gpu: readback: %w", err)
	}

	buf := pixel.NewBuffer(int(w), int(h), pixel.TopDown)
	stripRowPadding(buf.Pix, raw, int(bytesPerRow), int(alignedBytesPerRow), int(h))
	return buf, nil
}

// stripRowPadding copies rows of rowBytes from src (rows of pitch bytes)
// into the tightly packed dst.
func stripRowPadding(dst, src []byte, rowBytes, pitch, rows int) {
	if rowBytes == pitch {
		copy(dst, src[:rowBytes*rows])
		return
	}
	for row := 0; row < rows; row++ {
		copy(dst[row*rowBytes:(row+1)*rowBytes], src[row*pitch:row*pitch+rowBytes])
	}
}
