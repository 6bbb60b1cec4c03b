// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render draws a scene through a camera into a render target and
// reads the result back.
//
// # Core Interfaces
//
//   - Device: the render context. It owns a default (on-screen) framebuffer,
//     creates offscreen Targets, tracks which target is bound, renders and
//     reads pixels back.
//   - Target: an offscreen color surface with its own size, independent of
//     the viewport. Targets are released explicitly, exactly once.
//
// # Visibility
//
// Collect walks the scene and keeps only objects whose layer mask
// intersects the camera's mask. Both devices render what Collect returns,
// so layer filtering behaves identically on CPU and GPU.
//
// # Devices
//
//   - Software: CPU z-buffer rasterizer. Storage is bottom-up like an
//     OpenGL framebuffer, so ReadPixels returns pixel.BottomUp buffers.
//   - gpu.Device (package render/gpu): wgpu/hal implementation. WebGPU
//     textures are top-down, so its ReadPixels returns pixel.TopDown.
//
// # Usage
//
//	dev, _ := render.NewSoftware(800, 600)
//	target, _ := dev.CreateTarget(400, 600)
//	defer target.Release()
//
//	prev, _ := dev.SetRenderTarget(target)
//	err := dev.Render(sc, cam)
//	dev.SetRenderTarget(prev)
//
//	buf, err := dev.ReadPixels(target)
//
// # Thread Safety
//
// Devices are NOT thread-safe. A device and its targets must be used from a
// single goroutine, the render thread.
package render
