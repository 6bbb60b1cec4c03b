// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu implements render.Device on top of wgpu/hal.
//
// Triangles are produced by render.Collect on the CPU, so layer filtering is
// identical to the software device; the GPU only rasterizes them with a
// depth test. Each target is an RGBA8Unorm color texture plus a
// Depth24PlusStencil8 depth texture.
//
// WebGPU textures are stored top-down, so ReadPixels returns
// pixel.TopDown buffers that need no flip before encoding.
//
// The device can share a host's GPU (New, NewFromProvider) or open its own
// Vulkan adapter (Open). Build with -tags nogpu to exclude this package.
package gpu
