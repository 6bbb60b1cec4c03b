// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/layercap/render"
)

//go:embed shaders/mesh.wgsl
var meshShaderSource string

// meshVertexStride is the size of one vertex: position vec4 + color vec4.
const meshVertexStride = 32

// compileSPIRV compiles WGSL to little-endian SPIR-V words.
func compileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return code, nil
}

// ensurePipeline creates the shader, layout and render pipeline once.
func (d *Device) ensurePipeline() error {
	if d.pipeline != nil {
		return nil
	}
	if meshShaderSource == "" {
		return fmt.Errorf("gpu: mesh shader source is empty")
	}

	code, err := compileSPIRV(meshShaderSource)
	if err != nil {
		return fmt.Errorf("gpu: %w", err)
	}
	shader, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "layercap_mesh_shader",
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return fmt.Errorf("gpu: create mesh shader: %w", err)
	}
	d.shader = shader

	pipeLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "layercap_mesh_layout",
		BindGroupLayouts: []hal.BindGroupLayout{},
	})
	if err != nil {
		d.destroyPipeline()
		return fmt.Errorf("gpu: create mesh pipeline layout: %w", err)
	}
	d.pipeLayout = pipeLayout

	pipeline, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "layercap_mesh_pipeline",
		Layout: d.pipeLayout,
		Vertex: hal.VertexState{
			Module:     d.shader,
			EntryPoint: "vs_main",
			Buffers:    meshVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     d.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    render.TargetFormat,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      gputypes.CompareFunctionLess,
			StencilFront: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilBack: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilReadMask:  0x00,
			StencilWriteMask: 0x00,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		d.destroyPipeline()
		return fmt.Errorf("gpu: create mesh pipeline: %w", err)
	}
	d.pipeline = pipeline
	return nil
}

// destroyPipeline releases pipeline resources in reverse creation order.
func (d *Device) destroyPipeline() {
	if d.device == nil {
		return
	}
	if d.pipeline != nil {
		d.device.DestroyRenderPipeline(d.pipeline)
		d.pipeline = nil
	}
	if d.pipeLayout != nil {
		d.device.DestroyPipelineLayout(d.pipeLayout)
		d.pipeLayout = nil
	}
	if d.shader != nil {
		d.device.DestroyShaderModule(d.shader)
		d.shader = nil
	}
}

func meshVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: meshVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},  // clip position
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 1}, // color
			},
		},
	}
}

// buildMeshVertices packs triangles into the vertex layout of the mesh
// shader. Clip-space z is remapped from the [-w, w] range produced by the
// camera to the [0, w] range WebGPU expects.
func buildMeshVertices(tris []render.Triangle) []byte {
	buf := make([]byte, len(tris)*3*meshVertexStride)
	off := 0
	for i := range tris {
		c := tris[i].Color
		rgba := [4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
		for _, p := range tris[i].Clip {
			z := (p[2] + p[3]) * 0.5
			putFloats(buf[off:], p[0], p[1], z, p[3])
			putFloats(buf[off+16:], rgba[0], rgba[1], rgba[2], rgba[3])
			off += meshVertexStride
		}
	}
	return buf
}

func putFloats(buf []byte, v ...float32) {
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
}

// encodeSubmitDraw clears t and draws tris into it, waiting for completion.
func (d *Device) encodeSubmitDraw(t *target, tris []render.Triangle) error {
	var vertBuf hal.Buffer
	if len(tris) > 0 {
		data := buildMeshVertices(tris)
		buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "layercap_mesh_verts",
			Size:  uint64(len(data)),
			Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("gpu: create vertex buffer: %w", err)
		}
		defer d.device.DestroyBuffer(buf)
		d.queue.WriteBuffer(buf, 0, data)
		vertBuf = buf
	}

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "layercap_draw_encoder",
	})
	if err != nil {
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("layercap_draw"); err != nil {
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}

	c := d.clear
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "layercap_draw_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    t.colorView,
			LoadOp:  gputypes.LoadOpClear,
			StoreOp: gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: float64(c.R) / 255, G: float64(c.G) / 255,
				B: float64(c.B) / 255, A: float64(c.A) / 255,
			},
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              t.depthView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		},
	})
	if vertBuf != nil {
		rp.SetPipeline(d.pipeline)
		rp.SetVertexBuffer(0, vertBuf, 0)
		rp.Draw(uint32(len(tris)*3), 1, 0, 0) //nolint:gosec // bounded by scene size
	}
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	if err := d.submitAndWait(cmdBuf); err != nil {
		return err
	}
	t.rendered = true
	render.Logger().Debug("gpu: draw", "triangles", len(tris),
		"size", fmt.Sprintf("%dx%d", t.width, t.height))
	return nil
}
