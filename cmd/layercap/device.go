//go:build !nogpu

package main

import (
	"github.com/gogpu/layercap/render"
	"github.com/gogpu/layercap/render/gpu"
)

func openDevice(useGPU bool, width, height int) (render.Device, error) {
	if useGPU {
		d, err := gpu.Open(width, height)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	d, err := render.NewSoftware(width, height)
	if err != nil {
		return nil, err
	}
	return d, nil
}
