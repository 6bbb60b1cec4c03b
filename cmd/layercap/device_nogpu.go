//go:build nogpu

package main

import (
	"errors"

	"github.com/gogpu/layercap/render"
)

func openDevice(useGPU bool, width, height int) (render.Device, error) {
	if useGPU {
		return nil, errors.New("built without GPU support (nogpu)")
	}
	d, err := render.NewSoftware(width, height)
	if err != nil {
		return nil, err
	}
	return d, nil
}
