// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "errors"

// Package errors.
var (
	// ErrInvalidDimension is returned when a target size is not positive.
	ErrInvalidDimension = errors.New("render: invalid dimension")

	// ErrDeviceLost is returned once the render context has been lost.
	// Render state is unknown afterwards; the device must be recreated.
	ErrDeviceLost = errors.New("render: device lost")

	// ErrDeviceClosed is returned for operations on a closed device.
	ErrDeviceClosed = errors.New("render: device closed")

	// ErrReleased is returned for operations on a released target,
	// including a second Release.
	ErrReleased = errors.New("render: target released")

	// ErrForeignTarget is returned when a target created by one device is
	// passed to another.
	ErrForeignTarget = errors.New("render: target belongs to another device")
)
