// Package layercap captures a chosen subset of a 3D scene's layers into an
// encoded image.
//
// # Overview
//
// A Pipeline owns a private camera.CaptureCamera with a fixed layer mask and
// an offscreen render.Target. On each Capture it copies the interactive
// camera's viewpoint, renders the scene into the target with only the
// selected layers visible, reads the pixels back and encodes them as PNG.
// The interactive view is untouched: the previously bound render target is
// restored before Capture returns.
//
// # Quick Start
//
//	dev, _ := render.NewSoftware(1024, 768)
//	p, _ := layercap.New(dev, layercap.WithSize(512, 768), layercap.WithLayers(layer.Of(2)))
//	defer p.Close()
//
//	img, err := p.Capture(sc, cam)
//	if err != nil {
//	    return err
//	}
//	img.Save("capture.png")
//
// # Layers
//
// Objects and cameras carry a layer.Mask. An object is drawn when its mask
// and the camera's mask share at least one layer. The interactive camera
// usually sees everything; the capture camera sees only the layers passed to
// WithLayers (layer 1 by default).
//
// # Devices
//
// Any render.Device works. render.Software is deterministic and has no GPU
// dependencies; render/gpu renders with wgpu/hal and can share a host
// application's device.
//
// # Concurrency
//
// A Pipeline rejects overlapping captures with ErrCaptureInFlight. Rendering
// itself is not thread-safe: call Capture from the goroutine that owns the
// device.
//
// # Logging
//
// layercap is silent by default. Call SetLogger to enable structured
// logging via log/slog.
package layercap
