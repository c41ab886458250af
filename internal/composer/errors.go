package composer

import "errors"

var (
	// ErrBitmapLoad reports that a QR or logo bitmap could not be
	// loaded (network, CORS, 404).
	ErrBitmapLoad = errors.New("bitmap load failed")

	// ErrCanvasUnavailable reports that the drawing surface could not
	// be created. Fatal for that call, never retried.
	ErrCanvasUnavailable = errors.New("drawing surface unavailable")

	// ErrMissingInput reports a required business field absent before
	// any I/O was attempted.
	ErrMissingInput = errors.New("missing required input")
)
