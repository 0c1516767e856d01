package model

// Prediction is the top-1 result of a single forward pass.
type Prediction struct {
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
}

// Options configures the recognizer at load time.
type Options struct {
	// ModelPath is the exported ONNX graph (backbone, recurrent layer and
	// classification head in a single artifact).
	ModelPath string
	// ImageSize is the square input resolution the model was trained on.
	ImageSize int
	// Sessions is the number of pooled inference sessions.
	Sessions int
	// LibraryPath optionally points at the ONNX runtime shared library.
	LibraryPath string
}
