// Package model runs single-image action inference against a pretrained
// ONNX graph. The model is loaded once at startup and shared, read-only,
// by all requests for the lifetime of the process.
package model

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"

	"actionapi/internal/labels"
)

// session bundles one ONNX session with its private input/output tensors.
// Run writes through these tensors, so a session must only ever serve one
// request at a time.
type session struct {
	sess   *ort.AdvancedSession
	input  *ort.Tensor[float32]
	output *ort.Tensor[float32]
}

func newSession(modelPath string, inputShape, outputShape ort.Shape) (*session, error) {
	input, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	output, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	sess, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output},
		nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &session{sess: sess, input: input, output: output}, nil
}

func (s *session) destroy() {
	if s.input != nil {
		s.input.Destroy()
	}
	if s.output != nil {
		s.output.Destroy()
	}
	if s.sess != nil {
		s.sess.Destroy()
	}
}

// Recognizer owns the loaded model and the label store. Concurrent
// requests each check a session out of the pool, so forward passes can
// run in parallel without sharing tensors.
type Recognizer struct {
	labels    *labels.Store
	imageSize int
	pool      chan *session
	sessions  []*session
}

// NewRecognizer loads the model and allocates the session pool. The output
// tensor is sized from the label count, so a model whose head doesn't
// match the label list fails here instead of at request time.
func NewRecognizer(opts Options, store *labels.Store) (*Recognizer, error) {
	if opts.LibraryPath != "" {
		ort.SetSharedLibraryPath(opts.LibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	r := &Recognizer{
		labels:    store,
		imageSize: opts.ImageSize,
		pool:      make(chan *session, opts.Sessions),
	}

	inputShape := ort.NewShape(1, 3, int64(opts.ImageSize), int64(opts.ImageSize))
	outputShape := ort.NewShape(1, int64(store.Len()))

	for i := 0; i < opts.Sessions; i++ {
		s, err := newSession(opts.ModelPath, inputShape, outputShape)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.sessions = append(r.sessions, s)
		r.pool <- s
	}

	log.Infof("Model loaded from %s (%d classes, %d sessions)",
		opts.ModelPath, store.Len(), opts.Sessions)

	return r, nil
}

// PredictFile runs the full pipeline on the image at path: decode, resize,
// normalize, forward pass, softmax, top-1.
func (r *Recognizer) PredictFile(path string) (Prediction, error) {
	input, err := preprocessFile(path, r.imageSize)
	if err != nil {
		return Prediction{}, err
	}

	s := <-r.pool
	defer func() { r.pool <- s }()

	copy(s.input.GetData(), input)

	if err := s.sess.Run(); err != nil {
		return Prediction{}, fmt.Errorf("inference failed: %w", err)
	}

	probs := softmax(s.output.GetData())
	idx, confidence := top1(probs)

	action, err := r.labels.Get(idx)
	if err != nil {
		return Prediction{}, err
	}

	return Prediction{Action: action, Confidence: confidence}, nil
}

// Close releases all sessions, their tensors and the runtime environment.
func (r *Recognizer) Close() {
	for _, s := range r.sessions {
		s.destroy()
	}
	r.sessions = nil
	ort.DestroyEnvironment()
}
