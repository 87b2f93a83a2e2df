package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"sync"

	"go.uber.org/zap"

	"driver-portal-api-server/internal/models"
)

var (
	// ErrCameraUnavailable means the platform denied or lacks camera
	// access. The pose state is left unchanged.
	ErrCameraUnavailable = errors.New("camera unavailable")

	// ErrCaptureInProgress means another pose already owns the single
	// active camera stream.
	ErrCaptureInProgress = errors.New("capture already in progress")

	// ErrNotCaptured is returned by Retake for a pose that has no photo.
	ErrNotCaptured = errors.New("pose not captured")
)

// jpegQuality matches the portal's compressed still encoding.
const jpegQuality = 80

// Stream is a live camera acquisition. At most one is open at a time.
type Stream interface {
	// Frame returns the current video frame.
	Frame() (image.Image, error)
	Close() error
}

// Camera acquires a video stream, typically at a preferred resolution the
// device is free to ignore.
type Camera interface {
	Open(ctx context.Context) (Stream, error)
}

// Workflow walks the fixed set of required poses, capturing one
// JPEG-encoded still per pose. Completion is order-independent.
type Workflow struct {
	camera Camera
	logger *zap.Logger

	mu         sync.Mutex
	active     Stream
	activePose models.PhotoType
	photos     map[models.PhotoType][]byte
}

func NewWorkflow(camera Camera, logger *zap.Logger) *Workflow {
	return &Workflow{
		camera: camera,
		logger: logger,
		photos: make(map[models.PhotoType][]byte),
	}
}

// Begin acquires the camera for the given pose. It fails without touching
// pose state when the camera is unavailable or another capture is active.
func (w *Workflow) Begin(ctx context.Context, pose models.PhotoType) error {
	if !pose.Valid() {
		return fmt.Errorf("unknown pose %q", pose)
	}

	w.mu.Lock()
	if w.active != nil && w.activePose != pose {
		w.mu.Unlock()
		return ErrCaptureInProgress
	}
	w.mu.Unlock()

	stream, err := w.camera.Open(ctx)
	if err != nil {
		w.logger.Warn("camera acquisition failed", zap.String("pose", string(pose)), zap.Error(err))
		return ErrCameraUnavailable
	}

	w.mu.Lock()
	// Re-begin on the same pose replaces the stream.
	if w.active != nil {
		w.active.Close()
	}
	w.active = stream
	w.activePose = pose
	w.mu.Unlock()
	return nil
}

// Snapshot renders the current frame into a compressed still, records it
// under the active pose and releases the stream. With no active capture
// it is a silent no-op.
func (w *Workflow) Snapshot() error {
	w.mu.Lock()
	stream := w.active
	pose := w.activePose
	w.mu.Unlock()

	if stream == nil {
		return nil
	}

	frame, err := stream.Frame()
	if err != nil {
		return fmt.Errorf("failed to grab frame: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}

	w.mu.Lock()
	w.photos[pose] = buf.Bytes()
	w.active = nil
	w.activePose = ""
	w.mu.Unlock()

	stream.Close()
	w.logger.Info("photo captured", zap.String("pose", string(pose)), zap.Int("bytes", buf.Len()))
	return nil
}

// Cancel releases the active stream without recording a photo. The pose
// keeps its prior state.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	stream := w.active
	w.active = nil
	w.activePose = ""
	w.mu.Unlock()

	if stream != nil {
		stream.Close()
	}
}

// Retake discards the photo for an already-captured pose so it can be
// captured again. Other poses are untouched.
func (w *Workflow) Retake(pose models.PhotoType) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.photos[pose]; !ok {
		return ErrNotCaptured
	}
	delete(w.photos, pose)
	return nil
}

// Captured reports whether the pose has a recorded photo.
func (w *Workflow) Captured(pose models.PhotoType) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.photos[pose]
	return ok
}

// Complete is true iff all three required poses are captured.
func (w *Workflow) Complete() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, pose := range models.PhotoTypes {
		if _, ok := w.photos[pose]; !ok {
			return false
		}
	}
	return true
}

// Photos returns a copy of the captured photo set, keyed by pose.
func (w *Workflow) Photos() map[models.PhotoType][]byte {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make(map[models.PhotoType][]byte, len(w.photos))
	for pose, blob := range w.photos {
		out[pose] = blob
	}
	return out
}
