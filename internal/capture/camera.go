package capture

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"
)

// FileCamera serves frames from image files on disk. It stands in for a
// physical camera on kiosks and in the CLI, where the operator points it
// at a pre-taken still per pose.
type FileCamera struct {
	mu     sync.Mutex
	source string
}

func NewFileCamera() *FileCamera {
	return &FileCamera{}
}

// SetSource names the image file the next opened stream will serve.
func (c *FileCamera) SetSource(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = path
}

func (c *FileCamera) Open(ctx context.Context) (Stream, error) {
	c.mu.Lock()
	source := c.source
	c.mu.Unlock()

	if source == "" {
		return nil, fmt.Errorf("no source image configured")
	}
	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("source image not readable: %w", err)
	}
	return &fileStream{path: source}, nil
}

type fileStream struct {
	path   string
	closed bool
}

func (s *fileStream) Frame() (image.Image, error) {
	if s.closed {
		return nil, fmt.Errorf("stream closed")
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	return img, nil
}

func (s *fileStream) Close() error {
	s.closed = true
	return nil
}
