package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"sync"
)

// ErrClosed is returned when frames are written after Close
var ErrClosed = errors.New("video stream closed")

// Settings describe the output stream
type Settings struct {
	Width, Height int
	FPS           int
	Encoder       string // h264_videotoolbox, h264_nvenc, libx264
	Quality       int
	Output        string
}

// FrameWriter accepts frames in presentation order
type FrameWriter interface {
	WriteFrame(img image.Image) error
	Close() error
}

// VideoEncoder opens a frame stream for an output file
type VideoEncoder interface {
	Open(ctx context.Context, s Settings) (FrameWriter, error)
}

type FFmpegEncoder struct {
	// Binary по умолчанию "ffmpeg"
	Binary string
}

// Open starts ffmpeg reading raw RGBA frames from stdin
func (e *FFmpegEncoder) Open(ctx context.Context, s Settings) (FrameWriter, error) {
	bin := e.Binary
	if bin == "" {
		bin = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, bin, BuildArgs(s)...)
	// Лог ffmpeg нужен только для текста ошибки
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	return &ffmpegStream{cmd: cmd, stdin: stdin, log: &out, size: image.Rect(0, 0, s.Width, s.Height)}, nil
}

// BuildArgs assembles the ffmpeg command line for a raw RGBA stream
func BuildArgs(s Settings) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", s.Width, s.Height),
		"-framerate", fmt.Sprintf("%d", s.FPS),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", s.Encoder,
	}
	args = append(args, QualityArgs(s.Encoder, s.Quality)...)
	args = append(args, s.Output)
	return args
}

// QualityArgs maps the quality knob onto each encoder's own setting
func QualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox не везде поддерживает -q:v, используем битрейт
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

type ffmpegStream struct {
	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	log    *bytes.Buffer
	size   image.Rectangle
	closed bool
}

func (s *ffmpegStream) WriteFrame(img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if img.Bounds().Size() != s.size.Size() {
		return fmt.Errorf("frame size %v, stream expects %v", img.Bounds().Size(), s.size.Size())
	}
	if err := WriteRawRGBA(s.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	return nil
}

// Close ends the stream and waits for ffmpeg to finish the file
func (s *ffmpegStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	// Закрытие stdin сообщает ffmpeg о конце потока
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w\nLog: %s", err, s.log.String())
	}
	return nil
}

// WriteRawRGBA writes the tightly packed RGBA pixels of img
func WriteRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	// Копируем, если шаг строки не совпадает с шириной кадра
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}
