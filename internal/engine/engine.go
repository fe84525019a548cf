package engine

import (
	"context"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/scrollscene/internal/config"
	"github.com/ivlev/scrollscene/internal/director"
	"github.com/ivlev/scrollscene/internal/effects"
	"github.com/ivlev/scrollscene/internal/renderer"
	"github.com/ivlev/scrollscene/internal/scene"
	"github.com/ivlev/scrollscene/internal/scroll"
	"github.com/ivlev/scrollscene/internal/system"
	"github.com/ivlev/scrollscene/internal/video"
)

// ExportProject renders a scripted scroll from the top of the page to the
// bottom and streams the frames to a video encoder.
type ExportProject struct {
	Config   *config.Config
	State    *scene.State
	Scenario *director.Scenario
	Renderer *renderer.Renderer
	Effect   effects.Effect
	Encoder  video.VideoEncoder

	// QR необязателен; проявляется в конце фазы камеры
	QR *effects.QROverlay

	// BenchmarkLog получает одну строку за запуск при ShowStats
	BenchmarkLog string
}

func NewExportProject(cfg *config.Config, st *scene.State, sc *director.Scenario, r *renderer.Renderer, eff effects.Effect, ve video.VideoEncoder) *ExportProject {
	return &ExportProject{
		Config:       cfg,
		State:        st,
		Scenario:     sc,
		Renderer:     r,
		Effect:       eff,
		Encoder:      ve,
		BenchmarkLog: "benchmark.log",
	}
}

// frameJob is everything a worker needs to render one frame without
// touching the shared state.
type frameJob struct {
	index  int
	snap   scene.Snapshot
	camera float64
	t      float64
}

// SweepOffset is the scroll offset of frame i when n frames cover the page
func SweepOffset(i, n int, scrollable float64) float64 {
	if n <= 1 || scrollable <= 0 {
		return 0
	}
	return scrollable * float64(i) / float64(n-1)
}

// Run drives the animation loop one frame at a time. Snapshots are taken
// in order on this goroutine; rendering runs in parallel batches and the
// encoder receives frames in order.
func (p *ExportProject) Run(ctx context.Context) error {
	startTime := time.Now()
	cfg := p.Config

	frames := cfg.FrameCount()
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	// Пачка больше числа потоков, чтобы воркеры не простаивали
	batchSize := workers * 2

	provider := &scroll.Fixed{}
	sched := NewManualScheduler()
	loop := NewLoop(
		NewAnimator(p.State, p.Scenario),
		provider,
		StaticEnvironment{Viewport: cfg.ViewportHeight, Scrollable: cfg.ScrollableHeight()},
		sched,
	)
	loop.StartViewports = p.Scenario.Scroll.CameraStartViewports
	loop.Enable()
	defer loop.Cleanup()

	fmt.Println("--- [PROJECT: SCROLL EXPORT] ---")
	fmt.Printf("[*] Кадров: %d | Разрешение: %dx%d @ %d FPS | Потоки: %d\n", frames, cfg.Width, cfg.Height, cfg.FPS, workers)
	fmt.Printf("[*] Страница: viewport %.0f | document %.0f\n", cfg.ViewportHeight, cfg.DocumentHeight)
	fmt.Println("-----------------------------")

	out, err := p.Encoder.Open(ctx, video.Settings{
		Width:   cfg.Width,
		Height:  cfg.Height,
		FPS:     cfg.FPS,
		Encoder: cfg.VideoEncoder,
		Quality: cfg.Quality,
		Output:  cfg.OutputVideo,
	})
	if err != nil {
		return fmt.Errorf("ошибка запуска кодировщика: %w", err)
	}

	var renderTime, encodeTime time.Duration
	for start := 0; start < frames; start += batchSize {
		if err := ctx.Err(); err != nil {
			out.Close()
			return err
		}

		end := start + batchSize
		if end > frames {
			end = frames
		}

		// Снимки состояния берем строго по порядку в этой горутине
		jobs := make([]frameJob, 0, end-start)
		for i := start; i < end; i++ {
			provider.Set(SweepOffset(i, frames, cfg.ScrollableHeight()))
			sched.RunNext()
			_, cam := loop.Progress()
			jobs = append(jobs, frameJob{
				index:  i,
				snap:   p.State.Snapshot(),
				camera: cam,
				t:      config.FrameParams{FPS: cfg.FPS, Index: i}.Time(),
			})
		}

		renderStart := time.Now()
		imgs, err := p.renderBatch(ctx, jobs, workers)
		renderTime += time.Since(renderStart)
		if err != nil {
			out.Close()
			return err
		}

		// Кодировщик получает кадры в порядке показа
		encodeStart := time.Now()
		for i, img := range imgs {
			if err := out.WriteFrame(img); err != nil {
				out.Close()
				return fmt.Errorf("кадр %d: %w", jobs[i].index, err)
			}
			p.Renderer.Pool.Put(img)
		}
		encodeTime += time.Since(encodeStart)

		fmt.Printf("[>] Ready: %d/%d\n", end, frames)
	}

	closeStart := time.Now()
	if err := out.Close(); err != nil {
		return fmt.Errorf("ошибка сборки финального видео: %w", err)
	}
	encodeTime += time.Since(closeStart)

	if cfg.ShowStats {
		p.report(frames, time.Since(startTime), renderTime, encodeTime)
	}
	return nil
}

func (p *ExportProject) renderBatch(ctx context.Context, jobs []frameJob, workers int) ([]*image.RGBA, error) {
	imgs := make([]*image.RGBA, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range jobs {
		job := jobs[i]
		slot := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := p.RenderFrame(job.snap, job.camera, job.t)
			if err != nil {
				return fmt.Errorf("кадр %d: %w", job.index, err)
			}
			imgs[slot] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Возвращаем уже готовые кадры в пул
		for _, img := range imgs {
			if img != nil {
				p.Renderer.Pool.Put(img)
			}
		}
		return nil, err
	}
	return imgs, nil
}

// RenderFrame renders one snapshot with the ASCII effect and overlay
func (p *ExportProject) RenderFrame(snap scene.Snapshot, cameraProgress, t float64) (*image.RGBA, error) {
	img := p.Renderer.Render(snap, t)
	if p.Effect != nil {
		if err := p.Effect.Apply(img, snap.Effect); err != nil {
			p.Renderer.Pool.Put(img)
			return nil, err
		}
	}
	if p.QR != nil {
		p.QR.Draw(img, p.QR.Alpha(cameraProgress))
	}
	return img, nil
}

func (p *ExportProject) report(frames int, total, render, encode time.Duration) {
	usage, err := system.ReadUsage()
	if err != nil {
		log.Printf("[!] Не удалось получить статистику ресурсов: %v", err)
	}

	r := system.Report{
		BuildVersion: p.Config.BuildVersion,
		Frames:       frames,
		Total:        total,
		Render:       render,
		Encode:       encode,
		Usage:        usage,
	}
	fmt.Print(r.String())

	if p.BenchmarkLog == "" {
		return
	}
	input := filepath.Base(p.Config.ScenarioPath)
	if p.Config.ScenarioPath == "" {
		input = "default"
	}
	if err := system.AppendLog(p.BenchmarkLog, r.LogLine(input)); err != nil {
		fmt.Printf("[!] Не удалось записать %s: %v\n", p.BenchmarkLog, err)
	}
}
