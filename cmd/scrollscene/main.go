package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ivlev/scrollscene/internal/analyzer"
	"github.com/ivlev/scrollscene/internal/config"
	"github.com/ivlev/scrollscene/internal/director"
	"github.com/ivlev/scrollscene/internal/effects"
	"github.com/ivlev/scrollscene/internal/engine"
	"github.com/ivlev/scrollscene/internal/renderer"
	"github.com/ivlev/scrollscene/internal/scene"
	"github.com/ivlev/scrollscene/internal/source"
	"github.com/ivlev/scrollscene/internal/system"
	"github.com/ivlev/scrollscene/internal/video"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const qrSize = 160

func main() {
	if err := system.EnsureDirs("input", "output", director.ScenariosDir); err != nil {
		log.Fatalf("[-] Ошибка создания директорий: %v", err)
	}

	modePtr := flag.String("mode", config.ModePreview, "Режим: preview (терминал), export (видео), scenario (сохранить сценарий по умолчанию)")
	scenarioPtr := flag.String("scenario", "", "Путь к YAML сценарию (по умолчанию: самый свежий в scenarios/ или встроенный)")
	presetPtr := flag.String("preset", "", "Пресет света: "+strings.Join(scene.PresetNames(), ", "))
	lightKeysPtr := flag.Bool("light-keys", false, "Добавить ключевые кадры красному свету и прожектору")
	blendPtr := flag.String("blend", "", "Режим смешивания ASCII слоя: "+blendNames())
	viewportPtr := flag.Float64("viewport", 800, "Высота окна просмотра страницы (px, для export; preview берет высоту терминала)")
	documentPtr := flag.Float64("document", 4800, "Полная высота страницы (px)")
	widthPtr := flag.Int("width", 1280, "Ширина видео")
	heightPtr := flag.Int("height", 720, "Высота видео")
	fpsPtr := flag.Int("fps", 30, "FPS")
	durationPtr := flag.Float64("duration", 10, "Длительность прокрутки в видео (сек)")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Потоки")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	backdropPtr := flag.String("backdrop", "", "PDF, изображение или папка для фона панели (по умолчанию: самый свежий файл в input/, none - сетка)")
	pagePtr := flag.Int("page", 0, "Страница PDF для фона")
	dpiPtr := flag.Int("dpi", 150, "DPI")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	edgesPtr := flag.Bool("edges", false, "Символы контуров | / - \\ поверх ASCII")
	sitePtr := flag.String("site-url", "", "URL для QR-кода в конце прокрутки")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности")
	logPtr := flag.String("log", "scrollscene.log", "Лог для режима preview")

	flag.Parse()

	cfg := &config.Config{
		Mode:           *modePtr,
		ScenarioPath:   *scenarioPtr,
		Preset:         *presetPtr,
		ViewportHeight: *viewportPtr,
		DocumentHeight: *documentPtr,
		Width:          *widthPtr,
		Height:         *heightPtr,
		FPS:            *fpsPtr,
		Duration:       *durationPtr,
		Workers:        *workersPtr,
		OutputVideo:    *outputPtr,
		BackdropPath:   *backdropPtr,
		DPI:            *dpiPtr,
		Quality:        *qualityPtr,
		EdgeGlyphs:     *edgesPtr,
		SiteURL:        *sitePtr,
		ShowStats:      *statsPtr,
		BuildVersion:   version,
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}

	if cfg.Mode == config.ModeScenario {
		path := cfg.ScenarioPath
		if path == "" {
			path = director.GenerateScenarioPath()
		}
		if err := director.WriteScenario(director.DefaultScenario(), path); err != nil {
			log.Fatalf("[-] Ошибка записи сценария: %v", err)
		}
		fmt.Printf("[+++] Успех! Сценарий: %s\n", path)
		return
	}

	sc, err := loadScenario(cfg)
	if err != nil {
		log.Fatalf("[-] Ошибка сценария: %v", err)
	}

	st := scene.NewState()
	if err := sc.Apply(st); err != nil {
		log.Fatalf("[-] Ошибка сценария: %v", err)
	}
	if cfg.Preset != "" {
		if err := scene.ApplyPreset(st, cfg.Preset); err != nil {
			log.Fatalf("[-] Ошибка: %v", err)
		}
	}
	if *lightKeysPtr {
		if err := scene.AttachAnimationExample(st); err != nil {
			log.Fatalf("[-] Ошибка: %v", err)
		}
	}
	if *blendPtr != "" {
		blend, err := scene.ParseBlend(*blendPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка: %v", err)
		}
		st.UpdateASCII(func(p *scene.ASCIIParams) { p.Blend = blend })
	}
	for _, l := range st.Lights() {
		if l.IsAnimated() {
			fmt.Printf("[*] Анимированный свет %s: %s\n", l.ID, l.Channels())
		}
	}

	det := analyzer.Detector(nil)
	if cfg.EdgeGlyphs {
		if det, err = analyzer.NewDetector("sobel"); err != nil {
			log.Fatalf("[-] Ошибка: %v", err)
		}
	}
	eff, err := effects.NewASCIIEffect(det)
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации эффекта: %v", err)
	}

	src := openBackdrop(cfg.BackdropPath)
	if src != nil {
		defer src.Close()
	}
	backdrops := source.NewCache(src, *pagePtr, cfg.DPI)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Mode {
	case config.ModeExport:
		runExport(ctx, cfg, st, sc, eff, backdrops)
	case config.ModePreview:
		runPreview(ctx, cfg, st, sc, eff, backdrops, *logPtr)
	}
}

func blendNames() string {
	names := make([]string, len(scene.BlendOptions))
	for i, o := range scene.BlendOptions {
		names[i] = string(o.Value)
	}
	return strings.Join(names, ", ")
}

// loadScenario picks the explicit file, then the newest saved one, then the
// built-in defaults
func loadScenario(cfg *config.Config) (*director.Scenario, error) {
	path := cfg.ScenarioPath
	if path == "" {
		latest, err := director.FindLatestScenario(director.ScenariosDir)
		if err != nil {
			fmt.Println("[*] Сценарий не найден, используется встроенный")
			return director.DefaultScenario(), nil
		}
		path = latest
		cfg.ScenarioPath = path
	}
	fmt.Printf("[*] Сценарий: %s\n", path)
	return director.ReadScenario(path)
}

func openBackdrop(path string) source.Source {
	if path == "none" {
		return nil
	}
	if path == "" {
		latest, err := system.FindLatestFile("input", system.BackdropExtensions...)
		if err != nil {
			return nil
		}
		path = latest
	}

	src, err := source.Open(path)
	if err != nil {
		log.Printf("[!] Фон %s недоступен: %v", path, err)
		return nil
	}
	fmt.Printf("[*] Фон: %s\n", path)
	return src
}

func runExport(ctx context.Context, cfg *config.Config, st *scene.State, sc *director.Scenario, eff effects.Effect, backdrops *source.Cache) {
	if cfg.OutputVideo == "" {
		name := "scrollscene"
		if cfg.ScenarioPath != "" {
			base := filepath.Base(cfg.ScenarioPath)
			name = strings.ReplaceAll(strings.TrimSuffix(base, filepath.Ext(base)), " ", "_")
		}
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		cfg.OutputVideo = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", name, timestamp))
	}

	cfg.VideoEncoder = system.GetBestH264Encoder()
	if cfg.VideoEncoder != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", cfg.VideoEncoder)
	}
	if cfg.Quality == 0 {
		cfg.Quality = system.DefaultQuality(cfg.VideoEncoder)
	}

	r := renderer.New(cfg.Width, cfg.Height)
	bd, err := backdrops.Get(cfg.Width, cfg.Height)
	if err != nil {
		log.Printf("[!] Не удалось загрузить фон: %v", err)
	}
	r.Backdrop = bd

	project := engine.NewExportProject(cfg, st, sc, r, eff, &video.FFmpegEncoder{})
	if cfg.SiteURL != "" {
		qr, err := effects.NewQROverlay(cfg.SiteURL, qrSize)
		if err != nil {
			log.Fatalf("[-] Ошибка QR-кода: %v", err)
		}
		project.QR = qr
	}

	if err := project.Run(ctx); err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}
	fmt.Printf("[+++] Успех! Результат: %s\n", cfg.OutputVideo)
}

func runPreview(ctx context.Context, cfg *config.Config, st *scene.State, sc *director.Scenario, eff *effects.ASCIIEffect, backdrops *source.Cache, logPath string) {
	// The screen owns stdout; log lines go to a file instead
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("[-] Ошибка открытия лога: %v", err)
	}
	defer logFile.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("[-] Ошибка терминала: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("[-] Ошибка терминала: %v", err)
	}
	screen.EnableMouse()
	screen.HideCursor()
	log.SetOutput(logFile)

	err = engine.NewPreview(cfg, st, sc, eff, renderer.NewTerminal(screen), backdrops).Run(ctx)
	screen.Fini()
	log.SetOutput(os.Stderr)
	if err != nil {
		log.Fatalf("[-] Ошибка просмотра: %v", err)
	}
}
