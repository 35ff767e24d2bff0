package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/kuroonai/submaker/internal/ui"
	"github.com/kuroonai/submaker/internal/watcher"
	"github.com/kuroonai/submaker/pkg/asr"
	"github.com/kuroonai/submaker/pkg/models"
	"github.com/kuroonai/submaker/pkg/scanner"
	"github.com/kuroonai/submaker/pkg/subtitle"
	"github.com/kuroonai/submaker/pkg/translate"
	"github.com/kuroonai/submaker/pkg/utils"
)

var (
	outputDir   = flag.String("output", "", "output directory for subtitle files")
	tempDir     = flag.String("temp", "", "directory for temporary audio segments")
	configFile  = flag.String("config", "", "path to a JSON config file")
	logLevel    = flag.String("log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")
	logFile     = flag.String("log-file", "", "log file path")
	asrService  = flag.String("asr", "", "speech service name, or auto")
	translateTo = flag.String("translate-to", "", "translation target language (default: base of the language code)")
	batchMode   = flag.Bool("batch", false, "treat the first argument as a directory and subtitle every media file in it")
	watchMode   = flag.Bool("watch", false, "keep watching the directory for new media files")
	noProgress  = flag.Bool("no-progress", false, "disable progress bars")
	keepTemp    = flag.Bool("keep-temp", false, "keep intermediate WAV/FLAC files")
	useCache    = flag.Bool("cache", false, "reuse recognition results across runs")
	exportJSON  = flag.Bool("export-json", false, "also write a JSON transcript")
	exportTXT   = flag.Bool("export-txt", false, "also write a plain text transcript")
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() != 3 {
		printUsage()
		os.Exit(2)
	}

	target := flag.Arg(0)
	langCode := flag.Arg(1)

	segmentLength, err := strconv.Atoi(flag.Arg(2))
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: segment length must be a number of seconds")
		os.Exit(2)
	}

	if err := utils.InitLogger(*logLevel, *logFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	printWelcome()

	config := loadConfig(langCode, segmentLength)

	if !models.IsKnownLanguage(config.Language) {
		color.Yellow("warning: %s is not in the known language table, passing it through as-is", config.Language)
	}

	if !checkDependencies() {
		utils.Fatal("ffmpeg is required but was not found in PATH")
	}

	showProgress := config.ShowProgress && !*noProgress
	progressManager := ui.NewProgressManager(showProgress)
	if showProgress {
		utils.EnableTerminalProgress()
	}

	cacheDir := filepath.Join(config.OutputFolder, ".cache")

	selector := asr.NewSelector()
	selector.RegisterService("google", func(audioPath string, useCache bool) (asr.Service, error) {
		return asr.NewGoogleASR(audioPath, config.Language, useCache, cacheDir)
	}, 10)

	maker := subtitle.NewMaker(config, selector, translate.NewGoogleTranslator(), progressManager)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var exitCode int
	switch {
	case *watchMode:
		exitCode = runWatch(ctx, maker, target)
	case *batchMode:
		exitCode = runBatch(ctx, maker, target)
	default:
		exitCode = runSingle(ctx, maker, target)
	}

	progressManager.CloseAll("done")
	utils.DisableTerminalProgress()
	os.Exit(exitCode)
}

func runSingle(ctx context.Context, maker *subtitle.Maker, mediaPath string) int {
	startTime := time.Now()

	result, err := maker.Process(ctx, mediaPath)
	if err != nil {
		if ctx.Err() != nil {
			color.Yellow("\ncancelled")
			return 1
		}
		utils.Error("processing failed: %v", err)
		color.Red("\nfailed: %v", err)
		return 1
	}

	printResult(result)
	fmt.Printf("total time: %s\n", utils.FormatTimeDuration(time.Since(startTime).Seconds()))
	return 0
}

func runBatch(ctx context.Context, maker *subtitle.Maker, mediaDir string) int {
	batch := subtitle.NewBatchProcessor(mediaDir, maker, func(current, total int, filename string, result *subtitle.BatchResult) {
		if result == nil {
			fmt.Printf("\n[%d/%d] processing: %s\n", current, total, filename)
		}
	})

	results, err := batch.ProcessAll(ctx)
	if err != nil {
		utils.Error("batch processing failed: %v", err)
		color.Red("\nfailed: %v", err)
		return 1
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
			printResult(r.Result)
		}
	}

	fmt.Printf("\n%d/%d files processed successfully\n", succeeded, len(results))
	if succeeded < len(results) {
		return 1
	}
	return 0
}

func runWatch(ctx context.Context, maker *subtitle.Maker, mediaDir string) int {
	batch := subtitle.NewBatchProcessor(mediaDir, maker, nil)

	mediaScanner := scanner.NewMediaScanner()
	extensions := append(append([]string{}, mediaScanner.AudioExtensions...), mediaScanner.VideoExtensions...)

	handler := &watchHandler{ctx: ctx, batch: batch}

	monitor, err := watcher.NewFolderMonitor(mediaDir, extensions, handler,
		time.Duration(maker.Config.WatchDebounceMs)*time.Millisecond)
	if err != nil {
		utils.Error("starting watch mode: %v", err)
		return 1
	}

	if err := monitor.Start(); err != nil {
		utils.Error("starting watch mode: %v", err)
		return 1
	}
	defer monitor.Stop()

	// pick up whatever is already there before waiting for events
	if _, err := batch.ProcessAll(ctx); err != nil {
		utils.Warn("initial scan failed: %v", err)
	}

	color.Cyan("watching %s, press Ctrl+C to stop", mediaDir)
	<-ctx.Done()
	color.Yellow("\nstopping watch mode")
	return 0
}

type watchHandler struct {
	ctx   context.Context
	batch *subtitle.BatchProcessor
}

func (h *watchHandler) OnMediaFile(filePath string) {
	if h.batch.IsRecognizedFile(filePath) {
		utils.Debug("already processed, skipping: %s", filePath)
		return
	}

	result := h.batch.ProcessSingleFile(h.ctx, filePath)
	if result.Success {
		printResult(result.Result)
	}
}

func printWelcome() {
	fmt.Println()
	color.Cyan("==============================")
	color.Cyan("   submaker - audio to SRT    ")
	color.Cyan("==============================")
	fmt.Println()
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: submaker [flags] <audio_file> <language_code> <segment_length>")
	fmt.Fprintln(os.Stderr, "       submaker -batch [flags] <media_dir> <language_code> <segment_length>")
	fmt.Fprintln(os.Stderr, "       submaker -watch [flags] <media_dir> <language_code> <segment_length>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "example: submaker recording.mp3 en-US 10")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "flags:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "known language codes:")

	names := make([]string, 0, len(models.LanguageMap))
	for name := range models.LanguageMap {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-6s %s\n", models.LanguageMap[name], name)
	}
}

func printResult(result *models.Result) {
	color.Green("\n%s: %d subtitle entries (%d windows skipped)",
		filepath.Base(result.FilePath), result.SegmentCount, result.SkippedCount)
	for kind, path := range result.OutputFiles {
		fmt.Printf("  %s: %s\n", kind, path)
	}
}

func checkDependencies() bool {
	fmt.Print("checking dependencies... ")

	if !utils.CheckFFmpeg() || !utils.CheckFFprobe() {
		color.Red("missing")
		utils.Error("ffmpeg/ffprobe not found, install from https://ffmpeg.org/download.html and add to PATH")
		return false
	}

	color.Green("ok")
	return true
}

func loadConfig(langCode string, segmentLength int) *models.Config {
	config := models.NewDefaultConfig()

	if *configFile != "" {
		if err := config.LoadFromFile(*configFile); err != nil {
			color.Yellow("warning: loading config failed: %v, using defaults", err)
			utils.Warn("loading config: %v", err)
			config = models.NewDefaultConfig()
		}
	}

	// positional arguments and flags override the file
	config.Language = langCode
	config.SegmentLength = segmentLength

	if *outputDir != "" {
		config.OutputFolder = *outputDir
	}
	if *tempDir != "" {
		config.TempDir = *tempDir
	}
	if *asrService != "" {
		config.ASRService = *asrService
	}
	if *translateTo != "" {
		config.TranslateTo = *translateTo
	}
	if *keepTemp {
		config.KeepTemp = true
	}
	if *useCache {
		config.UseCache = true
	}
	if *exportJSON {
		config.ExportJSON = true
	}
	if *exportTXT {
		config.ExportTXT = true
	}
	config.LogLevel = *logLevel
	config.LogFile = *logFile

	if err := config.Validate(); err != nil {
		utils.Fatal("invalid configuration: %v", err)
	}

	return config
}
