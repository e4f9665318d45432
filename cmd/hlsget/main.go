package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hlsget/internal/config"
	"hlsget/internal/logger"
	"hlsget/internal/media"
	"hlsget/internal/pipeline"
	"hlsget/internal/reference"
)

var (
	outputName      string
	outputDir       string
	curlMode        bool
	verbose         bool
	transcript      bool
	transcriptModel string
	configFile      string
	cacheFile       string
)

func runE(cmd *cobra.Command, args []string) error {
	input := args[0]

	level := "info"
	if verbose {
		level = "debug"
	}
	log := logger.NewStderr(level)

	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if transcript {
		if err := media.ValidateModel(transcriptModel); err != nil {
			return err
		}
	}

	playlistURL := input
	var headers map[string]string
	if curlMode {
		capturedURL, capturedHeaders := reference.ParseCapture(input)
		if capturedURL == "" {
			return fmt.Errorf("could not extract URL from curl command")
		}
		// A captured request usually names a single segment; derive the
		// playlist URL from it.
		playlistURL = reference.PlaylistURLFromSegment(capturedURL)
		headers = capturedHeaders
		log.Infof("Using playlist URL: %s", playlistURL)
	}

	if outputName == "" {
		outputName = promptOutputName()
	}

	p := pipeline.New(cfg, log,
		&media.FFmpegAssembler{Path: cfg.FFmpegPath, Timeout: cfg.AssemblyTimeout, Logger: log},
		&media.WhisperTranscriber{Path: cfg.WhisperPath, Logger: log},
	)

	out, err := p.DownloadVideo(context.Background(), pipeline.Request{
		PlaylistURL: playlistURL,
		Headers:     headers,
		OutputName:  outputName,
		OutputDir:   outputDir,
		CachePath:   cacheFile,
		Transcript:  transcript,
		Model:       transcriptModel,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Video saved as %s\n", out.Filename)
	return nil
}

func promptOutputName() string {
	fmt.Print("Enter a name for the output video file (without extension): ")
	reader := bufio.NewReader(os.Stdin)
	name, err := reader.ReadString('\n')
	if err != nil {
		return "video"
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "video"
	}
	return name
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "hlsget [url or curl command]",
		Short:        "Download an HLS video by fetching and combining its segments",
		Args:         cobra.ExactArgs(1),
		RunE:         runE,
		SilenceUsage: true,
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&outputName, "output-name", "o", "", "Name for the output video file (can include extension)")
	flags.StringVarP(&outputDir, "output-dir", "d", "downloads", "Directory where videos will be saved")
	flags.BoolVarP(&curlMode, "curl", "c", false, "Input is a captured curl command")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.BoolVarP(&transcript, "transcript", "t", false, "Generate a transcript for the video")
	flags.StringVar(&transcriptModel, "transcript-model", "medium", "Whisper model size (tiny, base, small, medium, large)")
	flags.StringVar(&configFile, "config", "", "Path to a JSON settings file")
	flags.StringVar(&cacheFile, "cache", "", "Path to cache the resolved segment list")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
