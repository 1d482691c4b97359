package acquire

import (
	"briefly/internal/apperr"
	"briefly/internal/domain"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type YouTubeOptions struct {
	YTDLPPath     string
	WhisperPath   string
	WhisperDevice string
	// TempDir is the parent of the per-request audio directory. Empty means
	// the system default.
	TempDir string
}

// YouTube downloads the audio track with yt-dlp and transcribes it with the
// whisper CLI. Each call works in its own temporary directory which is
// always removed.
type YouTube struct {
	runner Runner
	opts   YouTubeOptions
	log    *slog.Logger
}

func NewYouTube(runner Runner, opts YouTubeOptions, log *slog.Logger) *YouTube {
	if opts.YTDLPPath == "" {
		opts.YTDLPPath = "yt-dlp"
	}
	if opts.WhisperPath == "" {
		opts.WhisperPath = "whisper"
	}
	if opts.WhisperDevice == "" {
		opts.WhisperDevice = whisperDeviceAuto
	}

	return &YouTube{
		runner: runner,
		opts:   opts,
		log:    log,
	}
}

func (y *YouTube) Acquire(
	ctx context.Context,
	u domain.ClassifiedURL,
	opts Options,
) (domain.ExtractedContent, error) {
	model := opts.TranscriptionModel
	if model == "" {
		model = domain.TranscriptionModelBase
	}

	dir, err := os.MkdirTemp(y.opts.TempDir, "briefly-audio-*")
	if err != nil {
		return nil, apperr.YouTube("Failed to prepare audio workspace", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			y.log.ErrorContext(ctx, "Failed to remove audio workspace",
				"error", err,
				"dir", dir)
		}
	}()

	audioPath, err := y.download(ctx, dir, u.Raw)
	if err != nil {
		return nil, apperr.YouTube(
			fmt.Sprintf("Failed to download audio from YouTube: %s", err), err)
	}

	transcript, err := y.transcribe(ctx, dir, audioPath, model)
	if err != nil {
		return nil, apperr.Transcription(
			fmt.Sprintf("Failed to transcribe audio: %s", err), err)
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, apperr.Transcription("Transcription resulted in empty text", nil)
	}

	y.log.InfoContext(ctx, "Transcribed YouTube audio",
		"url", u.Raw,
		"model", model,
		"transcriptLength", len(transcript))

	return domain.ExtractedContent{{Text: transcript, Source: u.Raw}}, nil
}

func (y *YouTube) download(ctx context.Context, dir, rawURL string) (string, error) {
	_, err := y.runner.Run(ctx, y.opts.YTDLPPath,
		"-f", "bestaudio[ext=m4a]/bestaudio/best",
		"--no-playlist",
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", "192K",
		"-o", filepath.Join(dir, audioOutputPattern),
		rawURL,
	)
	if err != nil {
		return "", fmt.Errorf("download audio: %w", err)
	}

	audioPath := filepath.Join(dir, audioFileName)
	if _, err = os.Stat(audioPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errors.New("audio file was not downloaded")
		}
		return "", fmt.Errorf("stat audio file: %w", err)
	}

	return audioPath, nil
}

func (y *YouTube) transcribe(
	ctx context.Context,
	dir string,
	audioPath string,
	model domain.TranscriptionModel,
) (string, error) {
	args := []string{
		"--model", string(model),
		"--output_format", "txt",
		"--output_dir", dir,
	}
	if y.opts.WhisperDevice != whisperDeviceAuto {
		args = append(args, "--device", y.opts.WhisperDevice)
	}
	args = append(args, audioPath)

	if _, err := y.runner.Run(ctx, y.opts.WhisperPath, args...); err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, transcriptFileName))
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}

	return string(raw), nil
}
