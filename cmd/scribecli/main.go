package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/amit15110003/asha-health-project/pkg/logger"
	"github.com/amit15110003/asha-health-project/pkg/scribeclient"
	"github.com/amit15110003/asha-health-project/services/scribe/entity"
	"github.com/amit15110003/asha-health-project/services/scribe/recording"
	"github.com/amit15110003/asha-health-project/services/scribe/session"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "scribe gateway base URL")
	filePath := flag.String("file", "", "upload an existing audio file instead of recording")
	genNote := flag.Bool("note", false, "generate a SOAP note from the transcript")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := logger.New(logger.Config{
		Level:      level,
		Output:     os.Stderr,
		AddSource:  false,
		JSONFormat: false,
	})

	if err := run(context.Background(), *serverURL, *filePath, *genNote, log); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, serverURL, filePath string, genNote bool, log *slog.Logger) error {
	client := scribeclient.New(serverURL, log)

	playback, err := session.NewTempFilePlayback(log)
	if err != nil {
		return err
	}
	defer playback.Close()

	recorder := recording.NewRecorder(recording.NewMicDeviceFactory(), log)
	ctrl := session.NewController(recorder, client, playback, log)

	if filePath != "" {
		if err := uploadFile(ctx, ctrl, filePath); err != nil {
			return err
		}
	} else {
		if err := record(ctx, ctrl); err != nil {
			return err
		}
	}

	state, err := awaitResult(ctx, ctrl)
	if err != nil {
		return err
	}

	printResult(state.Result)

	if genNote {
		return printNote(ctx, client, state.Result)
	}
	return nil
}

func uploadFile(ctx context.Context, ctrl *session.Controller, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read audio file: %w", err)
	}
	return ctrl.Upload(ctx, filepath.Base(path), "", data)
}

func record(ctx context.Context, ctrl *session.Controller) error {
	if err := ctrl.StartRecording(ctx); err != nil {
		return err
	}
	fmt.Println("recording... press Enter to stop")
	bufio.NewReader(os.Stdin).ReadString('\n')
	ctrl.StopRecording(ctx)
	return nil
}

func awaitResult(ctx context.Context, ctrl *session.Controller) (session.State, error) {
	fmt.Println("transcribing...")
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return session.State{}, ctx.Err()
		case <-ticker.C:
		}
		state := ctrl.Snapshot()
		switch state.Phase {
		case session.PhaseReady:
			return state, nil
		case session.PhaseErrored:
			return session.State{}, fmt.Errorf("transcription failed: %s", state.ErrorMessage)
		}
	}
}

func printResult(result *entity.TranscriptionResult) {
	fmt.Printf("\ntranscript (%d speakers, %.1fs):\n\n",
		result.SpeakerCount, result.Metadata.Duration)
	for _, seg := range result.SpeakerSegments {
		label := "Unknown"
		if seg.Speaker != nil {
			label = fmt.Sprintf("Speaker %d", *seg.Speaker)
		}
		fmt.Printf("[%6.1fs] %s: %s\n", seg.Start, label, seg.Text)
	}
}

func printNote(ctx context.Context, client *scribeclient.Client, result *entity.TranscriptionResult) error {
	transcript := flattenTranscript(result)
	resp, err := client.GenerateNote(ctx, transcript)
	if err != nil {
		return err
	}
	note := resp.Note

	fmt.Println("\nSOAP note:")
	if note.PatientInfo != nil && note.PatientInfo.Name != "" {
		fmt.Println("patient:", note.PatientInfo.Name)
	}
	if note.Note != nil {
		fmt.Println("S:", note.Note.Subjective)
		fmt.Println("O:", note.Note.Objective)
		fmt.Println("A:", note.Note.Assessment)
		fmt.Println("P:", note.Note.Plan)
	}
	return nil
}

func flattenTranscript(result *entity.TranscriptionResult) string {
	var b strings.Builder
	for _, seg := range result.SpeakerSegments {
		if seg.Speaker != nil {
			fmt.Fprintf(&b, "Speaker %d: %s\n", *seg.Speaker, seg.Text)
		} else {
			fmt.Fprintf(&b, "%s\n", seg.Text)
		}
	}
	if b.Len() == 0 {
		return result.Transcript
	}
	return b.String()
}
