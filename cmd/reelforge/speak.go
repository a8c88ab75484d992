package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reelforge/reelforge/internal/audio"
	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/elevenlabs"
	"github.com/reelforge/reelforge/internal/logging"
)

func newSpeakCmd() *cobra.Command {
	var (
		file   string
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "speak [text]",
		Short: "Synthesize a speech track from text or a subtitle file",
		Long: `speak converts narration text to speech. Input is either inline text
or a subtitle file (SRT, VTT, or a script JSON with scene dialogue);
subtitle timing and speaker labels are stripped before synthesis.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())

			var content string
			switch {
			case file != "":
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				content = string(data)
			case len(args) == 1:
				content = args[0]
			default:
				return fmt.Errorf("provide narration text or --file")
			}

			logger := logging.NewLogger()
			client, err := elevenlabs.NewClient(cfg.ElevenLabs, logger)
			if err != nil {
				return err
			}

			narrator := audio.NewNarrator(client, logger)
			if err := narrator.Narrate(cmd.Context(), content, strings.ToLower(format), output); err != nil {
				return err
			}

			fmt.Printf("wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "subtitle or text file to narrate")
	cmd.Flags().StringVar(&format, "format", "auto", "input format: auto, text, srt, vtt or json")
	cmd.Flags().StringVarP(&output, "output", "o", "speech.mp3", "output path")
	return cmd
}
