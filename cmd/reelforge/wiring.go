package main

import (
	"errors"

	"github.com/reelforge/reelforge/internal/audio"
	"github.com/reelforge/reelforge/internal/compose"
	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/elevenlabs"
	"github.com/reelforge/reelforge/internal/frame"
	"github.com/reelforge/reelforge/internal/gemini"
	"github.com/reelforge/reelforge/internal/logging"
	"github.com/reelforge/reelforge/internal/media"
	"github.com/reelforge/reelforge/internal/pipeline"
	"github.com/reelforge/reelforge/internal/script"
	"github.com/reelforge/reelforge/internal/summarize"
	"github.com/reelforge/reelforge/internal/thumbnail"
)

func buildExecutor(cfg *config.Config) (*media.Executor, error) {
	return media.New(logging.NewLogger(), cfg.FFmpeg.Threads, cfg.FFmpeg.Preset, cfg.FFmpeg.CRF)
}

// buildOrchestrator wires every pipeline stage. Collaborator clients
// whose credentials are absent are left nil; the stages that depend on
// them degrade instead of failing the whole run.
func buildOrchestrator(cfg *config.Config) (*pipeline.Orchestrator, error) {
	logger := logging.NewLogger()

	exec, err := buildExecutor(cfg)
	if err != nil {
		return nil, err
	}

	gem, err := gemini.NewClient(cfg.Gemini, logger)
	if err != nil {
		if !errors.Is(err, gemini.ErrCredentialMissing) {
			return nil, err
		}
		logger.Warn().Msg("GOOGLE_API_KEY not set, analysis and thumbnails degraded")
		gem = nil
	}

	el, err := elevenlabs.NewClient(cfg.ElevenLabs, logger)
	if err != nil {
		if !errors.Is(err, elevenlabs.ErrCredentialMissing) {
			return nil, err
		}
		logger.Warn().Msg("ELEVENLABS_API_KEY not set, music synthesis disabled")
		el = nil
	}

	// Interfaces must stay nil when the concrete client is nil; a typed
	// nil pointer would pass the stage's nil checks.
	var (
		vision summarize.VisionClient
		text   script.TextClient
		ranker frame.VisionClient
		imager thumbnail.ImageClient
		sound  audio.SoundClient
	)
	if gem != nil {
		vision = gem
		text = gem
		ranker = gem
		imager = gem
	}
	if el != nil {
		sound = el
	}

	summarizer := summarize.New(exec, vision, cfg.Gemini.AnalysisFPS, logger)
	planner := script.NewPlanner(text, cfg.Compose.DurationTolerance, logger)
	selector := frame.NewSelector(exec, ranker, logger)
	compositor := compose.NewCompositor(exec, cfg.Compose, logger)

	var synthesizer pipeline.AudioSynthesizer
	if sound != nil {
		synthesizer = audio.NewSynthesizer(sound, 0, logger)
	}
	var composer pipeline.ThumbnailComposer
	if imager != nil {
		composer = thumbnail.NewComposer(imager, logger)
	}

	return pipeline.New(cfg, summarizer, planner, synthesizer, selector, composer, compositor, logger), nil
}
