package server

import (
	"encoding/json"
	"sort"

	"github.com/ostraka/segstream/errors"
	"github.com/ostraka/segstream/frame"
	"github.com/ostraka/segstream/inference"
	"github.com/ostraka/segstream/model"
	"github.com/ostraka/segstream/render"
	"github.com/ostraka/segstream/vocab"
)

// defaultMode resolves the configured startup mode.
func (s *Server) defaultMode() (model.Mode, error) {
	return model.ParseMode(s.cfg.Model.DefaultMode)
}

func availableModels() []string {
	return model.ModeNames()
}

// handleFrame runs one admitted frame through decode, inference, rendering,
// and encoding, and queues the segmentation reply. Every failure maps to a
// coded error envelope; the frame's admission slot is released either way.
func (s *Session) handleFrame(env *Envelope) {
	defer s.admitter.Done()

	img, err := frame.DecodeBase64(env.Data)
	if err != nil {
		s.server.logger.Debugw("Frame decode failed",
			"session_id", s.id,
			"error", err.Error(),
		)
		s.sendError(string(errors.CodeMalformedFrame), "could not decode frame")
		return
	}

	f := &frame.Frame{Img: img, Timestamp: env.Timestamp}
	cm, meta, err := s.engine.Predict(s.server.ctx, f)
	if err != nil {
		s.server.logger.Warnw("Inference failed",
			"session_id", s.id,
			"mode", s.engine.Mode(),
			"error", err.Error(),
		)
		s.sendError(string(errors.CodeOf(err)), "inference failed")
		return
	}
	metricInferenceDuration.Observe(meta.InferenceTimeMS / 1000)

	rendered, err := s.renderer.Render(img, cm, render.Settings{
		Mode:    s.vizMode,
		Opacity: s.opacity,
		Filter:  s.filter,
	})
	if err != nil {
		s.sendError(string(errors.CodeInferenceFailed), "rendering failed")
		return
	}

	rendered = frame.ResizeToFit(rendered, s.server.cfg.Reply.MaxWidth, s.server.cfg.Reply.MaxHeight)
	data, err := frame.EncodeBase64(rendered, s.server.cfg.Reply.JPEGQuality)
	if err != nil {
		s.sendError(string(errors.CodeEncodeFailed), "could not encode reply")
		return
	}

	s.frames.Add(1)
	metricFramesProcessed.Inc()

	s.trySend(SegmentationMessage{
		Type:      "segmentation",
		Timestamp: env.Timestamp,
		Data:      data,
		Metadata: SegMetadata{
			InferenceTimeMS: meta.InferenceTimeMS,
			TotalTimeMS:     meta.TotalTimeMS,
			ModelMode:       meta.ModelMode,
			FPS:             meta.FPS,
			AvgInferenceMS:  meta.AvgInferenceMS,
			DetectedClasses: s.detectedLabels(cm),
		},
	})
}

// detectedLabels maps present class ids to their vocabulary labels. Ids past
// the label table are skipped rather than invented.
func (s *Session) detectedLabels(cm *frame.ClassMap) []string {
	labels := s.engine.Mode().Labels()
	ids := inference.DetectedClasses(cm)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id < len(labels) {
			out = append(out, labels[id])
		}
	}
	return out
}

// handleChangeMode switches the session's model. The switch is confirmed
// only once the target model is loaded and warm; any failure along the way
// reports an error, rolls back to the previous mode, and leaves the session
// serving. A change to the current mode still gets a mode_changed reply.
func (s *Session) handleChangeMode(env *Envelope) {
	mode, err := model.ParseMode(env.ModelMode)
	if err != nil {
		s.sendError(string(errors.CodeModeChangeFailed), "unknown model mode: "+env.ModelMode)
		return
	}

	prev := s.engine.Mode()
	if err := s.engine.SetMode(s.server.ctx, mode); err != nil {
		s.server.logger.Errorw("Mode change failed",
			"session_id", s.id,
			"requested_mode", mode,
			"error", err.Error(),
		)
		code := errors.CodeModeChangeFailed
		if errors.IsOutOfMemory(err) {
			code = errors.CodeOutOfMemory
		}
		s.sendError(string(code), "could not load model for mode "+mode.String())
		return
	}
	if err := s.engine.WarmUp(s.server.ctx, false); err != nil {
		s.server.logger.Errorw("Warm-up after mode change failed",
			"session_id", s.id,
			"mode", mode,
			"error", err.Error(),
		)
		// The previous backend is still cached in the pool, so restoring it
		// cannot trigger a fresh load.
		if rbErr := s.engine.SetMode(s.server.ctx, prev); rbErr != nil {
			s.server.logger.Errorw("Rollback to previous mode failed",
				"session_id", s.id,
				"mode", prev,
				"error", rbErr.Error(),
			)
		}
		s.sendError(string(errors.CodeModeChangeFailed), "could not warm model for mode "+mode.String())
		return
	}

	s.renderer.SwitchVocabulary(mode.Profile().Vocabulary)

	s.server.logger.Infow("Session changed mode",
		"session_id", s.id,
		"mode", mode,
	)
	s.trySend(ModeChangedMessage{
		Type:        "mode_changed",
		ModelMode:   mode.String(),
		ClassLabels: mode.Labels(),
	})
}

// handleUpdateViz applies a partial settings update. Everything is parsed
// and validated before anything is committed, so a rejected update leaves
// the previous settings fully intact.
func (s *Session) handleUpdateViz(env *Envelope) {
	in := env.Settings
	if in == nil {
		in = &VizSettings{}
	}

	mode := s.vizMode
	if in.VisualizationMode != nil {
		m, err := render.ParseVizMode(*in.VisualizationMode)
		if err != nil {
			s.sendError(string(errors.CodeVizUpdateFailed), "unknown visualization mode: "+*in.VisualizationMode)
			return
		}
		mode = m
	}

	opacity := s.opacity
	if in.OverlayOpacity != nil {
		opacity = *in.OverlayOpacity
		if opacity < 0 {
			opacity = 0
		}
		if opacity > 1 {
			opacity = 1
		}
	}

	filter := s.filter
	if len(in.ClassFilter) > 0 {
		f, err := s.parseClassFilter(in.ClassFilter)
		if err != nil {
			s.sendError(string(errors.CodeVizUpdateFailed), "invalid class filter")
			return
		}
		filter = f
	}

	s.vizMode = mode
	s.opacity = opacity
	s.filter = filter

	s.trySend(VizUpdatedMessage{
		Type: "viz_updated",
		Settings: AppliedVizSettings{
			VisualizationMode: mode.String(),
			OverlayOpacity:    opacity,
			ClassFilter:       filterList(filter),
		},
	})
}

// parseClassFilter interprets the three wire states of class_filter: a JSON
// null clears the filter, a list replaces it. Ids outside the active
// vocabulary are dropped, not rejected.
func (s *Session) parseClassFilter(raw json.RawMessage) (map[int]bool, error) {
	if string(raw) == "null" {
		return nil, nil
	}
	var ids []int
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, err
	}
	n := vocab.NumClasses(s.engine.Mode().Profile().Vocabulary)
	f := make(map[int]bool, len(ids))
	for _, id := range ids {
		if id >= 0 && id < n {
			f[id] = true
		}
	}
	return f, nil
}

// filterList returns the filter as a sorted slice for the wire, nil when
// every class passes.
func filterList(f map[int]bool) []int {
	if f == nil {
		return nil
	}
	ids := make([]int, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// handleGetStats replies with the session's rolling inference statistics and
// admission counters.
func (s *Session) handleGetStats() {
	st := s.engine.Stats()
	s.trySend(StatsMessage{
		Type:           "stats",
		FPS:            st.AvgFPS,
		AvgInferenceMS: st.AvgInferenceMS,
		MinInferenceMS: st.MinInferenceMS,
		MaxInferenceMS: st.MaxInferenceMS,
		FramesInFlight: s.admitter.InFlight(),
		FramesDropped:  s.admitter.Dropped(),
	})
}
