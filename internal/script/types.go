// Package script defines the editing plan produced by the planner and
// consumed by the compositor, plus lenient parsing for collaborator
// output.
package script

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Script is a complete editing plan over one or more source videos.
// Times are float seconds to match the planner's JSON contract.
type Script struct {
	TotalDuration      float64 `json:"total_duration"`
	Scenes             []Scene `json:"scenes"`
	Music              Music   `json:"music"`
	Pacing             string  `json:"pacing"`
	NarrativeStructure string  `json:"narrative_structure"`
	VisualStyle        string  `json:"visual_style"`
}

// Scene is one cut from a source video placed on the output timeline.
type Scene struct {
	SceneID       int       `json:"scene_id"`
	SourceVideo   SourceRef `json:"source_video"`
	StartTime     float64   `json:"start_time"`
	EndTime       float64   `json:"end_time"`
	Duration      float64   `json:"duration"`
	Description   string    `json:"description"`
	TransitionIn  string    `json:"transition_in"`
	TransitionOut string    `json:"transition_out"`
}

// Music describes the background track request.
type Music struct {
	Mood       string    `json:"mood"`
	BPM        int       `json:"bpm"`
	Volume     float64   `json:"volume"`
	SyncPoints []float64 `json:"sync_points"`
}

// SourceRef identifies a source video either by zero-based index into
// the input list or by path. Planners emit both forms.
type SourceRef struct {
	Index   int
	Path    string
	ByIndex bool
}

// UnmarshalJSON accepts an integer index, a numeric string, or a path.
func (r *SourceRef) UnmarshalJSON(data []byte) error {
	var idx int
	if err := json.Unmarshal(data, &idx); err == nil {
		r.Index = idx
		r.ByIndex = true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("source_video must be an index or a path: %s", string(data))
	}
	if idx, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		r.Index = idx
		r.ByIndex = true
		return nil
	}
	r.Path = s
	return nil
}

// MarshalJSON writes back the form the reference was parsed from.
func (r SourceRef) MarshalJSON() ([]byte, error) {
	if r.ByIndex {
		return json.Marshal(r.Index)
	}
	return json.Marshal(r.Path)
}

func (r SourceRef) String() string {
	if r.ByIndex {
		return strconv.Itoa(r.Index)
	}
	return r.Path
}
