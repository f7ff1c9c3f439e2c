package storage

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// StarColor is the RGB colour given to every exported object.
var StarColor = [3]float64{1, 0.8, 0.2}

// KeyframeTrack is the document consumed by an external renderer: one object
// per particle with a location keyframe for every frame it was alive in.
type KeyframeTrack struct {
	FPS        int              `json:"fps"`
	FrameStart int              `json:"frame_start"`
	FrameEnd   int              `json:"frame_end"`
	Objects    []KeyframeObject `json:"objects"`
}

type KeyframeObject struct {
	Name      string     `json:"name"`
	ID        uint64     `json:"id"`
	Mass      float64    `json:"mass"`
	Color     [3]float64 `json:"color"`
	Keyframes []Keyframe `json:"keyframes"`
}

type Keyframe struct {
	Frame    int        `json:"frame"`
	Location [3]float64 `json:"location"`
}

// BuildKeyframes converts recorded frames into a keyframe track. The
// renderer frame number is the simulation frame index plus one, so the
// initial state is frame 1 and thinned recordings keep their timing at fps.
// Objects are named from names in order of first appearance, falling back to
// "object.<i>".
func BuildKeyframes(frames []dynamo.Frame, names []string, fps int) KeyframeTrack {
	track := KeyframeTrack{FPS: fps, FrameStart: 1, Objects: []KeyframeObject{}}
	if len(frames) > 0 {
		track.FrameStart = frames[0].Index + 1
	}
	byID := make(map[uint64]int)

	for _, frame := range frames {
		n := frame.Index + 1
		for _, b := range frame.Bodies {
			idx, ok := byID[b.ID]
			if !ok {
				idx = len(track.Objects)
				byID[b.ID] = idx
				name := fmt.Sprintf("object.%d", idx)
				if idx < len(names) && names[idx] != "" {
					name = names[idx]
				}
				track.Objects = append(track.Objects, KeyframeObject{
					Name:  name,
					ID:    b.ID,
					Mass:  b.Mass,
					Color: StarColor,
				})
			}
			obj := &track.Objects[idx]
			obj.Keyframes = append(obj.Keyframes, Keyframe{
				Frame:    n,
				Location: [3]float64{b.Position.X, b.Position.Y, b.Position.Z},
			})
		}
		track.FrameEnd = n
	}
	return track
}

// ExportKeyframes writes the keyframe track of frames as indented JSON.
func ExportKeyframes(w io.Writer, frames []dynamo.Frame, names []string, fps int) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildKeyframes(frames, names, fps))
}
