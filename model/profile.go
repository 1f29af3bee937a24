package model

import (
	"github.com/ostraka/segstream/vocab"
)

// Profile describes the static characteristics of a mode's published model.
// Name is opaque to the gateway; ExpectedFPS and MemoryMB are display hints
// for clients, not enforced limits.
type Profile struct {
	Name         string
	Backbone     string
	InputH       int
	InputW       int
	Vocabulary   vocab.Vocabulary
	Optimization string // "onnx" or "pytorch"
	ExpectedFPS  int
	MemoryMB     int
	Queries      int // query-head width; zero for pixel-decoder modes
}

var profiles = map[Mode]Profile{
	ModeFast: {
		Name:         "deeplabv3_mobilenet_v3_large",
		Backbone:     "mobilenet_v3",
		InputH:       512,
		InputW:       512,
		Vocabulary:   vocab.COCO21,
		Optimization: "onnx",
		ExpectedFPS:  35,
		MemoryMB:     1200,
	},
	ModeBalanced: {
		Name:         "deeplabv3_resnet50",
		Backbone:     "resnet50",
		InputH:       640,
		InputW:       640,
		Vocabulary:   vocab.COCO21,
		Optimization: "onnx",
		ExpectedFPS:  22,
		MemoryMB:     2500,
	},
	ModeAccurate: {
		Name:         "segformer-b3-ade20k",
		Backbone:     "segformer",
		InputH:       768,
		InputW:       768,
		Vocabulary:   vocab.ADE150,
		Optimization: "pytorch",
		ExpectedFPS:  12,
		MemoryMB:     4500,
	},
	ModeSOTA: {
		Name:         "mask2former-swin-base-ade20k",
		Backbone:     "swin",
		InputH:       640,
		InputW:       640,
		Vocabulary:   vocab.ADE150,
		Optimization: "pytorch",
		ExpectedFPS:  8,
		MemoryMB:     6000,
		Queries:      100,
	},
}

// Profile returns the static profile for the mode. Unknown modes return the
// zero Profile.
func (m Mode) Profile() Profile {
	return profiles[m]
}

// NumClasses returns the size of the mode's class vocabulary.
func (m Mode) NumClasses() int {
	return vocab.NumClasses(profiles[m].Vocabulary)
}

// Labels returns the mode's class labels, indexed by class id.
func (m Mode) Labels() []string {
	return vocab.Labels(profiles[m].Vocabulary)
}
