// Package detect defines the boundary types produced by the external
// recognition adapters (chyron OCR, facial recognition, speaker diarization).
// The engines themselves live outside this codebase; the correlator only
// consumes their typed outputs.
package detect

import "fmt"

// CropArea is a region-of-interest rectangle in pixels, expressed the way the
// ffmpeg crop filter takes it: width, height, x offset, y offset.
type CropArea struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

// LowerThird is the default chyron scan area for 1080p footage: a 200px high
// banner at the bottom of the frame.
var LowerThird = CropArea{Width: 1920, Height: 200, X: 0, Y: 880}

// String renders the rectangle in ffmpeg crop filter syntax (w:h:x:y).
func (c CropArea) String() string {
	return fmt.Sprintf("%d:%d:%d:%d", c.Width, c.Height, c.X, c.Y)
}

// OCREvent is one chyron text hit at a video timestamp.
type OCREvent struct {
	Timestamp float64 `json:"timestamp"`
	Text      string  `json:"text"`
}

// FaceDetection is a single detected face: its bounding region in the frame
// and the fixed-length embedding vector the recognition engine produced.
type FaceDetection struct {
	Region    [4]float64 `json:"region"`
	Embedding []float32  `json:"embedding"`
}

// FaceFrame groups the faces detected in one sampled frame (~1 sample/second).
type FaceFrame struct {
	Timestamp  float64         `json:"timestamp"`
	Detections []FaceDetection `json:"detections"`
}

// SpeakerSegment is one diarization segment. Labels are stable within one run
// only; they never identify the same voice across videos.
type SpeakerSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Label string  `json:"label"`
}

// Results bundles the three detection lists for one video.
type Results struct {
	OCR      []OCREvent       `json:"ocr,omitempty"`
	Faces    []FaceFrame      `json:"faces,omitempty"`
	Speakers []SpeakerSegment `json:"speakers,omitempty"`
}

// FaceMap indexes the face frames by timestamp, the shape the correlator
// consumes. Frames listed twice for the same timestamp are concatenated.
func (r *Results) FaceMap() map[float64][]FaceDetection {
	if len(r.Faces) == 0 {
		return nil
	}
	m := make(map[float64][]FaceDetection, len(r.Faces))
	for _, frame := range r.Faces {
		m[frame.Timestamp] = append(m[frame.Timestamp], frame.Detections...)
	}
	return m
}

// Provider runs the recognition engines against one video. Implementations
// wrap the external OCR/face/diarization tooling; an empty result list is a
// normal outcome, not an error.
type Provider interface {
	DetectOCR(videoPath string, crop CropArea) ([]OCREvent, error)
	DetectFaces(videoPath string, crop *CropArea) ([]FaceFrame, error)
	DetectSpeakers(videoPath string) ([]SpeakerSegment, error)
}
