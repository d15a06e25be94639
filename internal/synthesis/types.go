package synthesis

import "context"

// Request describes one slot's synthesis call. The gateway produces exactly
// one image per call; multi-image jobs issue one request per slot with a
// distinct pose so the outputs differ.
type Request struct {
	ReferenceBytes []byte
	ReferenceMIME  string
	Prompt         string
	Style          string
	CameraAngle    string
	Lighting       string
	AspectRatio    string
	Pose           string
	JobID          string
	SlotIndex      int
}

// Result carries the generated image bytes and their MIME type.
type Result struct {
	Data []byte
	MIME string
}

// Generator is the contract implemented by image synthesis providers.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}
