package domain

import "strings"

// Submission limits shared with clients.
const (
	MinImagesPerGeneration = 1
	MaxImagesPerGeneration = 8
	MaxPromptLength        = 500
	DefaultAspectRatio     = "portrait"
	DefaultHistoryLimit    = 50
)

// GenerationStyles lists the fashion photography styles the prompt builder
// understands. Values are matched case-insensitively.
var GenerationStyles = []string{
	"Editorial",
	"Commercial",
	"Artistic",
	"Casual",
	"Glamour",
	"Vintage",
}

var CameraAngles = []string{
	"Eye Level",
	"High Angle",
	"Low Angle",
	"Dutch Angle",
	"Over Shoulder",
	"Three Quarter",
	"Profile",
	"Close Up",
}

var LightingOptions = []string{
	"Natural Light",
	"Studio Light",
	"Dramatic Light",
	"Soft Light",
	"Backlight",
	"Golden Hour",
}

var AspectRatios = []string{"portrait", "landscape", "square"}

func ValidStyle(v string) bool       { return containsFold(GenerationStyles, v) }
func ValidCameraAngle(v string) bool { return containsFold(CameraAngles, v) }
func ValidLighting(v string) bool    { return containsFold(LightingOptions, v) }

func ValidAspectRatio(v string) bool {
	for _, r := range AspectRatios {
		if r == v {
			return true
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
