package synthesis

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CatalogPoses is the rotation of professional fashion poses assigned to
// slots. Slot i uses pose i mod len(CatalogPoses), so a multi-image request
// yields visually distinct outputs instead of N copies.
var CatalogPoses = []string{
	// Standing
	"Standing confidently with hands on hips, looking directly at the camera.",
	"A relaxed standing pose, one hand in a pocket, with a slight, natural smile.",
	"Three-quarter view, looking over the shoulder towards the camera.",
	"Full body shot, standing straight with feet slightly apart, arms relaxed at the sides.",
	"Leaning casually against an invisible wall, one leg crossed in front of the other.",
	"A dynamic walking pose, captured mid-stride as if walking towards the viewer.",
	"Hands clasped gently in front, with a soft and approachable expression.",
	"Profile view, standing straight and looking forward, highlighting the silhouette of the outfit.",
	"Adjusting a cuff or a collar, creating a natural, candid moment.",
	"A simple pose with one hand gently touching the chin or side of the face.",
	// Seated
	"Sitting elegantly on a simple stool or block, legs crossed, looking at the camera.",
	"A casual seated pose on the floor, knees bent, leaning back on one hand.",
	"Sitting on a low bench, leaning forward with elbows on knees, looking thoughtful.",
	"Profile view while seated, showcasing the drape and fit of the clothing from the side.",
	// Detail and action
	"A close-up shot from the waist up, focusing on the details of the upper garment.",
	"A pose showing movement, like a gentle twirl to show the flow of a skirt or dress.",
	"A pose that highlights a specific feature, like putting a hand in a pocket to show its placement.",
	"Looking down at their shoes, as if admiring them, good for full outfit shots.",
	"A laughing, candid pose, looking slightly away from the camera.",
	"Arms crossed over the chest with a confident and strong stance.",
	"A 'contrapposto' pose, with weight shifted to one foot, creating a natural S-curve in the body.",
	"Reaching for something just out of frame, creating a sense of action.",
	"A simple, elegant pose with hands held behind the back.",
	"A dynamic pose as if just turning around to face the camera.",
}

// PoseForSlot returns the catalog pose assigned to a slot index.
func PoseForSlot(slot int) string {
	if slot < 0 {
		slot = 0
	}
	return CatalogPoses[slot%len(CatalogPoses)]
}

var titleCaser = cases.Title(language.English)

// BuildFashionPrompt converts the request into the natural language
// instruction sent to the image editing model. The identity-preservation
// preamble is load-bearing: the model must keep the reference person's face
// intact and only restyle clothing, scene, and photography.
func BuildFashionPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("Create a professional fashion photography image of this person. ")
	b.WriteString("Transform them into a fashion model while keeping their face, facial features, and identity EXACTLY the same. ")
	b.WriteString("Preserve their eyes, nose, mouth, skin tone, and overall facial appearance. ")
	b.WriteString("Only change the clothing, styling, background, and photography aesthetics. ")
	b.WriteString(strings.TrimSpace(req.Prompt))

	if style := canonical(req.Style); style != "" {
		fmt.Fprintf(&b, " Create this in %s fashion photography style", style)
	}
	if angle := canonical(req.CameraAngle); angle != "" {
		fmt.Fprintf(&b, ", shot from %s camera angle", angle)
	}
	if lighting := canonical(req.Lighting); lighting != "" {
		fmt.Fprintf(&b, ", with %s lighting setup", lighting)
	}
	b.WriteString(".")

	if pose := strings.TrimSpace(req.Pose); pose != "" {
		b.WriteString(" Pose: ")
		b.WriteString(pose)
	}

	switch req.AspectRatio {
	case "landscape":
		b.WriteString(" Compose the frame in landscape orientation.")
	case "square":
		b.WriteString(" Compose the frame as a square crop.")
	default:
		b.WriteString(" Compose the frame in portrait orientation.")
	}

	b.WriteString(" Professional high-end fashion editorial photography, sharp focus on face and details,")
	b.WriteString(" photorealistic, studio quality, magazine cover worthy, elegant composition,")
	b.WriteString(" sophisticated styling, 8k resolution, shot on Hasselblad medium format camera.")
	b.WriteString(" The person's face must remain identical to the reference image.")

	return b.String()
}

// canonical normalizes free-case catalog values ("editorial", "EYE LEVEL")
// into their display form for prompt text.
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(v))
}
