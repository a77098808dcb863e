package ui

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/julianpalladino/football-tracking/types"
)

// DrawTrackedObject draws the object's box and its label on the frame
func DrawTrackedObject(frame *gocv.Mat, box types.BoundingBox, label string, clr color.RGBA, config types.UIConfig) error {
	if err := gocv.Rectangle(frame, outline(box), clr, config.BoxThickness); err != nil {
		return err
	}
	return DrawLabel(frame, label, image.Pt(box.X, box.Y), config)
}

// outline returns the rectangle to draw for box. OpenCV stops one pixel short
// of a cv::Rect's bottom-right corner, the outline has to include it.
func outline(box types.BoundingBox) image.Rectangle {
	return image.Rect(box.X, box.Y, box.X+box.Width+1, box.Y+box.Height+1)
}

// DrawLabel draws text on a solid background, just above and to the left of
// anchor
func DrawLabel(frame *gocv.Mat, text string, anchor image.Point, config types.UIConfig) error {
	rect, textPos := labelLayout(text, anchor, config)

	if err := gocv.Rectangle(frame, rect, config.LabelBackground, -1); err != nil {
		return err
	}
	return gocv.PutText(frame, text, textPos, config.LabelFont, config.LabelFontScale, config.LabelText, config.LabelThickness)
}

// labelLayout returns the label background and the text origin for anchor.
// The background's bottom-left corner sits at anchor+LabelOffset.
func labelLayout(text string, anchor image.Point, config types.UIConfig) (image.Rectangle, image.Point) {
	textSize := gocv.GetTextSize(text, config.LabelFont, config.LabelFontScale, config.LabelThickness)
	w := textSize.X + config.LabelPadding
	h := textSize.Y + config.LabelPadding

	corner := anchor.Add(config.LabelOffset)
	rect := image.Rect(corner.X, corner.Y-h, corner.X+w, corner.Y)
	textPos := image.Pt(corner.X+config.LabelPadding/2, corner.Y-config.LabelPadding/2)

	return rect, textPos
}
