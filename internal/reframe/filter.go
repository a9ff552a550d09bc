package reframe

import "fmt"

// CropArg renders a rectangle as the crop filter argument w:h:x:y.
func (r Rect) CropArg() string {
	return fmt.Sprintf("%d:%d:%d:%d", r.Width, r.Height, r.X, r.Y)
}

// ScaleArg renders a size as the scale filter argument w:h.
func (s Size) ScaleArg() string {
	return fmt.Sprintf("%d:%d", s.Width, s.Height)
}

// TopSize and BottomSize return the pane sizes of a split plan.
func (p Plan) TopSize() Size { return Size{Width: p.Target.Width, Height: p.TopHeight} }

func (p Plan) BottomSize() Size { return Size{Width: p.Target.Width, Height: p.BottomHeight} }

// Filter renders the plan as an ffmpeg filter description. Split plans
// label their output [v].
func (p Plan) Filter() string {
	switch p.Layout {
	case LayoutScale:
		return "scale=" + p.Target.ScaleArg()
	case LayoutCrop:
		return "crop=" + p.Crop.CropArg() + ",scale=" + p.Target.ScaleArg()
	case LayoutSplit:
		return fmt.Sprintf("[0:v]crop=%s,scale=%s[top];[0:v]crop=%s,scale=%s[bottom];[top][bottom]vstack=inputs=2[v]",
			p.Top.CropArg(), p.TopSize().ScaleArg(),
			p.Bottom.CropArg(), p.BottomSize().ScaleArg())
	default:
		return ""
	}
}
