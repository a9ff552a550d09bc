package reframe

import (
	"errors"
	"fmt"
	"math"

	"reelcut/internal/services"
)

// DefaultTopRatio is the share of the target height given to the subject pane.
const DefaultTopRatio = 6.0 / 16.0

// DefaultTarget is the vertical short resolution.
var DefaultTarget = Size{Width: 1080, Height: 1920}

const bboxTolerance = 1e-6

// ErrInvalidBBox marks a subject box that cannot be used.
var ErrInvalidBBox = fmt.Errorf("%w: invalid bounding box", services.ErrValidation)

// Size is a pixel resolution.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

func (s Size) valid() bool { return s.Width > 0 && s.Height > 0 }

// Rect is a pixel rectangle within the source frame.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// BBox is a subject rectangle in normalized source coordinates.
type BBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Validate reports whether the box is usable. The returned error wraps
// ErrInvalidBBox and names the failing rule.
func (b BBox) Validate() error {
	for _, v := range []float64{b.X, b.Y, b.Width, b.Height} {
		if math.IsNaN(v) || v < -bboxTolerance || v > 1+bboxTolerance {
			return fmt.Errorf("%w: out-of-range: %+v", ErrInvalidBBox, b)
		}
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: zero-area: %+v", ErrInvalidBBox, b)
	}
	if b.X+b.Width > 1+bboxTolerance || b.Y+b.Height > 1+bboxTolerance {
		return fmt.Errorf("%w: out-of-range: %+v", ErrInvalidBBox, b)
	}
	return nil
}

// Layout identifies the filter shape of a plan.
type Layout int

const (
	LayoutScale Layout = iota + 1
	LayoutCrop
	LayoutSplit
)

func (l Layout) String() string {
	switch l {
	case LayoutScale:
		return "scale"
	case LayoutCrop:
		return "crop"
	case LayoutSplit:
		return "split"
	default:
		return "unknown"
	}
}

// Fallback records why a supplied bounding box was not used.
type Fallback string

const (
	FallbackNone       Fallback = ""
	FallbackZeroArea   Fallback = "zero-area"
	FallbackOutOfRange Fallback = "out-of-range"
)

// Plan is the computed geometry for one source and target.
type Plan struct {
	Layout Layout
	Source Size
	Target Size

	// Crop applies to LayoutCrop.
	Crop Rect

	// Top and Bottom apply to LayoutSplit.
	Top          Rect
	Bottom       Rect
	TopHeight    int
	BottomHeight int

	Fallback    Fallback
	FallbackErr error
}

// Output returns the frame size the plan produces.
func (p Plan) Output() Size {
	if p.Layout == LayoutSplit {
		return Size{Width: p.Target.Width, Height: p.TopHeight + p.BottomHeight}
	}
	return p.Target
}

// Compute plans the reframe of src into target. A nil bbox, or one that fails
// Validate, yields a crop-to-fill plan with Fallback set for the latter.
func Compute(src, target Size, bbox *BBox, topRatio float64) (Plan, error) {
	if !src.valid() {
		return Plan{}, services.Wrap(services.ErrValidation, "reframe", "compute", fmt.Sprintf("invalid source size %s", src), nil)
	}
	if !target.valid() {
		return Plan{}, services.Wrap(services.ErrValidation, "reframe", "compute", fmt.Sprintf("invalid target size %s", target), nil)
	}
	if bbox == nil {
		return cropToFill(src, target), nil
	}
	if err := bbox.Validate(); err != nil {
		plan := cropToFill(src, target)
		plan.FallbackErr = err
		plan.Fallback = FallbackOutOfRange
		if bbox.Width <= 0 || bbox.Height <= 0 {
			plan.Fallback = FallbackZeroArea
		}
		return plan, nil
	}
	if topRatio <= 0 || topRatio >= 1 {
		return Plan{}, services.Wrap(services.ErrValidation, "reframe", "compute", fmt.Sprintf("top ratio %.4f outside (0,1)", topRatio), nil)
	}
	topHeight := int(math.Floor(float64(target.Height) * topRatio))
	bottomHeight := target.Height - topHeight
	if topHeight <= 0 || bottomHeight <= 0 {
		return Plan{}, services.Wrap(services.ErrValidation, "reframe", "compute", fmt.Sprintf("top ratio %.4f leaves an empty pane", topRatio), nil)
	}

	bx := bbox.X * float64(src.Width)
	by := bbox.Y * float64(src.Height)
	bw := bbox.Width * float64(src.Width)
	bh := bbox.Height * float64(src.Height)
	if math.Floor(bw) == 0 || math.Floor(bh) == 0 {
		plan := cropToFill(src, target)
		plan.Fallback = FallbackZeroArea
		plan.FallbackErr = fmt.Errorf("%w: zero-area: box is %.2fx%.2f pixels", ErrInvalidBBox, bw, bh)
		return plan, nil
	}

	top := subjectCrop(src, bx, by, bw, bh, float64(target.Width)/float64(topHeight))
	if top.Width == 0 || top.Height == 0 {
		plan := cropToFill(src, target)
		plan.Fallback = FallbackZeroArea
		plan.FallbackErr = fmt.Errorf("%w: zero-area: subject crop is %dx%d pixels", ErrInvalidBBox, top.Width, top.Height)
		return plan, nil
	}

	return Plan{
		Layout:       LayoutSplit,
		Source:       src,
		Target:       target,
		Top:          top,
		Bottom:       fillCrop(src, Size{Width: target.Width, Height: bottomHeight}),
		TopHeight:    topHeight,
		BottomHeight: bottomHeight,
	}, nil
}

// IsFallback reports whether err came from a rejected bounding box.
func IsFallback(err error) bool { return errors.Is(err, ErrInvalidBBox) }

func cropToFill(src, target Size) Plan {
	// Sw/Sh <= Tw/Th, compared without division.
	if src.Width*target.Height <= target.Width*src.Height {
		return Plan{Layout: LayoutScale, Source: src, Target: target}
	}
	cropWidth := src.Height * target.Width / target.Height
	return Plan{
		Layout: LayoutCrop,
		Source: src,
		Target: target,
		Crop:   Rect{X: (src.Width - cropWidth) / 2, Y: 0, Width: cropWidth, Height: src.Height},
	}
}

// fillCrop centers the largest pane-aspect rectangle inside the full frame.
func fillCrop(src, pane Size) Rect {
	if src.Width*pane.Height > pane.Width*src.Height {
		w := src.Height * pane.Width / pane.Height
		return Rect{X: (src.Width - w) / 2, Y: 0, Width: w, Height: src.Height}
	}
	h := src.Width * pane.Height / pane.Width
	return Rect{X: 0, Y: (src.Height - h) / 2, Width: src.Width, Height: h}
}

// subjectCrop fits the slot aspect around the box centre, keeping the box
// dimension that limits the fit. The rectangle is shrunk and shifted as
// needed so it stays inside the frame.
func subjectCrop(src Size, bx, by, bw, bh, aspect float64) Rect {
	cropW, cropH := bw, bh
	if bw/bh > aspect {
		cropW = bh * aspect
	} else {
		cropH = bw / aspect
	}
	if cropW > float64(src.Width) {
		cropW = float64(src.Width)
		cropH = cropW / aspect
	}
	if cropH > float64(src.Height) {
		cropH = float64(src.Height)
		cropW = cropH * aspect
	}
	x := bx + bw/2 - cropW/2
	y := by + bh/2 - cropH/2
	x = math.Max(0, math.Min(x, float64(src.Width)-cropW))
	y = math.Max(0, math.Min(y, float64(src.Height)-cropH))
	return Rect{
		X:      int(math.Floor(x)),
		Y:      int(math.Floor(y)),
		Width:  int(math.Floor(cropW)),
		Height: int(math.Floor(cropH)),
	}
}
