package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"reelcut/internal/logging"
	"reelcut/internal/reframe"
	"reelcut/internal/services"
)

const subjectTemperature = 0.2

// Detection is the model's verdict on whether a video shows a streamer
// overlay and where it sits. It is persisted as-is.
type Detection struct {
	IsReaction bool          `json:"is_reaction"`
	Confidence float64       `json:"confidence"`
	Reason     string        `json:"reason"`
	BBox       *reframe.BBox `json:"streamer_bbox"`
}

// Subject returns the box to frame, or nil when the detection should not
// drive a split layout.
func (d Detection) Subject() *reframe.BBox {
	if !d.IsReaction || d.BBox == nil {
		return nil
	}
	box := *d.BBox
	return &box
}

// SubjectDetector asks the model to locate a streamer in sampled frames.
type SubjectDetector struct {
	client *Client
	logger *slog.Logger
}

// NewSubjectDetector wraps client. A nil logger discards warnings.
func NewSubjectDetector(client *Client, logger *slog.Logger) *SubjectDetector {
	return &SubjectDetector{client: client, logger: logging.NewComponentLogger(logger, "subject-detector")}
}

// Detect sends every readable frame in one request. Missing or unreadable
// frames are skipped; at least one must remain.
func (d *SubjectDetector) Detect(ctx context.Context, framePaths []string) (Detection, error) {
	if len(framePaths) == 0 {
		return Detection{}, services.Wrap(services.ErrMissingArtifact, "subject", "frames", "no frames provided", nil)
	}
	parts := make([]Part, 0, len(framePaths)+1)
	parts = append(parts, TextPart(fmt.Sprintf("%d frames follow.", len(framePaths))))
	for _, path := range framePaths {
		data, err := os.ReadFile(path)
		if err != nil || len(data) == 0 {
			if err == nil {
				err = fmt.Errorf("empty file")
			}
			logging.WarnWithContext(d.logger, "frame skipped", "subject_frame_unreadable",
				logging.String("frame", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "re-run frame extraction"),
				logging.String(logging.FieldImpact, "detection uses fewer frames"),
			)
			continue
		}
		parts = append(parts, ImagePart(frameMIME(path, data), data))
	}
	if len(parts) == 1 {
		return Detection{}, services.Wrap(services.ErrMissingArtifact, "subject", "frames", "no readable frames", nil)
	}

	content, err := d.client.Complete(ctx, "llm subject", Request{
		System:      SubjectDetectionPrompt,
		Parts:       parts,
		Temperature: subjectTemperature,
		JSON:        true,
	})
	if err != nil {
		return Detection{}, classify("subject", "complete", err)
	}
	detection, err := ParseDetection(content)
	if err != nil {
		return Detection{}, services.Wrap(services.ErrExternalTool, "subject", "parse", "unusable model response", err)
	}
	return detection, nil
}

// ParseDetection decodes a detection payload and clamps confidence to [0,1].
func ParseDetection(content string) (Detection, error) {
	var payload struct {
		IsReaction *bool  `json:"is_reaction"`
		Confidence number `json:"confidence"`
		Reason     string `json:"reason"`
		BBox       *struct {
			X      number `json:"x"`
			Y      number `json:"y"`
			Width  number `json:"width"`
			Height number `json:"height"`
		} `json:"streamer_bbox"`
	}
	if err := DecodeLLMJSON(content, &payload); err != nil {
		return Detection{}, err
	}
	if payload.IsReaction == nil {
		return Detection{}, fmt.Errorf(`response has no "is_reaction" field`)
	}
	detection := Detection{
		IsReaction: *payload.IsReaction,
		Confidence: min(max(float64(payload.Confidence), 0), 1),
		Reason:     strings.TrimSpace(payload.Reason),
	}
	if payload.BBox != nil {
		detection.BBox = &reframe.BBox{
			X:      float64(payload.BBox.X),
			Y:      float64(payload.BBox.Y),
			Width:  float64(payload.BBox.Width),
			Height: float64(payload.BBox.Height),
		}
	}
	return detection, nil
}

func frameMIME(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	}
	return http.DetectContentType(data)
}
