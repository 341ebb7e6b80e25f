package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
	"gocv.io/x/gocv"

	"github.com/dudu/poseperfect/internal/background"
	"github.com/dudu/poseperfect/internal/imaging"
	"github.com/dudu/poseperfect/internal/metrics"
	"github.com/dudu/poseperfect/internal/pipeline"
	"github.com/dudu/poseperfect/internal/pose"
)

type fakeRemover struct {
	out    []byte
	err    error
	calls  int
	closed bool
}

func (f *fakeRemover) Remove(_ context.Context, _ []byte) ([]byte, error) {
	f.calls++
	return f.out, f.err
}

func (f *fakeRemover) Close() error {
	f.closed = true
	return nil
}

type fakeDetector struct {
	detection pose.Detection
	err       error
	seen      int
}

func (f *fakeDetector) Detect(img gocv.Mat) (pose.Detection, error) {
	f.seen = img.Channels()
	return f.detection, f.err
}

func encode(t *testing.T, rows, cols int, typ gocv.MatType, s gocv.Scalar) []byte {
	t.Helper()
	m := gocv.NewMatWithSize(rows, cols, typ)
	defer m.Close()
	m.SetTo(s)
	data, err := imaging.EncodePNG(m)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func standingPose() pose.Detection {
	var set pose.LandmarkSet
	for i := range set {
		set[i] = pose.Landmark{X: 0.5, Y: 0.5, Visibility: 0.9}
	}
	set[pose.LeftShoulder] = pose.Landmark{X: 0.75, Y: 0.3, Visibility: 0.99}
	set[pose.RightShoulder] = pose.Landmark{X: 0.25, Y: 0.3, Visibility: 0.99}
	set[pose.LeftHip] = pose.Landmark{X: 0.625, Y: 0.6, Visibility: 0.99}
	set[pose.RightHip] = pose.Landmark{X: 0.375, Y: 0.6, Visibility: 0.99}
	return pose.Detected(set)
}

func TestPreprocess(t *testing.T) {
	ctx := context.Background()

	Convey("Given a pipeline with working collaborators", t, func() {
		input := encode(t, 40, 80, gocv.MatTypeCV8UC3, gocv.NewScalar(120, 120, 120, 0))
		remover := &fakeRemover{out: encode(t, 40, 80, gocv.MatTypeCV8UC4, gocv.NewScalar(60, 60, 60, 255))}
		det := &fakeDetector{detection: standingPose()}
		registry := prometheus.NewRegistry()

		p, err := pipeline.New(remover, det, pipeline.DefaultConfig(),
			pipeline.WithMetrics(metrics.NewManager(metrics.WithRegistry(registry))))
		So(err, ShouldBeNil)

		Convey("When an image is preprocessed", func() {
			res, err := p.Preprocess(ctx, input)
			So(err, ShouldBeNil)
			defer res.Close()

			Convey("Then the detector sees an opaque image and the pose is kept", func() {
				So(det.seen, ShouldEqual, 3)
				So(res.Detection.Found(), ShouldBeTrue)
				So(res.Width, ShouldEqual, 80)
				So(res.Height, ShouldEqual, 40)
				So(res.Annotated.Channels(), ShouldEqual, 3)
			})

			Convey("Then the overlay is drawn on the copy only", func() {
				diff := gocv.NewMat()
				defer diff.Close()
				gocv.AbsDiff(res.Normalized, res.Annotated, &diff)
				gray := gocv.NewMat()
				defer gray.Close()
				gocv.CvtColor(diff, &gray, gocv.ColorBGRToGray)
				So(gocv.CountNonZero(gray), ShouldBeGreaterThan, 0)
			})

			Convey("Then stage timings are recorded", func() {
				So(p.LastTiming().Total > 0, ShouldBeTrue)
				count, err := testutil.GatherAndCount(registry, "poseperfect_stage_duration_seconds")
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 5)
			})
		})

		Convey("When no pose is found", func() {
			det.detection = pose.NoPose()
			res, err := p.Preprocess(ctx, input)

			Convey("Then it is a valid outcome with an untouched copy", func() {
				So(err, ShouldBeNil)
				defer res.Close()
				So(res.Detection.Found(), ShouldBeFalse)
				So(res.Annotated.Empty(), ShouldBeFalse)
				expected := `
# HELP poseperfect_no_pose_total Images in which no pose was detected
# TYPE poseperfect_no_pose_total counter
poseperfect_no_pose_total 1
`
				So(testutil.GatherAndCompare(registry, strings.NewReader(expected), "poseperfect_no_pose_total"), ShouldBeNil)
			})
		})

		Convey("When background removal fails", func() {
			remover.err = errors.New("model crashed")
			res, err := p.Preprocess(ctx, input)

			Convey("Then the pipeline aborts with a removal failure", func() {
				So(res, ShouldBeNil)
				So(errors.Is(err, background.ErrRemovalFailed), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "model crashed")
			})
		})

		Convey("When the remover returns garbage", func() {
			remover.out = []byte("nope")
			_, err := p.Preprocess(ctx, input)

			Convey("Then it is a removal failure", func() {
				So(errors.Is(err, background.ErrRemovalFailed), ShouldBeTrue)
			})
		})

		Convey("When the input is not an image", func() {
			_, err := p.Preprocess(ctx, []byte("garbage"))

			Convey("Then nothing is computed", func() {
				So(errors.Is(err, imaging.ErrInvalidImage), ShouldBeTrue)
				So(remover.calls, ShouldEqual, 0)
			})
		})

		Convey("When the detector fails", func() {
			det.err = errors.New("session lost")
			_, err := p.Preprocess(ctx, input)

			Convey("Then the error is propagated", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "session lost")
			})
		})

		Convey("When the pipeline is closed", func() {
			So(p.Close(), ShouldBeNil)
			So(remover.closed, ShouldBeTrue)
		})
	})

	Convey("Given invalid construction arguments", t, func() {
		det := &fakeDetector{}
		remover := &fakeRemover{}

		_, err := pipeline.New(nil, det, pipeline.DefaultConfig())
		So(err, ShouldNotBeNil)

		_, err = pipeline.New(remover, nil, pipeline.DefaultConfig())
		So(err, ShouldNotBeNil)

		bad := pipeline.DefaultConfig()
		bad.Lighting.ClipLimit = 0
		_, err = pipeline.New(remover, det, bad)
		So(errors.Is(err, imaging.ErrInvalidCLAHE), ShouldBeTrue)

		bad = pipeline.DefaultConfig()
		bad.Backdrop = "teal"
		_, err = pipeline.New(remover, det, bad)
		So(errors.Is(err, imaging.ErrUnknownBackdrop), ShouldBeTrue)
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given a transparent image", t, func() {
		img := gocv.NewMatWithSize(16, 16, gocv.MatTypeCV8UC4)
		defer img.Close()
		img.SetTo(gocv.NewScalar(0, 0, 0, 0))

		Convey("When normalized over white", func() {
			config := pipeline.DefaultConfig()
			config.Backdrop = imaging.BackdropWhite
			out, err := pipeline.Normalize(img, config)
			So(err, ShouldBeNil)
			defer out.Close()

			Convey("Then the result is opaque BGR", func() {
				So(out.Channels(), ShouldEqual, 3)
				So(out.Rows(), ShouldEqual, 16)
			})
		})
	})
}
