package video_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/dudu/poseperfect/internal/pose"
	"github.com/dudu/poseperfect/internal/routine"
	"github.com/dudu/poseperfect/internal/video"
)

// writeClip encodes solid-color frames as MJPG at fps and returns the bytes
func writeClip(t *testing.T, frames int, fps float64) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.avi")

	writer, err := gocv.VideoWriterFile(path, "MJPG", fps, 64, 48, true)
	require.NoError(t, err)

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()
	for i := 0; i < frames; i++ {
		frame.SetTo(gocv.NewScalar(float64(i*8%255), 100, 100, 0))
		require.NoError(t, writer.Write(frame))
	}
	require.NoError(t, writer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

type staticDetector struct {
	detection pose.Detection
	calls     int
}

func (s *staticDetector) Detect(gocv.Mat) (pose.Detection, error) {
	s.calls++
	return s.detection, nil
}

type failingDetector struct{}

func (failingDetector) Detect(gocv.Mat) (pose.Detection, error) {
	return pose.NoPose(), errors.New("session lost")
}

func frontPose() pose.Detection {
	var set pose.LandmarkSet
	for i := range set {
		set[i] = pose.Landmark{X: 0.5, Y: 0.5, Visibility: 0.9}
	}
	set[pose.LeftShoulder].X = 0.7
	set[pose.RightShoulder].X = 0.3
	return pose.Detected(set)
}

func TestReader(t *testing.T) {
	data := writeClip(t, 20, 10)

	r, err := video.OpenBytes(data)
	require.NoError(t, err)

	assert.InDelta(t, 10, r.FPS(), 1e-6)
	assert.Equal(t, 64, r.Width())
	assert.Equal(t, 48, r.Height())

	frame := gocv.NewMat()
	defer frame.Close()
	n := 0
	for r.Read(&frame) {
		n++
	}
	assert.Equal(t, 20, n)
	assert.InDelta(t, 1.9, r.Timestamp(), 1e-9)

	require.NoError(t, r.Close())
	assert.False(t, r.Read(&frame))
}

func TestOpenBytesRejectsGarbage(t *testing.T) {
	_, err := video.OpenBytes(nil)
	assert.ErrorIs(t, err, video.ErrInvalidVideo)

	_, err = video.OpenBytes([]byte("this is not a video container"))
	assert.ErrorIs(t, err, video.ErrInvalidVideo)
}

func TestDeconstructor(t *testing.T) {
	ctx := context.Background()
	data := writeClip(t, 30, 10)

	t.Run("a held front pose after the first sample", func(t *testing.T) {
		det := &staticDetector{detection: frontPose()}
		d := video.NewDeconstructor(det)

		timeline, track, err := d.DeconstructTrack(ctx, data)
		require.NoError(t, err)
		require.NoError(t, timeline.Validate())

		require.Len(t, timeline, 2)
		assert.Equal(t, routine.Transition, timeline[0].Type)
		assert.Equal(t, routine.HeldPose, timeline[1].Type)
		assert.Equal(t, routine.FrontPoseLabel, timeline[1].Label)
		assert.InDelta(t, 3.0, timeline.End(), 1e-9)

		assert.Len(t, track, 15)
		assert.Equal(t, 15, det.calls)
	})

	t.Run("no pose anywhere is one transition", func(t *testing.T) {
		d := video.NewDeconstructor(&staticDetector{detection: pose.NoPose()}, video.WithSampleInterval(0.5))

		timeline, err := d.Deconstruct(ctx, data)
		require.NoError(t, err)
		require.Len(t, timeline, 1)
		assert.Equal(t, routine.Transition, timeline[0].Type)
		assert.Equal(t, 0.0, timeline[0].Start)
	})

	t.Run("a dwell longer than the clip keeps everything a transition", func(t *testing.T) {
		d := video.NewDeconstructor(&staticDetector{detection: frontPose()}, video.WithMinDwell(10))

		timeline, err := d.Deconstruct(ctx, data)
		require.NoError(t, err)
		assert.Empty(t, timeline.HeldPoses())
	})

	t.Run("detector failures propagate", func(t *testing.T) {
		_, err := video.NewDeconstructor(failingDetector{}).Deconstruct(ctx, data)
		assert.ErrorContains(t, err, "session lost")
	})

	t.Run("empty and corrupt input", func(t *testing.T) {
		d := video.NewDeconstructor(&staticDetector{})

		_, err := d.Deconstruct(ctx, nil)
		assert.ErrorIs(t, err, routine.ErrEmptyVideo)

		_, err = d.Deconstruct(ctx, []byte("garbage"))
		assert.ErrorIs(t, err, video.ErrInvalidVideo)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := video.NewDeconstructor(&staticDetector{detection: frontPose()}).Deconstruct(cancelled, data)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
