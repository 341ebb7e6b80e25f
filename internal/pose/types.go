package pose

// Body landmark indices in the 33-point body model
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32

	NumLandmarks = 33
)

// Landmark is a keypoint normalized to [0,1] of the image width/height,
// with a visibility confidence in [0,1]
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Pixel returns the landmark position in pixel space
func (l Landmark) Pixel(width, height int) (float64, float64) {
	return l.X * float64(width), l.Y * float64(height)
}

// LandmarkSet is a complete 33-point body model
type LandmarkSet [NumLandmarks]Landmark

// Detection is the outcome of landmark detection on one image.
// A pose is either fully present or absent; partial sets are never built.
type Detection struct {
	landmarks LandmarkSet
	found     bool
}

// Detected wraps a complete landmark set
func Detected(set LandmarkSet) Detection {
	return Detection{landmarks: set, found: true}
}

// NoPose is the "no pose detected" outcome
func NoPose() Detection {
	return Detection{}
}

// Landmarks returns the set and whether a pose was detected
func (d Detection) Landmarks() (LandmarkSet, bool) {
	return d.landmarks, d.found
}

// Found reports whether a pose was detected
func (d Detection) Found() bool {
	return d.found
}
