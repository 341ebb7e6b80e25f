package pose

// Connection is a pair of landmark indices joined by a bone
type Connection struct {
	From, To int
}

// Connections is the body skeleton drawn over a detected pose
var Connections = []Connection{
	{Nose, LeftEyeInner}, {LeftEyeInner, LeftEye}, {LeftEye, LeftEyeOuter}, {LeftEyeOuter, LeftEar},
	{Nose, RightEyeInner}, {RightEyeInner, RightEye}, {RightEye, RightEyeOuter}, {RightEyeOuter, RightEar},
	{MouthLeft, MouthRight},
	{LeftShoulder, RightShoulder},
	{LeftShoulder, LeftElbow}, {LeftElbow, LeftWrist},
	{LeftWrist, LeftPinky}, {LeftWrist, LeftIndex}, {LeftWrist, LeftThumb}, {LeftPinky, LeftIndex},
	{RightShoulder, RightElbow}, {RightElbow, RightWrist},
	{RightWrist, RightPinky}, {RightWrist, RightIndex}, {RightWrist, RightThumb}, {RightPinky, RightIndex},
	{LeftShoulder, LeftHip}, {RightShoulder, RightHip}, {LeftHip, RightHip},
	{LeftHip, LeftKnee}, {RightHip, RightKnee},
	{LeftKnee, LeftAnkle}, {RightKnee, RightAnkle},
	{LeftAnkle, LeftHeel}, {RightAnkle, RightHeel},
	{LeftHeel, LeftFootIndex}, {RightHeel, RightFootIndex},
	{LeftAnkle, LeftFootIndex}, {RightAnkle, RightFootIndex},
}
