package routine

import "context"

var placeholderTimeline = Timeline{
	{Type: Transition, Start: 0.0, End: 2.1, Label: "Walking to center stage"},
	{Type: HeldPose, Start: 2.1, End: 6.5, Label: "Front Pose"},
	{Type: Transition, Start: 6.5, End: 8.0, Label: "Executing back turn"},
	{Type: HeldPose, Start: 8.0, End: 12.3, Label: "Back Pose"},
}

// PlaceholderDeconstructor returns a fixed front/back routine for any video
type PlaceholderDeconstructor struct{}

// Deconstruct returns a copy of the fixed timeline
func (PlaceholderDeconstructor) Deconstruct(_ context.Context, video []byte) (Timeline, error) {
	if len(video) == 0 {
		return nil, ErrEmptyVideo
	}
	return append(Timeline(nil), placeholderTimeline...), nil
}
