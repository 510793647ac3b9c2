package domain

const (
	SpeechSampleRate = 24000
	SpeechChannels   = 1
)

type SpeechEventKind int

const (
	SpeechStarted SpeechEventKind = iota + 1
	SpeechEnded
)

// SpeechEvent is emitted by a speaker. Err is only ever set on an Ended
// event and means playback stopped early.
type SpeechEvent struct {
	Kind SpeechEventKind
	Err  error
}

// Clip is decoded audio ready for an output device.
type Clip struct {
	SampleRate int
	Channels   [][]float32
}

func (c Clip) Frames() int {
	if len(c.Channels) == 0 {
		return 0
	}
	return len(c.Channels[0])
}
