package audio

// FakePlayer records played clips for test assertions.
type FakePlayer struct {
	// Played contains the paths passed to Play, in order.
	Played []string

	// PlayError, if set, will be returned by Play.
	PlayError error

	// OnPlay, if set, is invoked during Play. Lets tests block playback
	// or flip shared state mid-transmission.
	OnPlay func(path string)
}

// Play records the clip path.
func (f *FakePlayer) Play(path string) error {
	if f.OnPlay != nil {
		f.OnPlay(path)
	}
	if f.PlayError != nil {
		return f.PlayError
	}
	f.Played = append(f.Played, path)
	return nil
}

// FakeRecorder records capture lifecycles for test assertions.
type FakeRecorder struct {
	// Started contains the paths passed to Start, in order.
	Started []string

	// Deleted contains the paths passed to Delete, in order.
	Deleted []string

	// Captures contains the handles returned from Start, in order.
	Captures []*FakeCapture

	// StartError, if set, will be returned by Start.
	StartError error

	// StopError, if set, will be returned by Stop on created captures.
	StopError error

	// DeleteError, if set, will be returned by Delete.
	DeleteError error
}

// Start records the path and returns a new FakeCapture.
func (f *FakeRecorder) Start(path string) (Capture, error) {
	if f.StartError != nil {
		return nil, f.StartError
	}
	f.Started = append(f.Started, path)
	c := &FakeCapture{Path: path, stopError: f.StopError}
	f.Captures = append(f.Captures, c)
	return c, nil
}

// Delete records the path.
func (f *FakeRecorder) Delete(path string) error {
	f.Deleted = append(f.Deleted, path)
	return f.DeleteError
}

// FakeCapture is the handle returned by FakeRecorder.Start.
type FakeCapture struct {
	Path      string
	Stopped   bool
	stopError error
}

// Stop marks the capture stopped.
func (c *FakeCapture) Stop() error {
	c.Stopped = true
	return c.stopError
}
