// Package audio is the soundcard collaborator: playback of prepared
// announcement clips and capture of received transmissions.
// The real implementations shell out to sox, which is what the repeater's
// audio chain is built around.
package audio

// Player plays one clip, blocking until playback completes.
type Player interface {
	Play(path string) error
}

// Capture is one in-progress recording.
type Capture interface {
	// Stop ends the capture and finalizes the file.
	Stop() error
}

// Recorder starts captures and disposes of unwanted files.
type Recorder interface {
	Start(path string) (Capture, error)
	Delete(path string) error
}
