package util

import (
    "errors"
    "context"
)

var UnsupportedError = errors.New("Unsupported")

/* recording passes audio to ffmpeg on an inherited file descriptor, which windows does not support */
func EncodeAudio(path string, mainQuit context.Context, sampleRate int, audio <-chan []float32) error {
    return UnsupportedError
}
