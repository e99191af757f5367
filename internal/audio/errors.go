package audio

import "errors"

// ErrFileNotFound indicates the specified input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrUnsupportedFormat indicates the file is not an uncompressed PCM WAV file.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// ErrDecode indicates the audio data could not be read.
var ErrDecode = errors.New("audio decode failed")

// ErrEmptyAudio indicates a decoded track contains no samples.
var ErrEmptyAudio = errors.New("audio contains no samples")

// ErrChannelMismatch indicates two tracks have different channel counts.
var ErrChannelMismatch = errors.New("tracks must have the same number of channels")

// ErrSampleRateMismatch indicates two tracks have different sample rates.
var ErrSampleRateMismatch = errors.New("tracks must have the same sample rate")

// ErrIdenticalTracks indicates two tracks contain exactly the same samples.
var ErrIdenticalTracks = errors.New("audio files are the same")
