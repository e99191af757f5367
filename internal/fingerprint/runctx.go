package fingerprint

import (
	"fmt"

	"github.com/alnah/go-reprise/internal/audio"
)

// RunContext carries the properties fixed by the first track of a run.
// Every later track is checked against them; a disagreement is an error,
// never a silent skip.
//
// The zero value is ready to use. A RunContext is not safe for concurrent use.
type RunContext struct {
	audioSet   bool
	channels   int
	sampleRate int

	metaSet bool
	meta    Meta
}

// CheckAudio records the channel count and sample rate of the first track
// and verifies that later tracks match.
func (rc *RunContext) CheckAudio(pcm audio.PCM) error {
	if !rc.audioSet {
		rc.channels, rc.sampleRate = pcm.Channels, pcm.SampleRate
		rc.audioSet = true
		return nil
	}
	if pcm.Channels != rc.channels {
		return fmt.Errorf("%s has %d channels, expected %d: %w",
			pcm.Path, pcm.Channels, rc.channels, audio.ErrChannelMismatch)
	}
	if pcm.SampleRate != rc.sampleRate {
		return fmt.Errorf("%s has sample rate %d, expected %d: %w",
			pcm.Path, pcm.SampleRate, rc.sampleRate, audio.ErrSampleRateMismatch)
	}
	return nil
}

// CheckSequence records the fingerprint metadata of the first sequence
// and verifies that later sequences carry the same delay and item duration.
func (rc *RunContext) CheckSequence(seq Sequence) error {
	if err := seq.Meta.Validate(); err != nil {
		return err
	}
	if !rc.metaSet {
		rc.meta = seq.Meta
		rc.metaSet = true
		return nil
	}
	if seq.Meta.Delay != rc.meta.Delay {
		return fmt.Errorf("%w: delay %d, expected %d", ErrMetaMismatch, seq.Meta.Delay, rc.meta.Delay)
	}
	if seq.Meta.ItemDuration != rc.meta.ItemDuration {
		return fmt.Errorf("%w: item duration %d, expected %d",
			ErrMetaMismatch, seq.Meta.ItemDuration, rc.meta.ItemDuration)
	}
	if seq.Meta.SampleRate != rc.meta.SampleRate {
		return fmt.Errorf("%w: time base %d, expected %d",
			ErrMetaMismatch, seq.Meta.SampleRate, rc.meta.SampleRate)
	}
	return nil
}

// Meta returns the metadata recorded from the first sequence and whether it has been set.
func (rc *RunContext) Meta() (Meta, bool) {
	return rc.meta, rc.metaSet
}
