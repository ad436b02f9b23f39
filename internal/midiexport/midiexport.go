// Package midiexport writes tempo maps as Standard MIDI Files and reads them back.
package midiexport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/verte-zerg/taptempo/internal/model"
	"github.com/verte-zerg/taptempo/internal/tempo"
)

// ErrEmptyTempoMap is returned when there is nothing to write.
var ErrEmptyTempoMap = errors.New("tempo map is empty")

// ErrTempoOutOfRange is returned for a tempo a set-tempo event cannot hold.
var ErrTempoOutOfRange = errors.New("tempo out of MIDI range")

// Set-tempo events store microseconds per quarter note in three bytes.
const (
	maxMicrosPerQuarter = 0xFFFFFF
	microsPerMinute     = 60_000_000
)

// MinTempoBPM is the slowest tempo a MIDI file can represent.
const MinTempoBPM = float64(microsPerMinute) / maxMicrosPerQuarter

// Options controls the note events that mark each tempo segment.
type Options struct {
	Channel      uint8
	Pitch        uint8
	CountInPitch uint8
	Velocity     uint8
	TrackName    string
}

// DefaultOptions marks every segment with a C4 quarter note on channel 1.
func DefaultOptions() Options {
	return Options{
		Channel:      0,
		Pitch:        60,
		CountInPitch: 60,
		Velocity:     100,
		TrackName:    "taptempo",
	}
}

// Validate checks that all values fit their MIDI ranges.
func (o Options) Validate() error {
	if o.Channel > 15 {
		return fmt.Errorf("channel must be 0-15, got %d", o.Channel)
	}
	if o.Pitch > 127 || o.CountInPitch > 127 {
		return fmt.Errorf("pitch must be 0-127")
	}
	if o.Velocity == 0 || o.Velocity > 127 {
		return fmt.Errorf("velocity must be 1-127, got %d", o.Velocity)
	}
	return nil
}

// Build converts a tempo map into a single-track SMF. Each entry becomes a
// tempo change followed by a note lasting DurationTicks.
func Build(entries []model.TempoMapEntry, opts Options) (*smf.SMF, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyTempoMap
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(tempo.TicksPerQuarter)

	var track smf.Track
	if opts.TrackName != "" {
		track.Add(0, smf.MetaTrackSequenceName(opts.TrackName))
	}
	track.Add(0, smf.MetaMeter(4, 4))
	for i, e := range entries {
		if e.DurationTicks <= 0 {
			return nil, fmt.Errorf("entry %d: duration must be positive, got %d ticks", i, e.DurationTicks)
		}
		if e.TempoBPM <= 0 {
			return nil, fmt.Errorf("entry %d: tempo must be positive, got %.2f", i, e.TempoBPM)
		}
		if us := math.Round(microsPerMinute / e.TempoBPM); us < 1 || us > maxMicrosPerQuarter {
			return nil, fmt.Errorf("entry %d: %w: %.2f BPM (slowest is %.2f BPM)", i, ErrTempoOutOfRange, e.TempoBPM, MinTempoBPM)
		}
		pitch := opts.Pitch
		if e.CountIn {
			pitch = opts.CountInPitch
		}
		track.Add(0, smf.MetaTempo(e.TempoBPM))
		track.Add(0, midi.NoteOn(opts.Channel, pitch, opts.Velocity))
		track.Add(uint32(e.DurationTicks), midi.NoteOff(opts.Channel, pitch))
	}
	track.Close(0)
	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}
	return s, nil
}

// Write serializes a tempo map as SMF to w.
func Write(w io.Writer, entries []model.TempoMapEntry, opts Options) error {
	s, err := Build(entries, opts)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write midi: %w", err)
	}
	return nil
}

// WriteFile writes a tempo map to path, replacing any existing file only
// once the new content is fully written.
func WriteFile(path string, entries []model.TempoMapEntry, opts Options) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "taptempo-*.mid")
	if err != nil {
		return fmt.Errorf("failed to create temp midi file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := Write(writer, entries, opts); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush midi file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close midi file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write midi file: %w", err)
	}
	return nil
}

// Read reconstructs a tempo map from an SMF produced by Write. The first
// tempo.CountInBeats notes are reported as count-in entries.
func Read(r io.Reader) ([]model.TempoMapEntry, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read midi: %w", err)
	}
	return fromSMF(s)
}

// ReadFile reads a tempo map from a MIDI file on disk.
func ReadFile(path string) ([]model.TempoMapEntry, error) {
	s, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read midi: %w", err)
	}
	return fromSMF(s)
}

func fromSMF(s *smf.SMF) ([]model.TempoMapEntry, error) {
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported time format %v", s.TimeFormat)
	}
	scale := float64(tempo.TicksPerQuarter) / float64(ticks)

	var entries []model.TempoMapEntry
	for _, track := range s.Tracks {
		var (
			now       int64
			bpm       = 120.0
			noteBPM   float64
			noteStart int64 = -1
		)
		for _, ev := range track {
			now += int64(ev.Delta)
			var (
				ch, key, vel uint8
				tempoBPM     float64
			)
			msg := midi.Message(ev.Message)
			switch {
			case ev.Message.GetMetaTempo(&tempoBPM):
				bpm = tempoBPM
			case msg.GetNoteStart(&ch, &key, &vel):
				noteStart = now
				noteBPM = bpm
			case msg.GetNoteEnd(&ch, &key):
				if noteStart < 0 {
					continue
				}
				entries = append(entries, model.TempoMapEntry{
					TempoBPM:      noteBPM,
					DurationTicks: int(float64(now-noteStart)*scale + 0.5),
					CountIn:       len(entries) < tempo.CountInBeats,
				})
				noteStart = -1
			}
		}
	}
	if len(entries) == 0 {
		return nil, ErrEmptyTempoMap
	}
	return entries, nil
}
