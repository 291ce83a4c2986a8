package transcript

import (
	"math"
	"regexp"
	"strings"
)

// Word is a single transcribed word with its position in the audio, in seconds
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcript is the result of transcribing one audio file or chunk
type Transcript struct {
	Text  string `json:"text"`
	Words []Word `json:"words"`
}

// Shift moves every word timestamp forward by offset seconds.
// Used to place a chunk's words on the full recording's timeline.
func (t *Transcript) Shift(offset float64) {
	for i := range t.Words {
		t.Words[i].Start += offset
		t.Words[i].End += offset
	}
}

// Merge combines per-chunk transcripts in chunk order.
// Nil entries (failed chunks) are skipped; texts are joined with a space.
func Merge(parts []*Transcript) *Transcript {
	merged := &Transcript{}
	var texts []string
	for _, p := range parts {
		if p == nil {
			continue
		}
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
		merged.Words = append(merged.Words, p.Words...)
	}
	merged.Text = strings.Join(texts, " ")
	return merged
}

// wordRegexp matches word runs the way the transcription text is tokenized
var wordRegexp = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// SyntheticWords generates approximate per-word timestamps from plain text
// and a known audio duration. Words are spaced evenly across the duration;
// each word's own length is estimated from its character count, clamped to
// the 0.2s-0.8s range. All times are shifted by offset seconds.
func SyntheticWords(text string, duration, offset float64) []Word {
	tokens := wordRegexp.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 || duration <= 0 {
		return nil
	}

	timePerWord := duration / float64(len(tokens))

	words := make([]Word, 0, len(tokens))
	current := 0.0
	for _, tok := range tokens {
		wordDuration := math.Max(0.2, math.Min(0.8, float64(len(tok))*0.1))
		words = append(words, Word{
			Word:  tok,
			Start: round2(current + offset),
			End:   round2(current + wordDuration + offset),
		})
		current += timePerWord
	}
	return words
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// JSONPath returns the transcription output path for an MP3 file,
// <stem>_transcription.json next to the audio file.
func JSONPath(mp3Path string) string {
	return strings.TrimSuffix(mp3Path, ".mp3") + "_transcription.json"
}
