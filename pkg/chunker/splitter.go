package chunker

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyInput is returned when the text contains no sentences at all.
var ErrEmptyInput = errors.New("chunker: empty input text")

// Chunk is one window of consecutive sentences with its position metadata.
type Chunk struct {
	Text   string
	Index  int
	Source string
}

// sentenceRe matches a run of text up to and including its terminal
// punctuation plus any trailing closers (quotes, brackets).
var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+["')\]]*`)

// Splitter groups sentences into overlapping windows.
// SentencesPerChunk is the window size, Overlap how many trailing
// sentences each window shares with the next.
type Splitter struct {
	SentencesPerChunk int
	Overlap           int
}

// NewFineSplitter is the legacy fine-grained profile: short 3-sentence
// windows with a single shared sentence. Useful for dense tabular
// documents where 20-sentence windows dilute retrieval.
func NewFineSplitter() *Splitter {
	return NewSplitter(3, 1)
}

func NewSplitter(sentencesPerChunk, overlap int) *Splitter {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 20
	}
	if overlap < 0 || overlap >= sentencesPerChunk {
		overlap = 0
	}
	return &Splitter{
		SentencesPerChunk: sentencesPerChunk,
		Overlap:           overlap,
	}
}

// Split cuts text into sentence windows. The source (usually the
// uploaded filename) is copied onto every chunk so retrieval can cite it.
func (s *Splitter) Split(text string, source string) ([]Chunk, error) {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil, ErrEmptyInput
	}

	step := s.SentencesPerChunk - s.Overlap
	if step <= 0 {
		step = 1
	}

	var chunks []Chunk
	for start := 0; start < len(sentences); start += step {
		end := start + s.SentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, Chunk{
			Text:   strings.Join(sentences[start:end], " "),
			Index:  len(chunks),
			Source: source,
		})
		if end == len(sentences) {
			break
		}
	}
	return chunks, nil
}

// splitSentences breaks a document into trimmed sentences. Text after
// the last terminal punctuation still counts as a sentence, so
// documents without punctuation produce a single sentence.
func splitSentences(text string) []string {
	var sentences []string
	consumed := 0
	for _, loc := range sentenceRe.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[loc[0]:loc[1]]); s != "" {
			sentences = append(sentences, s)
		}
		consumed = loc[1]
	}
	if tail := strings.TrimSpace(text[consumed:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
