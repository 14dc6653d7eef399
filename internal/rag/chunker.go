package rag

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

const (
	paragraphSeparator = "\n\n"
	sentenceSeparator  = " "
)

var paragraphBoundary = regexp.MustCompile(`\n\s*\n`)

// ChunkText splits text into chunks of at most maxChunkLength runes.
// Paragraphs are packed first; an oversized paragraph is packed sentence by
// sentence, and an oversized sentence is cut into fixed-length slices.
func ChunkText(text string, maxChunkLength int) []Chunk {
	if maxChunkLength <= 0 {
		maxChunkLength = DefaultMaxChunkLength
	}

	c := &chunker{max: maxChunkLength}
	for _, paragraph := range paragraphBoundary.Split(text, -1) {
		if paragraph == "" {
			continue
		}
		if c.fits(paragraph, paragraphSeparator) {
			c.append(paragraph, paragraphSeparator)
			continue
		}
		c.flush()

		if utf8.RuneCountInString(paragraph) <= c.max {
			c.buf = paragraph
			continue
		}
		for _, sentence := range splitSentences(paragraph) {
			if c.fits(sentence, sentenceSeparator) {
				c.append(sentence, sentenceSeparator)
				continue
			}
			c.flush()
			if utf8.RuneCountInString(sentence) > c.max {
				c.hardSplit(sentence)
				continue
			}
			c.buf = sentence
		}
	}
	c.flush()
	return c.chunks
}

type chunker struct {
	max    int
	buf    string
	chunks []Chunk
}

func (c *chunker) fits(piece, sep string) bool {
	n := utf8.RuneCountInString(c.buf) + utf8.RuneCountInString(piece)
	if c.buf != "" {
		n += len(sep)
	}
	return n <= c.max
}

func (c *chunker) append(piece, sep string) {
	if c.buf != "" {
		c.buf += sep
	}
	c.buf += piece
}

func (c *chunker) flush() {
	if c.buf == "" {
		return
	}
	c.emit(c.buf)
	c.buf = ""
}

func (c *chunker) emit(text string) {
	c.chunks = append(c.chunks, Chunk{Text: text, SequenceIndex: len(c.chunks)})
}

func (c *chunker) hardSplit(sentence string) {
	runes := []rune(sentence)
	for start := 0; start < len(runes); start += c.max {
		end := start + c.max
		if end > len(runes) {
			end = len(runes)
		}
		c.emit(string(runes[start:end]))
	}
}

// splitSentences splits after '.', '?' or '!' when followed by whitespace.
// The terminator stays with its sentence; the whitespace run is dropped.
func splitSentences(paragraph string) []string {
	runes := []rune(paragraph)
	var (
		sentences []string
		start     int
	)
	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) || i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		sentences = append(sentences, string(runes[start:i+1]))
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}
