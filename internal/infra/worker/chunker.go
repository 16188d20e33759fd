package worker

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Chunk is one overlapping slice of a document prepared for indexing.
type Chunk struct {
	Index   int
	Content string
	Tokens  int
}

// Chunker splits text into token-bounded chunks with overlap. Boundaries
// prefer paragraph breaks, then sentence ends, before falling back to plain
// word splits.
type Chunker struct {
	targetTokens  int
	overlapTokens int
	enc           *tiktoken.Tiktoken
}

func NewChunker(targetTokens, overlapTokens int) (*Chunker, error) {
	if targetTokens <= 0 {
		targetTokens = 400
	}
	if overlapTokens < 0 || overlapTokens >= targetTokens {
		overlapTokens = targetTokens / 8
	}
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, err
	}
	return &Chunker{targetTokens: targetTokens, overlapTokens: overlapTokens, enc: enc}, nil
}

func (c *Chunker) countTokens(s string) int {
	return len(c.enc.Encode(s, nil, nil))
}

// Split cuts the text into chunks of at most the target token size, carrying
// roughly overlapTokens of trailing context into each following chunk.
func (c *Chunker) Split(text string) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	segments := c.segments(text)

	var chunks []Chunk
	var buf []string
	bufTokens := 0

	flush := func() {
		if len(buf) == 0 {
			return
		}
		content := strings.TrimSpace(strings.Join(buf, " "))
		if content == "" {
			buf, bufTokens = nil, 0
			return
		}
		chunks = append(chunks, Chunk{
			Index:   len(chunks),
			Content: content,
			Tokens:  c.countTokens(content),
		})
		// Seed the next chunk with the trailing segments as overlap.
		var tail []string
		tailTokens := 0
		for i := len(buf) - 1; i >= 0; i-- {
			t := c.countTokens(buf[i])
			if tailTokens+t > c.overlapTokens {
				break
			}
			tail = append([]string{buf[i]}, tail...)
			tailTokens += t
		}
		buf, bufTokens = tail, tailTokens
	}

	for _, seg := range segments {
		t := c.countTokens(seg)
		if bufTokens+t > c.targetTokens && bufTokens > 0 {
			flush()
		}
		buf = append(buf, seg)
		bufTokens += t
	}
	if bufTokens > 0 {
		flush()
	}
	return chunks
}

// segments breaks the text at paragraph, then sentence, then word
// boundaries so no single segment exceeds the target token size.
func (c *Chunker) segments(text string) []string {
	var out []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if c.countTokens(para) <= c.targetTokens {
			out = append(out, para)
			continue
		}
		for _, sent := range splitSentences(para) {
			if c.countTokens(sent) <= c.targetTokens {
				out = append(out, sent)
				continue
			}
			out = append(out, c.splitWords(sent)...)
		}
	}
	return out
}

func splitSentences(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', '!', '?', '\n':
			end := i + 1
			if sent := strings.TrimSpace(s[start:end]); sent != "" {
				out = append(out, sent)
			}
			start = end
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

// splitWords is the last-resort arbitrary split for pathological segments
// with no usable boundaries.
func (c *Chunker) splitWords(s string) []string {
	words := strings.Fields(s)
	var out []string
	var buf []string
	tokens := 0
	for _, w := range words {
		t := c.countTokens(w)
		if tokens+t > c.targetTokens && len(buf) > 0 {
			out = append(out, strings.Join(buf, " "))
			buf, tokens = nil, 0
		}
		buf = append(buf, w)
		tokens += t
	}
	if len(buf) > 0 {
		out = append(out, strings.Join(buf, " "))
	}
	return out
}
