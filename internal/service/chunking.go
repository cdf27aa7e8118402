package service

// ChunkConfig controls how source text is split for embedding.
type ChunkConfig struct {
	MaxChunkSize      int
	OverlapSize       int
	MinChunkSize      int
	PreserveSentences bool
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChunkSize:      1000,
		OverlapSize:       100,
		MinChunkSize:      100,
		PreserveSentences: true,
	}
}

// Chunk is a bounded window of a source document's text. Start and End are
// rune offsets into the original text. HasOverlap is true for every chunk
// except the first; consecutive chunks share OverlapSize trailing/leading
// runes so a match near a boundary still retrieves coherent text.
type Chunk struct {
	Text       string
	Start      int
	End        int
	HasOverlap bool
}

// ChunkText splits text into overlapping chunks. Text at or under
// MaxChunkSize yields a single chunk covering the whole input. When
// PreserveSentences is set, a window's end is pulled back to the nearest
// sentence terminator found after the window's midpoint, never before
// MinChunkSize runes into the window.
func ChunkText(text string, cfg ChunkConfig) []Chunk {
	if cfg.MaxChunkSize <= 0 {
		cfg = DefaultChunkConfig()
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= cfg.MaxChunkSize {
		return []Chunk{{Text: text, Start: 0, End: len(runes)}}
	}

	chunks := make([]Chunk, 0, len(runes)/cfg.MaxChunkSize+1)
	start := 0
	for start < len(runes) {
		end := start + cfg.MaxChunkSize
		if end >= len(runes) {
			end = len(runes)
		} else if cfg.PreserveSentences {
			end = sentenceCut(runes, start, end, cfg.MinChunkSize)
		}

		chunks = append(chunks, Chunk{
			Text:       string(runes[start:end]),
			Start:      start,
			End:        end,
			HasOverlap: start > 0,
		})

		if end >= len(runes) {
			break
		}

		next := end - cfg.OverlapSize
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// sentenceCut pulls end back to just after the last sentence terminator in
// (floor, end], where floor is the later of the window midpoint and the
// minimum chunk length. Returns end unchanged when no terminator is found.
func sentenceCut(runes []rune, start, end, minSize int) int {
	floor := start + (end-start)/2
	if minFloor := start + minSize; floor < minFloor {
		floor = minFloor
	}
	for i := end; i > floor; i-- {
		if isSentenceEnd(runes[i-1]) {
			return i
		}
	}
	return end
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
