package enhance

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// Scanner decodes the SSE event stream of a streaming chat completion.
// Each call to Next returns one non-empty text delta. The "[DONE]"
// sentinel and a plain EOF both surface as io.EOF. Lines that are not
// data events, or whose JSON does not parse, are skipped rather than
// failing the whole stream.
type Scanner struct {
	r    *bufio.Reader
	done bool
}

func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r)}
}

func (s *Scanner) Next() (string, error) {
	if s.done {
		return "", io.EOF
	}
	for {
		line, err := s.r.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		atEOF := err == io.EOF

		if text, ok, err := s.decode(line); err != nil {
			return "", err
		} else if ok {
			return text, nil
		}
		if atEOF {
			s.done = true
			return "", io.EOF
		}
	}
}

func (s *Scanner) decode(line string) (string, bool, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "data:") {
		return "", false, nil
	}
	data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	if data == "[DONE]" {
		s.done = true
		return "", false, io.EOF
	}
	var parsed struct {
		Choices []struct {
			Delta struct {
				Content string `json:"content"`
			} `json:"delta"`
		} `json:"choices"`
	}
	if err := json.Unmarshal([]byte(data), &parsed); err != nil {
		return "", false, nil
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Delta.Content == "" {
		return "", false, nil
	}
	return parsed.Choices[0].Delta.Content, true, nil
}
